package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrRequestNotFound = errors.New("availability request not found")

type Repository interface {
	CreateRequest(ctx context.Context, request Request) (Request, error)
	GetRequestByUid(ctx context.Context, uid string) (Request, error)
	ListGroupRequests(ctx context.Context, groupId int) ([]Request, error)
	SetStatus(ctx context.Context, requestId int, status RequestStatus) error
	// UpsertResponse replaces the user's whole answer set for the request.
	UpsertResponse(ctx context.Context, response Response) error
	// ListResponses returns all responses for a request joined with the
	// responding user's display name, ordered by submission.
	ListResponses(ctx context.Context, requestId int) ([]Response, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) CreateRequest(ctx context.Context, request Request) (Request, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return Request{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	query := `INSERT INTO availability_request
				(uid, group_id, title, date_range_start, date_range_end, requested_start_time, requested_end_time, status, created_by, expires_at)
			  VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10)
			  RETURNING id`
	err = tx.QueryRow(ctx, query,
		request.Uid,
		request.GroupId,
		request.Title,
		request.DateRangeStart,
		request.DateRangeEnd,
		request.RequestedStartTime,
		request.RequestedEndTime,
		request.Status,
		request.CreatedById,
		request.ExpiresAt,
	).Scan(&request.Id)
	if err != nil {
		log.Errorf("failed to create availability request: %v", err)
		return Request{}, err
	}

	for position, date := range request.RequestedDates {
		_, err = tx.Exec(ctx,
			`INSERT INTO availability_request_date (request_id, date, position) VALUES ($1, $2, $3)`,
			request.Id, date, position)
		if err != nil {
			log.Errorf("failed to store requested date: %v", err)
			return Request{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Request{}, fmt.Errorf("commit transaction: %w", err)
	}
	return request, nil
}

func (r *RepositoryImpl) GetRequestByUid(ctx context.Context, uid string) (Request, error) {
	query := `SELECT id, uid, group_id, title, date_range_start::text, date_range_end::text,
					 COALESCE(requested_start_time, ''), COALESCE(requested_end_time, ''), status, created_by, expires_at
			  FROM availability_request WHERE uid = $1`
	var request Request
	err := r.db.QueryRow(ctx, query, uid).Scan(
		&request.Id,
		&request.Uid,
		&request.GroupId,
		&request.Title,
		&request.DateRangeStart,
		&request.DateRangeEnd,
		&request.RequestedStartTime,
		&request.RequestedEndTime,
		&request.Status,
		&request.CreatedById,
		&request.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrRequestNotFound
	} else if err != nil {
		log.Errorf("failed to get availability request: %v", err)
		return Request{}, err
	}

	request.RequestedDates, err = r.requestedDates(ctx, request.Id)
	if err != nil {
		return Request{}, err
	}
	return request, nil
}

func (r *RepositoryImpl) requestedDates(ctx context.Context, requestId int) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT date::text FROM availability_request_date WHERE request_id = $1 ORDER BY position`,
		requestId)
	if err != nil {
		log.Errorf("failed to list requested dates: %v", err)
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, err
		}
		dates = append(dates, date)
	}
	return dates, rows.Err()
}

func (r *RepositoryImpl) ListGroupRequests(ctx context.Context, groupId int) ([]Request, error) {
	query := `SELECT id, uid, group_id, title, date_range_start::text, date_range_end::text,
					 COALESCE(requested_start_time, ''), COALESCE(requested_end_time, ''), status, created_by, expires_at
			  FROM availability_request WHERE group_id = $1 ORDER BY id DESC`
	rows, err := r.db.Query(ctx, query, groupId)
	if err != nil {
		log.Errorf("failed to list availability requests: %v", err)
		return nil, err
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		var request Request
		if err := rows.Scan(
			&request.Id,
			&request.Uid,
			&request.GroupId,
			&request.Title,
			&request.DateRangeStart,
			&request.DateRangeEnd,
			&request.RequestedStartTime,
			&request.RequestedEndTime,
			&request.Status,
			&request.CreatedById,
			&request.ExpiresAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range requests {
		requests[i].RequestedDates, err = r.requestedDates(ctx, requests[i].Id)
		if err != nil {
			return nil, err
		}
	}
	return requests, nil
}

func (r *RepositoryImpl) SetStatus(ctx context.Context, requestId int, status RequestStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE availability_request SET status = $1 WHERE id = $2`, status, requestId)
	if err != nil {
		log.Errorf("failed to update request status: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

func (r *RepositoryImpl) UpsertResponse(ctx context.Context, response Response) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	var responseId int
	err = tx.QueryRow(ctx,
		`INSERT INTO availability_response (request_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (request_id, user_id) DO UPDATE SET submitted_at = now()
		 RETURNING id`,
		response.RequestId, response.UserId).Scan(&responseId)
	if err != nil {
		log.Errorf("failed to upsert response: %v", err)
		return err
	}

	// Last write wins: the previous answer set is replaced wholesale.
	if _, err := tx.Exec(ctx, `DELETE FROM availability_response_entry WHERE response_id = $1`, responseId); err != nil {
		log.Errorf("failed to clear response entries: %v", err)
		return err
	}
	for date, status := range response.Statuses {
		if status == "" {
			continue
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO availability_response_entry (response_id, date, status) VALUES ($1, $2, $3)`,
			responseId, date, status)
		if err != nil {
			log.Errorf("failed to store response entry: %v", err)
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) ListResponses(ctx context.Context, requestId int) ([]Response, error) {
	query := `SELECT resp.user_id, u.display_name, e.date::text, e.status
			  FROM availability_response resp
			  JOIN users u ON u.id = resp.user_id
			  LEFT JOIN availability_response_entry e ON e.response_id = resp.id
			  WHERE resp.request_id = $1
			  ORDER BY resp.id`
	rows, err := r.db.Query(ctx, query, requestId)
	if err != nil {
		log.Errorf("failed to list responses: %v", err)
		return nil, err
	}
	defer rows.Close()

	var responses []Response
	byUser := map[int]int{} // userId -> index in responses
	for rows.Next() {
		var userId int
		var userName string
		var date, status *string
		if err := rows.Scan(&userId, &userName, &date, &status); err != nil {
			return nil, err
		}
		idx, ok := byUser[userId]
		if !ok {
			responses = append(responses, Response{
				RequestId: requestId,
				UserId:    userId,
				UserName:  userName,
				Statuses:  map[string]Status{},
			})
			idx = len(responses) - 1
			byUser[userId] = idx
		}
		if date != nil && status != nil {
			responses[idx].Statuses[*date] = Status(*status)
		}
	}
	return responses, rows.Err()
}
