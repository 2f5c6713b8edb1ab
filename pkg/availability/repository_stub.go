package availability

import (
	"context"
	"sync"
)

type RepositoryStub struct {
	mu        sync.RWMutex
	requests  map[int]Request
	responses map[int][]Response // requestId -> responses in submission order
	userNames map[int]string
	nextId    int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		requests:  make(map[int]Request),
		responses: make(map[int][]Response),
		userNames: make(map[int]string),
		nextId:    1,
	}
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = make(map[int]Request)
	r.responses = make(map[int][]Response)
	r.userNames = make(map[int]string)
	r.nextId = 1
}

// SetUserName registers the display name the pgx repository would join in.
func (r *RepositoryStub) SetUserName(userId int, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userNames[userId] = name
}

func (r *RepositoryStub) CreateRequest(ctx context.Context, request Request) (Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request.Id = r.nextId
	r.nextId++
	r.requests[request.Id] = request
	return request, nil
}

func (r *RepositoryStub) GetRequestByUid(ctx context.Context, uid string) (Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, request := range r.requests {
		if request.Uid == uid {
			return request, nil
		}
	}
	return Request{}, ErrRequestNotFound
}

func (r *RepositoryStub) ListGroupRequests(ctx context.Context, groupId int) ([]Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var requests []Request
	for id := r.nextId - 1; id >= 1; id-- {
		if request, ok := r.requests[id]; ok && request.GroupId == groupId {
			requests = append(requests, request)
		}
	}
	return requests, nil
}

func (r *RepositoryStub) SetStatus(ctx context.Context, requestId int, status RequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[requestId]
	if !ok {
		return ErrRequestNotFound
	}
	request.Status = status
	r.requests[requestId] = request
	return nil
}

func (r *RepositoryStub) UpsertResponse(ctx context.Context, response Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	response.UserName = r.userNames[response.UserId]
	statuses := make(map[string]Status, len(response.Statuses))
	for date, status := range response.Statuses {
		if status != "" {
			statuses[date] = status
		}
	}
	response.Statuses = statuses

	existing := r.responses[response.RequestId]
	for i, prev := range existing {
		if prev.UserId == response.UserId {
			existing[i] = response
			return nil
		}
	}
	r.responses[response.RequestId] = append(existing, response)
	return nil
}

func (r *RepositoryStub) ListResponses(ctx context.Context, requestId int) ([]Response, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Response(nil), r.responses[requestId]...), nil
}
