package availability

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	t.Run("tallies and scores the documented example", func(t *testing.T) {
		// 3 available + 1 maybe + 2 not_available out of 8 members
		dates := []string{"2025-05-10"}
		responses := []ResponseSummary{
			{UserName: "Ala", Statuses: map[string]Status{"2025-05-10": StatusAvailable}},
			{UserName: "Bartek", Statuses: map[string]Status{"2025-05-10": StatusAvailable}},
			{UserName: "Celina", Statuses: map[string]Status{"2025-05-10": StatusAvailable}},
			{UserName: "Darek", Statuses: map[string]Status{"2025-05-10": StatusMaybe}},
			{UserName: "Ewa", Statuses: map[string]Status{"2025-05-10": StatusNotAvailable}},
			{UserName: "Franek", Statuses: map[string]Status{"2025-05-10": StatusNotAvailable}},
		}

		results := Aggregate(dates, responses, 8)

		require.Len(t, results, 1)
		assert.Equal(t, 3, results[0].Available)
		assert.Equal(t, 1, results[0].Maybe)
		assert.Equal(t, 2, results[0].NotAvailable)
		assert.Equal(t, 2, results[0].NoResponse)
		assert.Equal(t, 8, results[0].Total)
		assert.Equal(t, 7, results[0].Score)
	})

	t.Run("score is 2*available + maybe for any tallies", func(t *testing.T) {
		for a := 0; a <= 5; a++ {
			for m := 0; m <= 5; m++ {
				responses := make([]ResponseSummary, 0, a+m)
				for i := 0; i < a; i++ {
					responses = append(responses, ResponseSummary{
						UserName: fmt.Sprintf("a%d", i),
						Statuses: map[string]Status{"2025-05-10": StatusAvailable},
					})
				}
				for i := 0; i < m; i++ {
					responses = append(responses, ResponseSummary{
						UserName: fmt.Sprintf("m%d", i),
						Statuses: map[string]Status{"2025-05-10": StatusMaybe},
					})
				}

				results := Aggregate([]string{"2025-05-10"}, responses, a+m)

				require.Len(t, results, 1)
				assert.Equal(t, 2*a+m, results[0].Score, "a=%d m=%d", a, m)
			}
		}
	})

	t.Run("one result per date, in input order, counts summing to total", func(t *testing.T) {
		dates := []string{"2025-05-12", "2025-05-10", "2025-05-11"}
		responses := []ResponseSummary{
			{UserName: "Ala", Statuses: map[string]Status{
				"2025-05-10": StatusAvailable,
				"2025-05-11": StatusMaybe,
			}},
			{UserName: "Bartek", Statuses: map[string]Status{
				"2025-05-12": StatusNotAvailable,
			}},
		}

		results := Aggregate(dates, responses, 4)

		require.Len(t, results, 3)
		for i, date := range dates {
			assert.Equal(t, date, results[i].Date)
			sum := results[i].Available + results[i].Maybe + results[i].NotAvailable + results[i].NoResponse
			assert.Equal(t, 4, sum, "date %s", date)
		}
	})

	t.Run("missing answer for a date counts as no response", func(t *testing.T) {
		responses := []ResponseSummary{
			{UserName: "Ala", Statuses: map[string]Status{"2025-05-10": StatusAvailable}},
		}

		results := Aggregate([]string{"2025-05-10", "2025-05-11"}, responses, 3)

		assert.Equal(t, 2, results[0].NoResponse)
		assert.Equal(t, 3, results[1].NoResponse)
		assert.Empty(t, results[1].Respondents)
	})

	t.Run("respondents keep scan order and skip empty statuses", func(t *testing.T) {
		responses := []ResponseSummary{
			{UserName: "Celina", Statuses: map[string]Status{"2025-05-10": StatusMaybe}},
			{UserName: "Ala", Statuses: map[string]Status{"2025-05-10": ""}},
			{UserName: "Bartek", Statuses: map[string]Status{"2025-05-10": StatusAvailable}},
		}

		results := Aggregate([]string{"2025-05-10"}, responses, 3)

		require.Len(t, results[0].Respondents, 2)
		assert.Equal(t, "Celina", results[0].Respondents[0].UserName)
		assert.Equal(t, "Bartek", results[0].Respondents[1].UserName)
	})

	t.Run("more responses than members surfaces a negative no-response count", func(t *testing.T) {
		responses := []ResponseSummary{
			{UserName: "Ala", Statuses: map[string]Status{"2025-05-10": StatusAvailable}},
			{UserName: "Bartek", Statuses: map[string]Status{"2025-05-10": StatusAvailable}},
			{UserName: "Celina", Statuses: map[string]Status{"2025-05-10": StatusAvailable}},
		}

		results := Aggregate([]string{"2025-05-10"}, responses, 2)

		// Stale membership data is surfaced, not clamped.
		assert.Equal(t, -1, results[0].NoResponse)
	})

	t.Run("no dates yields no results", func(t *testing.T) {
		results := Aggregate(nil, nil, 5)
		assert.Empty(t, results)
	})
}

func TestBestDates(t *testing.T) {
	t.Run("ranks by score with earlier date breaking ties", func(t *testing.T) {
		results := []DateResult{
			{Date: "2025-05-12", Score: 4},
			{Date: "2025-05-10", Score: 6},
			{Date: "2025-05-11", Score: 6},
			{Date: "2025-05-09", Score: 1},
		}

		best := BestDates(results, 3)

		require.Len(t, best, 3)
		assert.Equal(t, "2025-05-10", best[0].Date)
		assert.Equal(t, "2025-05-11", best[1].Date)
		assert.Equal(t, "2025-05-12", best[2].Date)
	})

	t.Run("does not mutate the input order", func(t *testing.T) {
		results := []DateResult{
			{Date: "2025-05-12", Score: 1},
			{Date: "2025-05-10", Score: 9},
		}

		BestDates(results, 1)

		assert.Equal(t, "2025-05-12", results[0].Date)
	})

	t.Run("n larger than input returns everything", func(t *testing.T) {
		results := []DateResult{{Date: "2025-05-10", Score: 2}}
		assert.Len(t, BestDates(results, 10), 1)
	})
}
