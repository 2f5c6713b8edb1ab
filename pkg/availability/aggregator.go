package availability

import "sort"

// Score weights: an available answer is worth twice a maybe. Reminder-side
// formatting shares this ranking, so the weights must not drift.
const (
	availableWeight = 2
	maybeWeight     = 1
)

// ResponseSummary is the aggregator's view of one user's answers.
type ResponseSummary struct {
	UserName string
	Statuses map[string]Status
}

type Respondent struct {
	UserName string `json:"userName"`
	Status   Status `json:"status"`
}

// DateResult is the aggregated outcome for a single polled date.
type DateResult struct {
	Date         string       `json:"date"`
	Available    int          `json:"available"`
	Maybe        int          `json:"maybe"`
	NotAvailable int          `json:"notAvailable"`
	NoResponse   int          `json:"noResponse"`
	Total        int          `json:"total"`
	Score        int          `json:"score"`
	Respondents  []Respondent `json:"respondents"`
}

// Aggregate tallies every user's answers across the polled dates and scores
// each date, returning one result per date in input order.
//
// A response with no entry for a date counts toward NoResponse, not as an
// error. NoResponse is totalMembers minus the three tallies and is not
// clamped: if stale membership data yields more responses than members, the
// negative count surfaces the inconsistency instead of masking it.
//
// Pure function, no shared state; safe for concurrent callers.
func Aggregate(dates []string, responses []ResponseSummary, totalMembers int) []DateResult {
	results := make([]DateResult, 0, len(dates))
	for _, date := range dates {
		result := DateResult{
			Date:        date,
			Total:       totalMembers,
			Respondents: []Respondent{},
		}
		for _, response := range responses {
			status, ok := response.Statuses[date]
			if !ok || status == "" {
				continue
			}
			switch status {
			case StatusAvailable:
				result.Available++
			case StatusMaybe:
				result.Maybe++
			case StatusNotAvailable:
				result.NotAvailable++
			}
			result.Respondents = append(result.Respondents, Respondent{
				UserName: response.UserName,
				Status:   status,
			})
		}
		result.NoResponse = totalMembers - result.Available - result.Maybe - result.NotAvailable
		result.Score = result.Available*availableWeight + result.Maybe*maybeWeight
		results = append(results, result)
	}
	return results
}

// BestDates returns the top n results ranked by score, ties going to the
// earlier date. Aggregate itself keeps caller order; ranking determinism
// lives here so heatmap rendering stays order-stable.
func BestDates(results []DateResult, n int) []DateResult {
	ranked := append([]DateResult(nil), results...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Date < ranked[j].Date
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
