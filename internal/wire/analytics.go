package wire

import (
	"errors"
	"fmt"
	"time"
)

// Top-level fields of GetAnalyticsRequest.
const (
	analyticsQueryField = 2
	analyticsStartField = 3
	analyticsEndField   = 4
	analyticsKeyField   = 5
)

// Query describes one sub-query of GetAnalyticsRequest: the QueryRequest
// oneof field number and whether it nests a time-zone parameter.
type Query struct {
	Name     string
	Field    int
	TimeZone bool
	TeamOnly bool
}

// AnalyticsQueries is emitted in this order. Reordering changes the bytes on
// the wire; the remote accepts any order but tests pin this one.
var AnalyticsQueries = []Query{
	{Name: "cascade_lines", Field: 23},
	{Name: "cascade_tool_usage", Field: 24},
	{Name: "cascade_runs", Field: 25},
	{Name: "completion_stats", Field: 1},
	{Name: "completions_by_language", Field: 3},
	{Name: "chats_by_model", Field: 12},
	{Name: "completions_by_day", Field: 2, TimeZone: true},
	{Name: "chats_by_day", Field: 10, TimeZone: true},
	{Name: "percent_code_written", Field: 15, TeamOnly: true},
}

// ErrUnknownQuery is returned for a query name missing from AnalyticsQueries.
var ErrUnknownQuery = errors.New("unknown analytics query")

// AnalyticsRequest holds the caller supplied values of a GetAnalytics call.
type AnalyticsRequest struct {
	APIKey   string
	Start    time.Time
	End      time.Time
	TimeZone string
	// Team enables queries only available to team accounts.
	Team bool
	// Queries restricts the payload to the named queries. Empty means all.
	Queries []string
}

// BuildAnalyticsRequest serializes req into a GetAnalyticsRequest body.
func BuildAnalyticsRequest(req AnalyticsRequest) ([]byte, error) {
	if req.APIKey == "" {
		return nil, errors.New("analytics request requires an api key")
	}
	selected, err := selectQueries(req.Queries)
	if err != nil {
		return nil, err
	}
	start, err := Timestamp(req.Start)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	end, err := Timestamp(req.End)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}

	var body []byte
	for _, q := range selected {
		if q.TeamOnly && !req.Team {
			continue
		}
		var param []byte
		if q.TimeZone {
			param = AppendStringField(nil, 1, req.TimeZone)
		}
		body = AppendMessageField(body, analyticsQueryField, AppendMessageField(nil, q.Field, param))
	}
	body = AppendMessageField(body, analyticsStartField, start)
	body = AppendMessageField(body, analyticsEndField, end)
	body = AppendStringField(body, analyticsKeyField, req.APIKey)
	return body, nil
}

func selectQueries(names []string) ([]Query, error) {
	if len(names) == 0 {
		return AnalyticsQueries, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	out := make([]Query, 0, len(names))
	for _, q := range AnalyticsQueries {
		if want[q.Name] {
			out = append(out, q)
			delete(want, q.Name)
		}
	}
	for n := range want {
		return nil, fmt.Errorf("%w %q", ErrUnknownQuery, n)
	}
	return out, nil
}
