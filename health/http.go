package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// ReportResponse is the JSON body served by Handler.
type ReportResponse struct {
	Status    Status                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Checks    map[string]CheckResponse `json:"checks,omitempty"`
}

// CheckResponse is the JSON form of a single Result.
type CheckResponse struct {
	Status   Status         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// NewReportResponse converts a Report into its JSON form.
func NewReportResponse(r Report) ReportResponse {
	resp := ReportResponse{
		Status:    r.Status,
		Timestamp: r.Timestamp.UTC().Format(time.RFC3339),
		Checks:    make(map[string]CheckResponse, len(r.Checks)),
	}
	for name, result := range r.Checks {
		resp.Checks[name] = newCheckResponse(result)
	}
	return resp
}

func newCheckResponse(r Result) CheckResponse {
	check := CheckResponse{
		Status:   r.Status,
		Message:  r.Message,
		Duration: r.Duration.String(),
		Details:  r.Details,
	}
	if r.Error != nil {
		check.Error = r.Error.Error()
	}
	return check
}

// Handler serves the aggregated report as JSON. Healthy and degraded reports
// answer 200, unhealthy ones 503.
//
// A "check" query parameter restricts the run to one named checker; an
// unknown name answers 404.
func Handler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if name := r.URL.Query().Get("check"); name != "" {
			result, err := agg.Check(r.Context(), name)
			if err != nil {
				w.WriteHeader(http.StatusNotFound)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
				return
			}
			w.WriteHeader(statusCode(result.Status))
			_ = json.NewEncoder(w).Encode(newCheckResponse(result))
			return
		}

		report := agg.Run(r.Context())
		w.WriteHeader(statusCode(report.Status))
		_ = json.NewEncoder(w).Encode(NewReportResponse(report))
	}
}

func statusCode(s Status) int {
	if s == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
