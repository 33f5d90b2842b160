package health

import (
	"encoding/json"
	"fmt"
	"time"
)

// CheckReport is the serialized form of one probe result.
type CheckReport struct {
	Healthy  bool   `json:"healthy"`
	Message  string `json:"message"`
	HTTPCode string `json:"http_code,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HealthReport is the combined result of one evaluation. It is built fresh
// per evaluation and never persisted.
type HealthReport struct {
	Timestamp     time.Time              `json:"timestamp"`
	Status        string                 `json:"status"`
	StatusCode    int                    `json:"status_code"`
	Phase         string                 `json:"phase"`
	UptimeSeconds int                    `json:"uptime_seconds"`
	Checks        map[string]CheckReport `json:"checks"`
	Note          string                 `json:"note,omitempty"`
}

// NewHealthReport assembles a report with one check entry per probe result.
func NewHealthReport(now time.Time, uptimeSeconds int, phase Phase, verdict Verdict, results []ProbeResult) HealthReport {
	checks := make(map[string]CheckReport, len(results))
	for _, r := range results {
		check := CheckReport{
			Healthy:  r.Healthy,
			Message:  r.Detail,
			HTTPCode: r.ObservedCode,
		}
		if r.Err != nil {
			check.Error = r.Err.Error()
		}
		checks[r.Name] = check
	}

	return HealthReport{
		Timestamp:     now.UTC(),
		Status:        verdict.Status,
		StatusCode:    verdict.StatusCode,
		Phase:         phase.String(),
		UptimeSeconds: uptimeSeconds,
		Checks:        checks,
		Note:          verdict.Note,
	}
}

// Encode serializes the report as indented JSON.
func (r HealthReport) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return data, nil
}

// DecodeHealthReport parses a report produced by Encode.
func DecodeHealthReport(data []byte) (HealthReport, error) {
	var r HealthReport
	if err := json.Unmarshal(data, &r); err != nil {
		return HealthReport{}, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return r, nil
}
