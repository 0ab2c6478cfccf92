package models

import "time"

// TaskSummary is the per-task shape of search and recent-list results.
type TaskSummary struct {
	Number         string `json:"number"`
	Title          string `json:"title"`
	Department     string `json:"department"`
	Institute      string `json:"institute"`
	NumberOfTarget string `json:"number_of_target"`
	Duration       string `json:"duration"`
	Type           string `json:"type"`
	TrialStage     string `json:"trial_stage"`
	Scope          string `json:"scope"`
}

// TaskDetail is the shape returned by the detail endpoint. Note the plural
// "trial_stages" key, kept for client compatibility.
type TaskDetail struct {
	Number         string    `json:"number"`
	Title          string    `json:"title"`
	Duration       string    `json:"duration"`
	NumberOfTarget string    `json:"number_of_target"`
	Scope          string    `json:"scope"`
	Type           string    `json:"type"`
	Institute      string    `json:"institute"`
	TrialStages    string    `json:"trial_stages"`
	Department     string    `json:"department"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (r TaskRecord) Summary() TaskSummary {
	return TaskSummary{
		Number:         r.Number,
		Title:          r.Title,
		Department:     r.Department,
		Institute:      r.Institute,
		NumberOfTarget: r.NumberOfTarget,
		Duration:       r.Duration,
		Type:           r.Type,
		TrialStage:     r.TrialStage,
		Scope:          r.Scope,
	}
}

func (r TaskRecord) Detail() TaskDetail {
	return TaskDetail{
		Number:         r.Number,
		Title:          r.Title,
		Duration:       r.Duration,
		NumberOfTarget: r.NumberOfTarget,
		Scope:          r.Scope,
		Type:           r.Type,
		Institute:      r.Institute,
		TrialStages:    r.TrialStage,
		Department:     r.Department,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// Summaries projects a slice of records, never returning nil.
func Summaries(records []TaskRecord) []TaskSummary {
	out := make([]TaskSummary, 0, len(records))
	for _, r := range records {
		out = append(out, r.Summary())
	}
	return out
}
