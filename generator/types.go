package generator

import (
	"time"

	"banner_agent/design"
)

// Brief describes the banner before generation.
type Brief struct {
	Request string
	Logo    *Image
	Canvas  design.Canvas
}

// ReviewInput is everything one review needs.
type ReviewInput struct {
	Canvas     design.Canvas
	Layout     design.Layout
	Preview    *Image
	Logo       *Image
	Iteration  int
	Violations []design.Violation
}

// Turn records one review/refine iteration.
type Turn struct {
	Iteration  int                   `json:"iteration"`
	Feedback   design.Feedback       `json:"feedback"`
	Outcomes   []design.IssueOutcome `json:"outcomes,omitempty"`
	Violations []design.Violation    `json:"violations,omitempty"`
	Previewed  bool                  `json:"previewed"`
	Error      string                `json:"error,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
}

// Stop reasons recorded on a run.
const (
	StopApproved      = "approved"
	StopMaxIterations = "max_iterations"
	StopReviewFailed  = "review_failed"
	StopCanceled      = "canceled"
)

// Result is a finished (or in-progress) run, the unit exported and archived.
type Result struct {
	RunID      string                   `json:"run_id"`
	CreatedAt  time.Time                `json:"created_at"`
	Request    string                   `json:"request"`
	Canvas     design.Canvas            `json:"canvas"`
	Direction  design.CreativeDirection `json:"creative_direction"`
	Background design.Background        `json:"background"`
	Layout     design.Layout            `json:"layout"`
	Iterations []Turn                   `json:"iterations"`
	Approved   bool                     `json:"approved"`
	StopReason string                   `json:"stop_reason,omitempty"`
	Warnings   []string                 `json:"warnings,omitempty"`
	// Logo is a data URI, empty when the brief had no logo.
	Logo string `json:"logo,omitempty"`
}
