package models

import "time"

// Label is one of the fixed annotation categories an annotator can assign
// to a sentence.
type Label string

const (
	NoFactualClaim     Label = "No factual claim"
	FactualUnimportant Label = "Factual but unimportant"
	ImportantFactual   Label = "Important factual claim"
	NormativeStatement Label = "Normative statement"
)

// Labels lists the categories in display order.
var Labels = []Label{
	NoFactualClaim,
	FactualUnimportant,
	ImportantFactual,
	NormativeStatement,
}

// Valid reports whether l is one of the fixed labels.
func (l Label) Valid() bool {
	for _, known := range Labels {
		if l == known {
			return true
		}
	}
	return false
}

// AnnotationRecord is one labeled sentence. Immutable once created.
type AnnotationRecord struct {
	UserID      string    `json:"user_id" db:"user_id"`
	Sentence    string    `json:"sentence" db:"sentence"`
	Label       Label     `json:"label" db:"label"`
	AnnotatedAt time.Time `json:"annotated_at" db:"annotated_at"`
}

// LoginRequest is the login intent payload.
type LoginRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// AnnotateRequest is the label intent payload.
type AnnotateRequest struct {
	Label string `json:"label" binding:"required"`
}

// SessionView is the read-only observable state exposed for rendering.
type SessionView struct {
	UserID          string  `json:"user_id"`
	CurrentSentence string  `json:"current_sentence,omitempty"`
	Finished        bool    `json:"finished"`
	AnnotatedCount  int     `json:"annotated_count"`
	TotalCount      int     `json:"total_count"`
	RewardTickets   int     `json:"reward_tickets"`
	Progress        float64 `json:"progress"`
}

// AnnotateResult is returned from a single label intent. TicketEarned is
// edge-triggered: true only on the call whose annotation crosses a reward
// threshold, never on subsequent reads.
type AnnotateResult struct {
	SessionView
	TicketEarned bool `json:"ticket_earned"`
}
