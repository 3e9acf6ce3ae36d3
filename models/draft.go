package models

import "time"

// Step identifies where a reservation draft sits in the composition workflow.
type Step string

const (
	StepLookup       Step = "lookup"
	StepAssistance   Step = "assistance"
	StepBaggage      Step = "baggage"
	StepFinalization Step = "finalization"
	StepConfirmed    Step = "confirmed"
)

// Draft holds a ticket between steps. Ticket is nil until a lookup succeeds.
// Generation increases with every applied transition; asynchronous results
// carry the generation they started from and are dropped if it moved.
type Draft struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	Step       Step      `json:"step"`
	Ticket     *Ticket   `json:"ticket,omitempty"`
	Generation uint64    `json:"generation"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Clone copies the draft and its ticket.
func (d Draft) Clone() Draft {
	d.Ticket = d.Ticket.Clone()
	return d
}
