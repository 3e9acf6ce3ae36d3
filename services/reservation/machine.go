package reservation

import (
	"pmove/models"
)

// Event is an input to the reservation state machine.
type Event interface {
	eventName() string
}

// LookupSucceeded creates the ticket from the primary leg returned by a lookup.
type LookupSucceeded struct {
	Leg models.Leg
}

// AssistanceSubmitted carries the assistance and companion form. Rider is
// copied from the session profile by the caller, never from user input.
type AssistanceSubmitted struct {
	Rider            models.Rider
	HasCompanion     bool
	Companion        models.Companion
	DeclaredBagCount string
	WheelchairOption models.WheelchairOption
	AdditionalNotes  string
}

// BagAdded appends a bag whose ID the caller has already generated.
type BagAdded struct {
	Bag models.Bag
}

// BagRemoved drops the bag with the given ID.
type BagRemoved struct {
	ID string
}

// BaggageCompleted asks to move from baggage to finalization.
type BaggageCompleted struct{}

// LegAdded merges an additional itinerary looked up from the finalization view.
type LegAdded struct {
	Leg models.Leg
}

// SubmissionSucceeded moves the draft to its terminal state.
type SubmissionSucceeded struct{}

// SubmissionFailed keeps the draft exactly as it was so the user can retry.
type SubmissionFailed struct{}

// Reset discards the ticket and returns to the lookup step.
type Reset struct{}

func (LookupSucceeded) eventName() string { return "lookup_succeeded" }
func (AssistanceSubmitted) eventName() string { return "assistance_submitted" }
func (BagAdded) eventName() string { return "bag_added" }
func (BagRemoved) eventName() string { return "bag_removed" }
func (BaggageCompleted) eventName() string { return "baggage_completed" }
func (LegAdded) eventName() string { return "leg_added" }
func (SubmissionSucceeded) eventName() string { return "submission_succeeded" }
func (SubmissionFailed) eventName() string { return "submission_failed" }
func (Reset) eventName() string { return "reset" }

// EventName returns the metric/log label of ev.
func EventName(ev Event) string { return ev.eventName() }

// Transition applies ev to d and returns the resulting draft. d is never
// modified; on error the caller keeps using d unchanged.
//
//	lookup       --LookupSucceeded-->     assistance
//	assistance   --AssistanceSubmitted--> baggage | finalization (0 bags)
//	baggage      --BagAdded/BagRemoved--> baggage
//	baggage      --BaggageCompleted-->    finalization (counts match)
//	finalization --LegAdded-->            finalization
//	finalization --SubmissionSucceeded--> confirmed
//	finalization --SubmissionFailed-->    finalization (unchanged)
//	any but confirmed --Reset-->          lookup
func Transition(d models.Draft, ev Event) (models.Draft, error) {
	if d.Step == models.StepConfirmed {
		return d, ErrTerminal
	}

	next := d.Clone()

	switch e := ev.(type) {
	case Reset:
		next.Step = models.StepLookup
		next.Ticket = nil

	case LookupSucceeded:
		if err := expectStep(d, ev, models.StepLookup); err != nil {
			return d, err
		}
		leg := e.Leg
		leg.Index = 0
		next.Ticket = &models.Ticket{Legs: []models.Leg{leg}}
		next.Step = models.StepAssistance

	case AssistanceSubmitted:
		if err := expectStep(d, ev, models.StepAssistance); err != nil {
			return d, err
		}
		if err := applyAssistance(next.Ticket, e); err != nil {
			return d, err
		}
		if next.Ticket.DeclaredBagCount == 0 {
			next.Step = models.StepFinalization
		} else {
			next.Step = models.StepBaggage
		}

	case BagAdded:
		if err := expectStep(d, ev, models.StepBaggage); err != nil {
			return d, err
		}
		if err := addBag(next.Ticket, e.Bag); err != nil {
			return d, err
		}

	case BagRemoved:
		if err := expectStep(d, ev, models.StepBaggage); err != nil {
			return d, err
		}
		if err := removeBag(next.Ticket, e.ID); err != nil {
			return d, err
		}

	case BaggageCompleted:
		if err := expectStep(d, ev, models.StepBaggage); err != nil {
			return d, err
		}
		if err := checkBagCount(next.Ticket); err != nil {
			return d, err
		}
		next.Step = models.StepFinalization

	case LegAdded:
		if err := expectStep(d, ev, models.StepFinalization); err != nil {
			return d, err
		}
		mergeLeg(next.Ticket, e.Leg)

	case SubmissionSucceeded:
		if err := expectStep(d, ev, models.StepFinalization); err != nil {
			return d, err
		}
		next.Step = models.StepConfirmed
		next.Ticket = nil

	case SubmissionFailed:
		if err := expectStep(d, ev, models.StepFinalization); err != nil {
			return d, err
		}
		return d, nil

	default:
		return d, &TransitionError{Step: string(d.Step), Event: "unknown"}
	}

	next.Generation++
	return next, nil
}

func expectStep(d models.Draft, ev Event, want models.Step) error {
	if d.Step != want || (want != models.StepLookup && d.Ticket == nil) {
		return &TransitionError{Step: string(d.Step), Event: ev.eventName()}
	}
	return nil
}

func applyAssistance(t *models.Ticket, e AssistanceSubmitted) error {
	count, err := ParseBagCount(e.DeclaredBagCount)
	if err != nil {
		return err
	}
	if !e.WheelchairOption.Valid() {
		return newValidationError("wheelchairOption", "unknown wheelchair option %q", e.WheelchairOption)
	}
	if e.HasCompanion && !e.Companion.Complete() {
		return newValidationError("companion", "companion name, surname, phone and email are all required")
	}

	t.Rider = e.Rider
	t.WheelchairOption = e.WheelchairOption
	t.AdditionalNotes = e.AdditionalNotes
	t.HasCompanion = e.HasCompanion
	t.Companion = nil
	if e.HasCompanion {
		c := e.Companion
		t.Companion = &c
	}
	t.DeclaredBagCount = count
	t.Bags = []models.Bag{}
	return nil
}
