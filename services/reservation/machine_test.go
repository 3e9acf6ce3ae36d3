package reservation

import (
	"errors"
	"reflect"
	"testing"

	"pmove/models"
)

func draftAtAssistance(t *testing.T) models.Draft {
	t.Helper()
	d, err := Transition(models.Draft{ID: "d1", Step: models.StepLookup}, LookupSucceeded{Leg: models.Leg{
		ReservationNumber: "4821",
		Carrier:           models.CarrierSNCF,
		Origin:            "Paris Gare de Lyon",
		Destination:       "Marseille Saint-Charles",
		DepartureTime:     "2025-03-01T09:07:00.000Z",
		ArrivalTime:       "2025-03-01T12:25:00.000Z",
	}})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func draftAtBaggage(t *testing.T, declared string) models.Draft {
	t.Helper()
	d, err := Transition(draftAtAssistance(t), AssistanceSubmitted{
		Rider:            models.Rider{Name: "Jane", Surname: "Doe", Phone: "0600000000", Email: "jane@example.com"},
		DeclaredBagCount: declared,
	})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func mustApply(t *testing.T, d models.Draft, ev Event) models.Draft {
	t.Helper()
	next, err := Transition(d, ev)
	if err != nil {
		t.Fatalf("%s: %v", EventName(ev), err)
	}
	return next
}

func TestTransitionLookup(t *testing.T) {
	t.Run("should copy the itinerary verbatim into the primary leg", func(t *testing.T) {
		leg := models.Leg{
			Index:             9,
			ReservationNumber: "0042",
			Carrier:           models.CarrierAirFrance,
			Origin:            "  CDG ",
			Destination:       "NCE",
			DepartureTime:     "not a date",
			ArrivalTime:       "",
		}
		d := mustApply(t, models.Draft{Step: models.StepLookup}, LookupSucceeded{Leg: leg})

		want := leg
		want.Index = 0
		if got := d.Ticket.PrimaryLeg(); got != want {
			t.Errorf("got `%+v`, want `%+v`", got, want)
		}
		if d.Step != models.StepAssistance {
			t.Errorf("got `%s`, want `%s`", d.Step, models.StepAssistance)
		}
		if d.Generation != 1 {
			t.Errorf("got `%d`, want `%d` for generation", d.Generation, 1)
		}
	})

	t.Run("should reject events that do not belong to the step", func(t *testing.T) {
		d := models.Draft{Step: models.StepLookup}
		for _, ev := range []Event{BagAdded{}, BaggageCompleted{}, LegAdded{}, SubmissionSucceeded{}, AssistanceSubmitted{}} {
			_, err := Transition(d, ev)
			var terr *TransitionError
			if !errors.As(err, &terr) || !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("%s: got `%v`, want a transition error", EventName(ev), err)
			}
		}
	})
}

func TestTransitionAssistance(t *testing.T) {
	t.Run("should route a zero bag count straight to finalization", func(t *testing.T) {
		d := draftAtBaggage(t, "0")

		if d.Step != models.StepFinalization {
			t.Errorf("got `%s`, want `%s`", d.Step, models.StepFinalization)
		}
		if d.Ticket.Bags == nil || len(d.Ticket.Bags) != 0 {
			t.Errorf("got `%#v`, want an empty bag list", d.Ticket.Bags)
		}
	})

	t.Run("should go to baggage when bags are declared", func(t *testing.T) {
		d := draftAtBaggage(t, " 2 ")

		if d.Step != models.StepBaggage || d.Ticket.DeclaredBagCount != 2 {
			t.Errorf("got `%s`/`%d`, want `baggage`/`2`", d.Step, d.Ticket.DeclaredBagCount)
		}
	})

	t.Run("should reject bad bag counts", func(t *testing.T) {
		for _, raw := range []string{"", "  ", "two", "-1", "1.5"} {
			start := draftAtAssistance(t)
			got, err := Transition(start, AssistanceSubmitted{DeclaredBagCount: raw})
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("%q: got `%v`, want a validation error", raw, err)
			}
			if !reflect.DeepEqual(got, start) {
				t.Errorf("%q: draft changed on a rejected event", raw)
			}
		}
	})

	t.Run("should reject a companion without an email", func(t *testing.T) {
		start := draftAtAssistance(t)
		_, err := Transition(start, AssistanceSubmitted{
			DeclaredBagCount: "1",
			HasCompanion:     true,
			Companion:        models.Companion{Name: "Max", Surname: "Doe", Phone: "0611111111"},
		})
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field != "companion" {
			t.Errorf("got `%v`, want a companion validation error", err)
		}
	})

	t.Run("should reject an unknown wheelchair option", func(t *testing.T) {
		_, err := Transition(draftAtAssistance(t), AssistanceSubmitted{DeclaredBagCount: "0", WheelchairOption: "hover"})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("got `%v`, want a validation error", err)
		}
	})

	t.Run("should drop companion details when there is no companion", func(t *testing.T) {
		d := mustApply(t, draftAtAssistance(t), AssistanceSubmitted{
			DeclaredBagCount: "0",
			HasCompanion:     false,
			Companion:        models.Companion{Name: "ignored"},
			WheelchairOption: models.WheelchairLoan,
		})
		if d.Ticket.Companion != nil {
			t.Errorf("got `%+v`, want no companion", d.Ticket.Companion)
		}
		if d.Ticket.WheelchairOption != models.WheelchairLoan {
			t.Errorf("got `%s`, want `%s`", d.Ticket.WheelchairOption, models.WheelchairLoan)
		}
	})
}

func TestTransitionBaggage(t *testing.T) {
	t.Run("should follow the two bag scenario", func(t *testing.T) {
		d := draftAtBaggage(t, "2")
		d = mustApply(t, d, BagAdded{Bag: models.Bag{ID: "b1", Weight: "10", Description: "valise"}})
		d = mustApply(t, d, BagAdded{Bag: models.Bag{ID: "b2", Weight: "5", Description: "sac"}})

		full := d
		_, err := Transition(d, BagAdded{Bag: models.Bag{ID: "b3", Weight: "1", Description: "extra"}})
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Message != "you have already added all 2 declared bags" {
			t.Errorf("got `%v`, want the already added all 2 message", err)
		}
		if !reflect.DeepEqual(d, full) || len(d.Ticket.Bags) != 2 {
			t.Errorf("bags changed on a rejected add: `%+v`", d.Ticket.Bags)
		}

		d = mustApply(t, d, BaggageCompleted{})
		if d.Step != models.StepFinalization {
			t.Errorf("got `%s`, want `%s`", d.Step, models.StepFinalization)
		}
	})

	t.Run("should block completion until counts match", func(t *testing.T) {
		d := draftAtBaggage(t, "2")
		d = mustApply(t, d, BagAdded{Bag: models.Bag{ID: "b1", Weight: "10", Description: "valise"}})

		_, err := Transition(d, BaggageCompleted{})
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Message != "added bag count (1) does not match the declared count (2)" {
			t.Errorf("got `%v`, want a count mismatch", err)
		}
	})

	t.Run("should require weight and description", func(t *testing.T) {
		d := draftAtBaggage(t, "1")
		for _, bag := range []models.Bag{
			{ID: "b1", Description: "valise"},
			{ID: "b1", Weight: "10", Description: "  "},
		} {
			if _, err := Transition(d, BagAdded{Bag: bag}); err == nil {
				t.Errorf("got nil error for `%+v`", bag)
			}
		}
	})

	t.Run("should remove exactly one bag and leave the others alone", func(t *testing.T) {
		d := draftAtBaggage(t, "3")
		d = mustApply(t, d, BagAdded{Bag: models.Bag{ID: "b1", Weight: "1", Description: "a"}})
		d = mustApply(t, d, BagAdded{Bag: models.Bag{ID: "b2", Weight: "2", Description: "b"}})
		d = mustApply(t, d, BagAdded{Bag: models.Bag{ID: "b3", Weight: "3", Description: "c"}})
		before := d

		d = mustApply(t, d, BagRemoved{ID: "b2"})

		want := []models.Bag{before.Ticket.Bags[0], before.Ticket.Bags[2]}
		if !reflect.DeepEqual(d.Ticket.Bags, want) {
			t.Errorf("got `%+v`, want `%+v`", d.Ticket.Bags, want)
		}
		if len(before.Ticket.Bags) != 3 {
			t.Error("removal mutated the previous draft")
		}
	})

	t.Run("should reject removing an unknown bag", func(t *testing.T) {
		d := draftAtBaggage(t, "1")
		if _, err := Transition(d, BagRemoved{ID: "missing"}); err == nil {
			t.Error("got nil error, want a validation error")
		}
	})

	t.Run("should reject a duplicate bag id", func(t *testing.T) {
		d := draftAtBaggage(t, "2")
		d = mustApply(t, d, BagAdded{Bag: models.Bag{ID: "b1", Weight: "1", Description: "a"}})
		if _, err := Transition(d, BagAdded{Bag: models.Bag{ID: "b1", Weight: "2", Description: "b"}}); err == nil {
			t.Error("got nil error, want a duplicate id error")
		}
	})
}

func TestTransitionFinalization(t *testing.T) {
	t.Run("should leave the draft unchanged on submission failure", func(t *testing.T) {
		d := draftAtBaggage(t, "0")
		got, err := Transition(d, SubmissionFailed{})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, d) {
			t.Errorf("got `%+v`, want `%+v`", got, d)
		}
	})

	t.Run("should make confirmed terminal", func(t *testing.T) {
		d := mustApply(t, draftAtBaggage(t, "0"), SubmissionSucceeded{})
		if d.Step != models.StepConfirmed || d.Ticket != nil {
			t.Errorf("got `%s` with ticket `%v`, want confirmed without ticket", d.Step, d.Ticket)
		}
		for _, ev := range []Event{Reset{}, LegAdded{}, SubmissionSucceeded{}} {
			if _, err := Transition(d, ev); !errors.Is(err, ErrTerminal) {
				t.Errorf("%s: got `%v`, want `%v`", EventName(ev), err, ErrTerminal)
			}
		}
	})

	t.Run("should reset to lookup and clear the ticket", func(t *testing.T) {
		d := draftAtBaggage(t, "0")
		gen := d.Generation
		d = mustApply(t, d, Reset{})
		if d.Step != models.StepLookup || d.Ticket != nil || d.Generation != gen+1 {
			t.Errorf("got `%+v`, want a cleared lookup draft", d)
		}
	})
}
