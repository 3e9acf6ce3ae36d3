package reservation

import (
	"strconv"
	"strings"

	"pmove/models"
)

// ParseBagCount parses the declared bag count typed by the user.
func ParseBagCount(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, newValidationError("declaredBagCount", "please specify the number of bags")
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, newValidationError("declaredBagCount", "the number of bags must be a whole number of zero or more, got %q", raw)
	}
	return n, nil
}

// ParseReservationNumber checks that the reservation number is an integer,
// which is what the lookup endpoint expects.
func ParseReservationNumber(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, newValidationError("reservationNumber", "please enter a reservation number and select a carrier")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, newValidationError("reservationNumber", "reservation number %q is not a number", raw)
	}
	return n, nil
}

// ValidateForSubmission re-checks the whole ticket right before it leaves
// for the external API, independently of the per-step checks.
func ValidateForSubmission(t *models.Ticket, requesterEmail string) error {
	if t == nil || len(t.Legs) == 0 {
		return newValidationError("ticket", "the ticket has no reservation")
	}
	if strings.TrimSpace(requesterEmail) == "" {
		return newValidationError("email", "the requester e-mail is missing from the session")
	}

	seen := make(map[int]bool, len(t.Legs))
	for i, leg := range t.Legs {
		if leg.ReservationNumber == "" || !leg.Carrier.Valid() {
			return newValidationError("legs", "leg %d is missing its reservation number or carrier", i+1)
		}
		if (i == 0 && !leg.Primary()) || (i > 0 && leg.Index < 2) {
			return newValidationError("legs", "leg %d has an invalid index %d", i+1, leg.Index)
		}
		if seen[leg.Index] {
			return newValidationError("legs", "leg index %d is used twice", leg.Index)
		}
		seen[leg.Index] = true
	}

	if t.HasCompanion && (t.Companion == nil || !t.Companion.Complete()) {
		return newValidationError("companion", "companion name, surname, phone and email are all required")
	}
	if !t.WheelchairOption.Valid() {
		return newValidationError("wheelchairOption", "unknown wheelchair option %q", t.WheelchairOption)
	}
	if err := checkBagCount(t); err != nil {
		return err
	}
	return checkBagIDs(t.Bags)
}
