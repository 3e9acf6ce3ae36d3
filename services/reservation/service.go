package reservation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	draftRepo "pmove/database/repository/draft"
	"pmove/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewDefaultReservationService wires the mandatory collaborators. Archive,
// Notifier and Metrics can be set on the returned value.
func NewDefaultReservationService(drafts draftRepo.DraftRepository, lookup ReservationLookup, sink SubmissionSink, payloads PayloadBuilder, logger *zap.Logger) *DefaultReservationService {
	return &DefaultReservationService{
		Drafts:   drafts,
		Lookup:   lookup,
		Sink:     sink,
		Payloads: payloads,
		Logger:   logger,
		NewID:    uuid.NewString,
	}
}

var _ ReservationService = (*DefaultReservationService)(nil)

func (s *DefaultReservationService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.L()
	}
	return s.Logger
}

func (s *DefaultReservationService) newID() string {
	if s.NewID == nil {
		return uuid.NewString()
	}
	return s.NewID()
}

// InitiateSession opens an empty draft at the lookup step.
func (s *DefaultReservationService) InitiateSession(ctx context.Context, sess *models.Session) (models.Draft, error) {
	if sess == nil {
		return models.Draft{}, ErrDraftNotFound
	}
	d := models.Draft{
		ID:        s.newID(),
		SessionID: sess.ID,
		Step:      models.StepLookup,
	}
	if err := s.Drafts.Create(ctx, d); err != nil {
		s.logger().Error("Failed to create draft", zap.String("session", sess.ID), zap.Error(err))
		return models.Draft{}, fmt.Errorf("failed to start reservation: %w", err)
	}
	s.logger().Info("Reservation draft created", zap.String("draft", d.ID), zap.String("session", sess.ID))
	return s.Drafts.Get(ctx, d.ID)
}

// GetDraft loads a draft owned by sess. Drafts of other sessions are
// reported as not found.
func (s *DefaultReservationService) GetDraft(ctx context.Context, sess *models.Session, draftID string) (models.Draft, error) {
	if sess == nil || draftID == "" {
		return models.Draft{}, ErrDraftNotFound
	}
	d, err := s.Drafts.Get(ctx, draftID)
	if err != nil {
		return models.Draft{}, err
	}
	if d.SessionID != sess.ID {
		return models.Draft{}, ErrDraftNotFound
	}
	return d, nil
}

// LookupReservation resolves the primary reservation and moves the draft to
// the assistance step. On failure the draft stays at lookup with no ticket.
func (s *DefaultReservationService) LookupReservation(ctx context.Context, sess *models.Session, draftID, reservationNumber string, carrier models.Carrier) (models.Draft, error) {
	return s.lookupAndApply(ctx, sess, draftID, models.StepLookup, reservationNumber, carrier, func(leg models.Leg) Event {
		return LookupSucceeded{Leg: leg}
	})
}

// AddLeg looks up a further reservation from the finalization step and
// appends it to the ticket.
func (s *DefaultReservationService) AddLeg(ctx context.Context, sess *models.Session, draftID, reservationNumber string, carrier models.Carrier) (models.Draft, error) {
	return s.lookupAndApply(ctx, sess, draftID, models.StepFinalization, reservationNumber, carrier, func(leg models.Leg) Event {
		return LegAdded{Leg: leg}
	})
}

func (s *DefaultReservationService) lookupAndApply(
	ctx context.Context,
	sess *models.Session,
	draftID string,
	want models.Step,
	reservationNumber string,
	carrier models.Carrier,
	toEvent func(models.Leg) Event,
) (models.Draft, error) {
	number, err := ParseReservationNumber(reservationNumber)
	if err != nil {
		return models.Draft{}, err
	}
	if !carrier.Valid() {
		return models.Draft{}, newValidationError("carrier", "please select a carrier among %s", carrierNames())
	}

	d, err := s.GetDraft(ctx, sess, draftID)
	if err != nil {
		return models.Draft{}, err
	}
	if err := checkStep(d, want, toEvent(models.Leg{})); err != nil {
		return models.Draft{}, err
	}

	unlock, err := s.Drafts.Lock(ctx, draftID)
	if err != nil {
		return models.Draft{}, err
	}
	defer unlock()

	started := d.Generation
	begin := time.Now()
	leg, err := s.Lookup.CheckReservation(ctx, number, carrier)
	if err != nil {
		lerr := toLookupError(err)
		result := "error"
		if lerr.NotFound {
			result = "not_found"
		}
		s.Metrics.ObserveLookup(result, time.Since(begin))
		s.logger().Info("Reservation lookup failed",
			zap.String("draft", draftID),
			zap.String("carrier", string(carrier)),
			zap.Int("reservation", number),
			zap.Error(err),
		)
		return models.Draft{}, lerr
	}
	s.Metrics.ObserveLookup("ok", time.Since(begin))
	leg.Carrier = carrier

	return s.apply(ctx, sess, draftID, toEvent(leg), func(cur models.Draft) error {
		if cur.Generation != started {
			return ErrStaleResponse
		}
		return nil
	})
}

// SubmitAssistance records the assistance form. The rider is taken from
// the session profile.
func (s *DefaultReservationService) SubmitAssistance(ctx context.Context, sess *models.Session, draftID string, form AssistanceForm) (models.Draft, error) {
	if sess == nil {
		return models.Draft{}, ErrDraftNotFound
	}
	ev := AssistanceSubmitted{
		Rider:            sess.Profile.Rider(),
		HasCompanion:     form.HasCompanion,
		Companion:        trimCompanion(form.Companion),
		DeclaredBagCount: form.DeclaredBagCount,
		WheelchairOption: form.WheelchairOption,
		AdditionalNotes:  strings.TrimSpace(form.AdditionalNotes),
	}
	return s.apply(ctx, sess, draftID, ev, nil)
}

func (s *DefaultReservationService) AddBag(ctx context.Context, sess *models.Session, draftID, weight, description string) (models.Draft, error) {
	bag := models.Bag{ID: s.newID(), Weight: weight, Description: description}
	return s.apply(ctx, sess, draftID, BagAdded{Bag: bag}, nil)
}

func (s *DefaultReservationService) RemoveBag(ctx context.Context, sess *models.Session, draftID, bagID string) (models.Draft, error) {
	return s.apply(ctx, sess, draftID, BagRemoved{ID: bagID}, nil)
}

func (s *DefaultReservationService) CompleteBaggage(ctx context.Context, sess *models.Session, draftID string) (models.Draft, error) {
	return s.apply(ctx, sess, draftID, BaggageCompleted{}, nil)
}

// Reset discards the ticket and goes back to lookup. A lookup still in
// flight for this draft will find the generation moved and be dropped.
func (s *DefaultReservationService) Reset(ctx context.Context, sess *models.Session, draftID string) (models.Draft, error) {
	return s.apply(ctx, sess, draftID, Reset{}, nil)
}

func (s *DefaultReservationService) Summary(ctx context.Context, sess *models.Session, draftID string) (*DraftView, error) {
	d, err := s.GetDraft(ctx, sess, draftID)
	if err != nil {
		return nil, err
	}
	return s.View(d), nil
}

// View decorates a draft with its scannable payloads and the carrier's
// baggage policy.
func (s *DefaultReservationService) View(d models.Draft) *DraftView {
	v := &DraftView{Draft: d}
	if d.Ticket == nil {
		return v
	}
	v.SummaryURL = s.Payloads.SummaryURL(d.Ticket)
	v.BaggagePolicy = BaggagePolicies[d.Ticket.PrimaryLeg().Carrier]
	v.RemainingBags = max(0, d.Ticket.DeclaredBagCount-len(d.Ticket.Bags))
	v.Bags = make([]BagView, 0, len(d.Ticket.Bags))
	for _, b := range d.Ticket.Bags {
		v.Bags = append(v.Bags, BagView{Bag: b, ScanURL: s.Payloads.BagURL(b)})
	}
	return v
}

// Confirm re-validates the ticket and hands it to the submission sink. On
// failure the stored draft is left byte for byte as it was so the user can
// retry.
func (s *DefaultReservationService) Confirm(ctx context.Context, sess *models.Session, draftID string) (*Confirmation, error) {
	if _, err := s.GetDraft(ctx, sess, draftID); err != nil {
		return nil, err
	}

	unlock, err := s.Drafts.Lock(ctx, draftID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Re-read under the lock.
	d, err := s.GetDraft(ctx, sess, draftID)
	if err != nil {
		return nil, err
	}
	if err := checkStep(d, models.StepFinalization, SubmissionSucceeded{}); err != nil {
		return nil, err
	}

	email := sess.Profile.Mail
	if err := ValidateForSubmission(d.Ticket, email); err != nil {
		s.Metrics.ObserveSubmission("invalid")
		return nil, err
	}

	if err := s.Sink.Submit(ctx, d.Ticket, email); err != nil {
		s.Metrics.ObserveSubmission("failed")
		s.Metrics.ObserveTransition(EventName(SubmissionFailed{}), "ok")
		s.logger().Warn("Ticket submission failed", zap.String("draft", draftID), zap.Error(err))
		return nil, toSubmissionError(err)
	}
	s.Metrics.ObserveSubmission("ok")

	ticket := d.Ticket.Clone()
	conf := &Confirmation{
		DraftID:           draftID,
		ReservationNumber: ticket.PrimaryLeg().ReservationNumber,
		SummaryURL:        s.Payloads.SummaryURL(ticket),
		Ticket:            *ticket,
	}

	generation := d.Generation
	_, err = s.apply(ctx, sess, draftID, SubmissionSucceeded{}, func(cur models.Draft) error {
		if cur.Generation != generation {
			return ErrStaleResponse
		}
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrStaleResponse):
		// A reset landed during the submission; keep the new draft.
		s.logger().Info("Ticket submitted after the draft moved on", zap.String("draft", draftID))
	default:
		s.logger().Warn("Ticket submitted but the draft could not be closed", zap.String("draft", draftID), zap.Error(err))
		if derr := s.Drafts.Delete(ctx, draftID); derr != nil {
			s.logger().Error("Failed to delete submitted draft", zap.String("draft", draftID), zap.Error(derr))
		}
	}

	s.archive(ctx, email, ticket)
	s.notify(ctx, email, conf)

	s.logger().Info("Ticket submitted",
		zap.String("draft", draftID),
		zap.String("reservation", conf.ReservationNumber),
		zap.Int("legs", len(ticket.Legs)),
		zap.Int("bags", len(ticket.Bags)),
	)
	return conf, nil
}

func (s *DefaultReservationService) archive(ctx context.Context, email string, t *models.Ticket) {
	if s.Archive == nil {
		return
	}
	leg := t.PrimaryLeg()
	record := models.TicketRecord{
		ReservationNumber: leg.ReservationNumber,
		Carrier:           leg.Carrier,
		RequesterEmail:    email,
		RiderName:         t.Rider.Name,
		RiderSurname:      t.Rider.Surname,
		Ticket:            *t,
	}
	if _, err := s.Archive.Create(ctx, record); err != nil {
		s.logger().Warn("Failed to archive submitted ticket", zap.String("reservation", leg.ReservationNumber), zap.Error(err))
	}
}

func (s *DefaultReservationService) notify(ctx context.Context, email string, conf *Confirmation) {
	if s.Notifier == nil {
		return
	}
	leg := conf.Ticket.PrimaryLeg()
	payload := models.ConfirmationPayload{
		Email:             email,
		RiderName:         strings.TrimSpace(conf.Ticket.Rider.Name + " " + conf.Ticket.Rider.Surname),
		ReservationNumber: leg.ReservationNumber,
		Origin:            leg.Origin,
		Destination:       leg.Destination,
		DepartureTime:     leg.DepartureTime,
		Legs:              len(conf.Ticket.Legs),
		Bags:              len(conf.Ticket.Bags),
		SummaryURL:        conf.SummaryURL,
	}
	if err := s.Notifier.NotifyConfirmed(ctx, payload); err != nil {
		s.logger().Warn("Failed to schedule confirmation e-mail", zap.String("reservation", leg.ReservationNumber), zap.Error(err))
	}
}

// apply runs ev against the stored draft atomically. guard, when set, can
// veto the update after the current draft has been read.
func (s *DefaultReservationService) apply(ctx context.Context, sess *models.Session, draftID string, ev Event, guard func(models.Draft) error) (models.Draft, error) {
	if sess == nil {
		return models.Draft{}, ErrDraftNotFound
	}
	d, err := s.Drafts.Update(ctx, draftID, func(cur models.Draft) (models.Draft, error) {
		if cur.SessionID != sess.ID {
			return cur, ErrDraftNotFound
		}
		if guard != nil {
			if err := guard(cur); err != nil {
				return cur, err
			}
		}
		return Transition(cur, ev)
	})
	s.Metrics.ObserveTransition(EventName(ev), resultLabel(err))
	if err != nil {
		s.logger().Debug("Draft event rejected", zap.String("draft", draftID), zap.String("event", EventName(ev)), zap.Error(err))
		return models.Draft{}, err
	}
	return d, nil
}

// checkStep rejects an event up front, before any network call is made.
func checkStep(d models.Draft, want models.Step, ev Event) error {
	if d.Step == models.StepConfirmed {
		return ErrTerminal
	}
	return expectStep(d, ev, want)
}

type statusError interface {
	error
	StatusCode() int
}

func toLookupError(err error) *LookupError {
	var se statusError
	if errors.As(err, &se) {
		return &LookupError{
			NotFound: se.StatusCode() == http.StatusNotFound,
			Message:  se.Error(),
			Err:      err,
		}
	}
	return &LookupError{
		Message: "the reservation service could not be reached, please try again",
		Err:     err,
	}
}

func toSubmissionError(err error) *SubmissionError {
	var se statusError
	if errors.As(err, &se) {
		return &SubmissionError{Status: se.StatusCode(), Message: se.Error(), Err: err}
	}
	return &SubmissionError{Status: http.StatusBadGateway, Message: err.Error(), Err: err}
}

func resultLabel(err error) string {
	var (
		verr *ValidationError
		terr *TransitionError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verr):
		return "invalid"
	case errors.As(err, &terr), errors.Is(err, ErrTerminal):
		return "rejected"
	case errors.Is(err, ErrStaleResponse):
		return "stale"
	default:
		return "error"
	}
}

func trimCompanion(c models.Companion) models.Companion {
	return models.Companion{
		Name:    strings.TrimSpace(c.Name),
		Surname: strings.TrimSpace(c.Surname),
		Phone:   strings.TrimSpace(c.Phone),
		Email:   strings.TrimSpace(c.Email),
	}
}

func carrierNames() string {
	names := make([]string, len(models.Carriers))
	for i, c := range models.Carriers {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
