package reservation

import (
	"context"

	draftRepo "pmove/database/repository/draft"
	"pmove/metrics"
	"pmove/models"

	"go.uber.org/zap"
)

// ReservationService drives a reservation draft through its steps on behalf
// of a logged in session.
type ReservationService interface {
	InitiateSession(ctx context.Context, sess *models.Session) (models.Draft, error)
	GetDraft(ctx context.Context, sess *models.Session, draftID string) (models.Draft, error)
	LookupReservation(ctx context.Context, sess *models.Session, draftID, reservationNumber string, carrier models.Carrier) (models.Draft, error)
	SubmitAssistance(ctx context.Context, sess *models.Session, draftID string, form AssistanceForm) (models.Draft, error)
	AddBag(ctx context.Context, sess *models.Session, draftID, weight, description string) (models.Draft, error)
	RemoveBag(ctx context.Context, sess *models.Session, draftID, bagID string) (models.Draft, error)
	CompleteBaggage(ctx context.Context, sess *models.Session, draftID string) (models.Draft, error)
	AddLeg(ctx context.Context, sess *models.Session, draftID, reservationNumber string, carrier models.Carrier) (models.Draft, error)
	Reset(ctx context.Context, sess *models.Session, draftID string) (models.Draft, error)
	Summary(ctx context.Context, sess *models.Session, draftID string) (*DraftView, error)
	View(d models.Draft) *DraftView
	Confirm(ctx context.Context, sess *models.Session, draftID string) (*Confirmation, error)
}

// ReservationLookup resolves a reservation number at a carrier into its
// primary itinerary.
type ReservationLookup interface {
	CheckReservation(ctx context.Context, number int, carrier models.Carrier) (models.Leg, error)
}

// SubmissionSink accepts a finished ticket for the requester.
type SubmissionSink interface {
	Submit(ctx context.Context, t *models.Ticket, requesterEmail string) error
}

// TicketArchive keeps submitted tickets for the history view.
type TicketArchive interface {
	Create(ctx context.Context, record models.TicketRecord) (string, error)
}

// ConfirmationNotifier schedules the confirmation e-mail.
type ConfirmationNotifier interface {
	NotifyConfirmed(ctx context.Context, payload models.ConfirmationPayload) error
}

// AssistanceForm is what the user fills in on the assistance step. The
// rider is never part of it; it comes from the session profile.
type AssistanceForm struct {
	HasCompanion     bool                    `json:"hasCompanion"`
	Companion        models.Companion        `json:"companion"`
	DeclaredBagCount string                  `json:"declaredBagCount"`
	WheelchairOption models.WheelchairOption `json:"wheelchairOption"`
	AdditionalNotes  string                  `json:"additionalNotes"`
}

// BagView is a bag with the payload encoded in its QR code.
type BagView struct {
	models.Bag
	ScanURL string `json:"scanUrl"`
}

// DraftView is the read model of a draft for the client screens.
type DraftView struct {
	Draft         models.Draft `json:"draft"`
	SummaryURL    string       `json:"summaryUrl,omitempty"`
	Bags          []BagView    `json:"bags,omitempty"`
	BaggagePolicy string       `json:"baggagePolicy,omitempty"`
	RemainingBags int          `json:"remainingBags"`
}

// Confirmation is returned once the PMove API accepted the ticket.
type Confirmation struct {
	DraftID           string        `json:"draftId"`
	ReservationNumber string        `json:"reservationNumber"`
	SummaryURL        string        `json:"summaryUrl"`
	Ticket            models.Ticket `json:"ticket"`
}

// DefaultReservationService implements ReservationService. Archive and
// Notifier are optional.
type DefaultReservationService struct {
	Drafts   draftRepo.DraftRepository
	Lookup   ReservationLookup
	Sink     SubmissionSink
	Archive  TicketArchive
	Notifier ConfirmationNotifier
	Payloads PayloadBuilder
	Metrics  *metrics.Registry
	Logger   *zap.Logger
	NewID    func() string
}
