package notification

import (
	"context"
	"fmt"
	"strings"

	"pmove/models"
	"pmove/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer is the part of *asynq.Client used to schedule tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Mailer sends an e-mail through the PMove API.
type Mailer interface {
	SendConfirmationEmail(ctx context.Context, email, subject, message string) error
}

// QueueNotifier schedules confirmation e-mails on the asynq queue.
type QueueNotifier struct {
	Queue  Enqueuer
	Logger *zap.Logger
}

func NewQueueNotifier(queue Enqueuer, logger *zap.Logger) (*QueueNotifier, error) {
	if queue == nil {
		return nil, fmt.Errorf("notification service initialization error: queue is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueNotifier{Queue: queue, Logger: logger}, nil
}

func (n *QueueNotifier) NotifyConfirmed(ctx context.Context, p models.ConfirmationPayload) error {
	if p.Email == "" {
		return fmt.Errorf("NotifyConfirmed: no e-mail address for reservation %s", p.ReservationNumber)
	}
	task, opts, err := tasks.NewConfirmationTask(p)
	if err != nil {
		return fmt.Errorf("NotifyConfirmed: failed to build task: %w", err)
	}
	info, err := n.Queue.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("NotifyConfirmed: failed to enqueue task: %w", err)
	}
	n.Logger.Info("Confirmation e-mail scheduled", zap.String("task", info.ID), zap.String("reservation", p.ReservationNumber))
	return nil
}

// ConfirmationSender turns a payload into the e-mail the rider receives.
type ConfirmationSender struct {
	Mailer Mailer
}

func (s *ConfirmationSender) Send(ctx context.Context, p models.ConfirmationPayload) error {
	subject, message := ComposeConfirmation(p)
	if err := s.Mailer.SendConfirmationEmail(ctx, p.Email, subject, message); err != nil {
		return fmt.Errorf("SendConfirmation: %w", err)
	}
	return nil
}

// ComposeConfirmation renders the subject and body of the confirmation e-mail.
func ComposeConfirmation(p models.ConfirmationPayload) (string, string) {
	subject := fmt.Sprintf("PMove : confirmation de votre réservation %s", p.ReservationNumber)

	var b strings.Builder
	name := p.RiderName
	if name == "" {
		name = "voyageur"
	}
	fmt.Fprintf(&b, "Bonjour %s,\n\n", name)
	fmt.Fprintf(&b, "Votre demande d'assistance pour la réservation %s a bien été enregistrée.\n", p.ReservationNumber)
	if p.Origin != "" || p.Destination != "" {
		fmt.Fprintf(&b, "Trajet : %s → %s", p.Origin, p.Destination)
		if p.DepartureTime != "" {
			fmt.Fprintf(&b, " (départ %s)", p.DepartureTime)
		}
		b.WriteString("\n")
	}
	if p.Legs > 1 {
		fmt.Fprintf(&b, "Trajets enregistrés : %d\n", p.Legs)
	}
	fmt.Fprintf(&b, "Bagages : %d\n", p.Bags)
	if p.SummaryURL != "" {
		fmt.Fprintf(&b, "\nRécapitulatif à présenter lors de la prise en charge : %s\n", p.SummaryURL)
	}
	b.WriteString("\nL'équipe PMove")
	return subject, b.String()
}
