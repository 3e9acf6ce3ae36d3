package cron

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pmove/models"
	"pmove/services/notification"
	"pmove/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type recordingMailer struct {
	sent int
	err  error
}

func (m *recordingMailer) SendConfirmationEmail(ctx context.Context, email, subject, message string) error {
	m.sent++
	return m.err
}

func TestHandleConfirmationTask(t *testing.T) {
	ctx := context.Background()

	t.Run("should send the e-mail for a valid task", func(t *testing.T) {
		m := &recordingMailer{}
		h := handleConfirmationTask(&notification.ConfirmationSender{Mailer: m}, zap.NewNop())

		task, _, err := tasks.NewConfirmationTask(models.ConfirmationPayload{Email: "jane@example.com", ReservationNumber: "4821"})
		if err != nil {
			t.Fatal(err)
		}
		if err := h(ctx, task); err != nil {
			t.Fatal(err)
		}
		if m.sent != 1 {
			t.Errorf("got `%d`, want `%d` e-mails", m.sent, 1)
		}
	})

	t.Run("should not retry a malformed payload", func(t *testing.T) {
		m := &recordingMailer{}
		h := handleConfirmationTask(&notification.ConfirmationSender{Mailer: m}, zap.NewNop())

		err := h(ctx, asynq.NewTask(tasks.TypeSendConfirmation, []byte("{")))
		if !errors.Is(err, asynq.SkipRetry) {
			t.Errorf("got `%v`, want `%v`", err, asynq.SkipRetry)
		}
		if m.sent != 0 {
			t.Errorf("got `%d`, want `%d` e-mails", m.sent, 0)
		}
	})

	t.Run("should report a failed send without retrying it", func(t *testing.T) {
		m := &recordingMailer{err: errors.New("smtp down")}
		h := handleConfirmationTask(&notification.ConfirmationSender{Mailer: m}, zap.NewNop())

		task, _, _ := tasks.NewConfirmationTask(models.ConfirmationPayload{Email: "jane@example.com"})
		err := h(ctx, task)
		if err == nil || !strings.Contains(err.Error(), "smtp down") {
			t.Errorf("got `%v`, want the mailer error", err)
		}
		if !errors.Is(err, asynq.SkipRetry) {
			t.Errorf("got `%v`, want it to wrap `%v`", err, asynq.SkipRetry)
		}
		if m.sent != 1 {
			t.Errorf("got `%d`, want `%d` send attempts", m.sent, 1)
		}
	})
}
