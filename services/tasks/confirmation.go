package tasks

import (
	"encoding/json"
	"time"

	"pmove/models"

	"github.com/hibiken/asynq"
)

const TypeSendConfirmation = "confirmation:send"

// NewConfirmationTask builds the task that e-mails the rider once a ticket
// has been submitted.
func NewConfirmationTask(payload models.ConfirmationPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendConfirmation, b)
	// The mail goes out at most once; failures stay in the archived queue.
	opts := []asynq.Option{
		asynq.MaxRetry(0),
		asynq.Timeout(30 * time.Second),
	}

	return task, opts, nil
}

// ParseConfirmationTask reads the payload back on the worker side.
func ParseConfirmationTask(task *asynq.Task) (models.ConfirmationPayload, error) {
	var p models.ConfirmationPayload
	err := json.Unmarshal(task.Payload(), &p)
	return p, err
}
