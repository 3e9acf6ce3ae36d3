package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"pmove/config"
	"pmove/services/notification"
	"pmove/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RedisOpt is the asynq connection for the confirmation queue.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitConfirmationWorker runs the confirmation e-mail worker in background
// and returns the server so the caller can shut it down.
func InitConfirmationWorker(sender *notification.ConfirmationSender, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: config.AppConfig.WorkerConcurrency,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendConfirmation, handleConfirmationTask(sender, logger))

	// Start async worker with retry logic
	go func() {
		logger.Info("[ConfirmationWorker] Starting async worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Start(mux); err != nil {
				logger.Warn("[ConfirmationWorker] Failed to start worker",
					zap.Int("attempt", attempts), zap.Int("max", maxAttempts), zap.Error(err))

				if attempts == maxAttempts {
					log.Fatal("[ConfirmationWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
	return srv
}

func handleConfirmationTask(sender *notification.ConfirmationSender, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseConfirmationTask(task)
		if err != nil {
			logger.Error("[ConfirmationHandler] Invalid payload", zap.Error(err))
			// Retrying cannot fix a malformed payload.
			return asynq.SkipRetry
		}

		logger.Info("[ConfirmationHandler] Sending confirmation",
			zap.String("reservation", p.ReservationNumber), zap.String("email", p.Email))

		// Sent once: a send that timed out may still have been delivered.
		if err := sender.Send(ctx, p); err != nil {
			logger.Error("[ConfirmationHandler] Failed to send confirmation",
				zap.String("reservation", p.ReservationNumber), zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return nil
	}
}
