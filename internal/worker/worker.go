// Package worker processes queued notification deliveries.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/mmynk/chama/internal/notify"
	"github.com/mmynk/chama/internal/storage"
)

// Worker handles notify.TypeDeliver tasks.
type Worker struct {
	users  storage.UserQueries
	sender Sender
}

func NewWorker(users storage.UserQueries, sender Sender) *Worker {
	return &Worker{users: users, sender: sender}
}

// HandleDeliver emails a notification to its recipient. Malformed payloads
// and unknown users are not retried.
func (w *Worker) HandleDeliver(ctx context.Context, t *asynq.Task) error {
	var p notify.DeliverPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	user, err := w.users.GetUserByID(ctx, p.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("recipient %s not found: %w", p.UserID, asynq.SkipRetry)
	}
	if err != nil {
		return err
	}
	if user.Email == "" {
		slog.Debug("Recipient has no email address", "user_id", user.ID, "notification_id", p.NotificationID)
		return nil
	}

	if err := w.sender.Send(ctx, user.Email, "[Chama] "+p.Title, renderBody(user.DisplayName, p)); err != nil {
		return err
	}
	slog.Info("Notification delivered", "notification_id", p.NotificationID, "type", p.Type, "user_id", user.ID)
	return nil
}

func renderBody(name string, p notify.DeliverPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n%s\n", name, p.Message)
	b.WriteString("\nOpen the app to see the details.\n")
	return b.String()
}

// NewServeMux routes every task type the worker understands.
func NewServeMux(w *Worker) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(notify.TypeDeliver, w.HandleDeliver)
	return mux
}

// NewServer builds the asynq server for redisAddr.
func NewServer(redisAddr string, concurrency int) *asynq.Server {
	return asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: concurrency,
			Logger:      slogAdapter{},
		},
	)
}

// slogAdapter routes asynq's own logging through slog.
type slogAdapter struct{}

func (slogAdapter) Debug(args ...interface{}) { slog.Debug(fmt.Sprint(args...)) }
func (slogAdapter) Info(args ...interface{})  { slog.Info(fmt.Sprint(args...)) }
func (slogAdapter) Warn(args ...interface{})  { slog.Warn(fmt.Sprint(args...)) }
func (slogAdapter) Error(args ...interface{}) { slog.Error(fmt.Sprint(args...)) }
func (slogAdapter) Fatal(args ...interface{}) {
	slog.Error(fmt.Sprint(args...))
	os.Exit(1)
}
