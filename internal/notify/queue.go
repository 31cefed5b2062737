package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mmynk/chama/internal/models"
)

// TypeDeliver is the asynq task type for out-of-band notification delivery.
const TypeDeliver = "notification:deliver"

// DeliverPayload is the task body of TypeDeliver.
type DeliverPayload struct {
	NotificationID string                  `json:"notification_id"`
	UserID         string                  `json:"user_id"`
	Type           models.NotificationType `json:"type"`
	Title          string                  `json:"title"`
	Message        string                  `json:"message"`
	Data           map[string]string       `json:"data,omitempty"`
}

// NewDeliverTask encodes n as a TypeDeliver task.
func NewDeliverTask(n *models.Notification) (*asynq.Task, error) {
	data, err := json.Marshal(DeliverPayload{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		Data:           n.Data,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeDeliver, data), nil
}

// Enqueuer is the part of *asynq.Client the queue notifier uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueNotifier hands notifications to the worker through asynq. The task
// ID is the notification ID so a notification is queued at most once.
type QueueNotifier struct {
	client Enqueuer
}

func NewQueueNotifier(client Enqueuer) *QueueNotifier {
	return &QueueNotifier{client: client}
}

func (q *QueueNotifier) Notify(ctx context.Context, n *models.Notification) error {
	task, err := NewDeliverTask(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification task: %w", err)
	}

	_, err = q.client.EnqueueContext(ctx, task,
		asynq.TaskID(n.ID),
		asynq.MaxRetry(5),
		asynq.Retention(24*time.Hour),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}
