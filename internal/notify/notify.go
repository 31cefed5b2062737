// Package notify delivers in-app notifications produced by the engine.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/chama/internal/models"
	"github.com/mmynk/chama/internal/storage"
)

// Notifier delivers a notification to its user.
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification) error
}

// New builds a notification with a fresh ID.
func New(userID string, typ models.NotificationType, title, message string, data map[string]string) *models.Notification {
	return &models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		Data:      data,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

// StoreNotifier persists notifications to the in-app feed.
type StoreNotifier struct {
	q storage.NotificationQueries
}

func NewStoreNotifier(q storage.NotificationQueries) *StoreNotifier {
	return &StoreNotifier{q: q}
}

func (s *StoreNotifier) Notify(ctx context.Context, n *models.Notification) error {
	if err := s.q.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

// Fanout calls every notifier in order and joins their errors. A failing
// notifier does not stop the ones after it.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	var errs []error
	for _, notifier := range f {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(context.Context, *models.Notification) error { return nil }
