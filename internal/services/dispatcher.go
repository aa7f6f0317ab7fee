package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wavely-app/backend/internal/models"
	"github.com/wavely-app/backend/internal/realtime"
	"github.com/wavely-app/backend/internal/repositories"
	"go.uber.org/zap"
)

// NotificationDispatcher persists a notification for an event and pushes it
// to the recipient's live channels. Persistence is the source of truth: it
// happens first, and a failed push is logged and dropped, never rolled back
// or retried — the recipient picks the notification up via pull instead.
type NotificationDispatcher struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	hub           *realtime.Hub
	logger        *zap.Logger
}

// NewNotificationDispatcher creates a new NotificationDispatcher
func NewNotificationDispatcher(notifications repositories.NotificationRepository, users repositories.UserRepository, hub *realtime.Hub, logger *zap.Logger) *NotificationDispatcher {
	return &NotificationDispatcher{
		notifications: notifications,
		users:         users,
		hub:           hub,
		logger:        logger,
	}
}

// pushPayload is the frame written to live channels.
type pushPayload struct {
	Type         string              `json:"type"`
	Notification models.Notification `json:"notification"`
}

// Dispatch records the event as a notification and delivers it best-effort.
// Events where the actor is also the recipient are skipped entirely.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, event Event) error {
	if event.ActorID == event.RecipientID {
		return nil
	}

	actor, err := d.users.GetUserByID(event.ActorID)
	if err != nil {
		return fmt.Errorf("%w: actor lookup: %v", ErrInternal, err)
	}

	notification := &models.Notification{
		RecipientID: event.RecipientID,
		Kind:        string(event.Kind),
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		PostID:      event.PostID,
		Message:     messageFor(event.Kind, actor.Name),
	}

	if err := d.notifications.CreateNotification(ctx, notification); err != nil {
		return fmt.Errorf("%w: notification persist: %v", ErrInternal, err)
	}

	d.push(notification)
	return nil
}

// push fans the stored notification out to every live channel the recipient
// holds. A dead channel is unregistered on the spot so the registry never
// hands it out again.
func (d *NotificationDispatcher) push(notification *models.Notification) {
	channels := d.hub.ChannelsFor(notification.RecipientID)
	if len(channels) == 0 {
		return
	}

	payload, err := json.Marshal(pushPayload{Type: "notification", Notification: *notification})
	if err != nil {
		d.logger.Error("notification payload marshal failed", zap.Error(err))
		return
	}

	for _, ch := range channels {
		if err := ch.Send(payload); err != nil {
			d.logger.Warn("push failed, dropping channel",
				zap.Uint("recipient_id", notification.RecipientID),
				zap.String("channel_id", ch.ID()),
				zap.Error(err))
			d.hub.Unregister(ch)
			_ = ch.Close()
		}
	}
}

// messageFor renders the human-readable message at dispatch time so it stays
// stable even if the actor later renames.
func messageFor(kind Kind, actorName string) string {
	switch kind {
	case KindFollow:
		return actorName + " started following you"
	case KindLike:
		return actorName + " liked your post"
	case KindLaugh:
		return actorName + " laughed at your post"
	case KindComment:
		return actorName + " commented on your post"
	default:
		return actorName + " interacted with you"
	}
}
