package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavely-app/backend/internal/models"
	"github.com/wavely-app/backend/internal/realtime"
	"github.com/wavely-app/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []models.Notification
	failing bool
}

func (f *fakeNotificationRepo) CreateNotification(ctx context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("store unavailable")
	}
	n.ID = primitive.NewObjectID()
	f.created = append(f.created, *n)
	return nil
}

func (f *fakeNotificationRepo) GetByRecipientID(ctx context.Context, recipientID uint, page, limit int) ([]models.Notification, int64, error) {
	return nil, 0, nil
}

func (f *fakeNotificationRepo) GetUnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.created {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkAsRead(ctx context.Context, recipientID uint, id primitive.ObjectID) error {
	return nil
}

func (f *fakeNotificationRepo) MarkAllAsRead(ctx context.Context, recipientID uint) error {
	return nil
}

type fakeUserRepo struct {
	users map[uint]*models.User
}

func (f *fakeUserRepo) CreateUser(user *models.User) error { return nil }

func (f *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

type pushChannel struct {
	id       string
	userID   uint
	mu       sync.Mutex
	payloads [][]byte
	sendErr  error
	closed   bool
}

func (c *pushChannel) ID() string   { return c.id }
func (c *pushChannel) UserID() uint { return c.userID }

func (c *pushChannel) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.payloads = append(c.payloads, payload)
	return nil
}

func (c *pushChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *pushChannel) received() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.payloads)
}

func newTestDispatcher() (*NotificationDispatcher, *fakeNotificationRepo, *realtime.Hub) {
	notifRepo := &fakeNotificationRepo{}
	userRepo := &fakeUserRepo{users: map[uint]*models.User{
		1: {ID: 1, Name: "alice"},
		2: {ID: 2, Name: "bob"},
	}}
	hub := realtime.NewHub(zap.NewNop())
	d := NewNotificationDispatcher(notifRepo, userRepo, hub, zap.NewNop())
	return d, notifRepo, hub
}

var _ repositories.NotificationRepository = (*fakeNotificationRepo)(nil)
var _ repositories.UserRepository = (*fakeUserRepo)(nil)
var _ realtime.Channel = (*pushChannel)(nil)

func TestDispatchSkipsSelfNotification(t *testing.T) {
	d, repo, _ := newTestDispatcher()

	err := d.Dispatch(context.Background(), Event{Kind: KindLike, ActorID: 1, RecipientID: 1, PostID: 10})
	require.NoError(t, err)
	assert.Empty(t, repo.created)
}

func TestDispatchPersistsForOfflineRecipient(t *testing.T) {
	d, repo, _ := newTestDispatcher()

	err := d.Dispatch(context.Background(), Event{Kind: KindLike, ActorID: 1, RecipientID: 2, PostID: 10})
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	n := repo.created[0]
	assert.Equal(t, uint(2), n.RecipientID)
	assert.Equal(t, "like", n.Kind)
	assert.Equal(t, "alice", n.ActorName)
	assert.Equal(t, "alice liked your post", n.Message)
	assert.False(t, n.IsRead)

	count, err := repo.GetUnreadCount(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDispatchPushesToAllLiveChannels(t *testing.T) {
	d, repo, hub := newTestDispatcher()

	phone := &pushChannel{id: "phone", userID: 2}
	laptop := &pushChannel{id: "laptop", userID: 2}
	hub.Register(phone)
	hub.Register(laptop)

	err := d.Dispatch(context.Background(), Event{Kind: KindFollow, ActorID: 1, RecipientID: 2})
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Equal(t, 1, phone.received())
	assert.Equal(t, 1, laptop.received())
	assert.Contains(t, string(phone.payloads[0]), "alice started following you")
}

func TestDispatchPushFailureDoesNotAffectPersistence(t *testing.T) {
	d, repo, hub := newTestDispatcher()

	dead := &pushChannel{id: "dead", userID: 2, sendErr: errors.New("broken pipe")}
	hub.Register(dead)

	err := d.Dispatch(context.Background(), Event{Kind: KindComment, ActorID: 1, RecipientID: 2, PostID: 10})
	require.NoError(t, err, "delivery failure must not surface to the caller")

	require.Len(t, repo.created, 1, "the notification stays persisted")
	assert.False(t, hub.Online(2), "the dead channel is unregistered")
	assert.True(t, dead.closed)
}

func TestDispatchPersistFailureSkipsDelivery(t *testing.T) {
	d, repo, hub := newTestDispatcher()
	repo.failing = true

	ch := &pushChannel{id: "live", userID: 2}
	hub.Register(ch)

	err := d.Dispatch(context.Background(), Event{Kind: KindLike, ActorID: 1, RecipientID: 2, PostID: 10})
	assert.ErrorIs(t, err, ErrInternal)
	assert.Zero(t, ch.received(), "no push happens when persistence failed")
}

func TestDispatchUnknownActor(t *testing.T) {
	d, repo, _ := newTestDispatcher()

	err := d.Dispatch(context.Background(), Event{Kind: KindLike, ActorID: 99, RecipientID: 2, PostID: 10})
	assert.ErrorIs(t, err, ErrInternal)
	assert.Empty(t, repo.created)
}

func TestMessageForKinds(t *testing.T) {
	assert.Equal(t, "alice started following you", messageFor(KindFollow, "alice"))
	assert.Equal(t, "alice liked your post", messageFor(KindLike, "alice"))
	assert.Equal(t, "alice laughed at your post", messageFor(KindLaugh, "alice"))
	assert.Equal(t, "alice commented on your post", messageFor(KindComment, "alice"))
}
