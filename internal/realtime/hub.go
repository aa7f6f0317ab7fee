// Package realtime holds the process-local delivery state: the registry of
// live websocket channels per user and the channel abstraction the dispatcher
// pushes through. Nothing in here is durable; after a restart every user is
// offline until they reconnect.
package realtime

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
)

// Channel is a single live delivery endpoint for one user. A user may hold
// several at once (multi-device).
type Channel interface {
	ID() string
	UserID() uint
	Send(payload []byte) error
	Close() error
}

// channelSet holds one user's open channels behind its own mutex, so
// register/unregister traffic for different users never contends.
type channelSet struct {
	mu       sync.Mutex
	channels map[string]Channel
	removed  bool // set once the empty set has been dropped from the hub map
}

// Hub is the connection registry: userID -> set of live channels.
type Hub struct {
	users  *xsync.MapOf[uint, *channelSet]
	logger *zap.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		users:  xsync.NewMapOf[uint, *channelSet](),
		logger: logger,
	}
}

// Register adds the channel to its user's set. Registering the same channel
// twice is a no-op.
func (h *Hub) Register(ch Channel) {
	for {
		set, _ := h.users.LoadOrStore(ch.UserID(), &channelSet{channels: make(map[string]Channel)})
		set.mu.Lock()
		if set.removed {
			// Lost a race with the last unregister; the set is gone from
			// the map, start over with a fresh one.
			set.mu.Unlock()
			continue
		}
		set.channels[ch.ID()] = ch
		online := len(set.channels)
		set.mu.Unlock()
		h.logger.Debug("channel registered",
			zap.Uint("user_id", ch.UserID()),
			zap.String("channel_id", ch.ID()),
			zap.Int("open_channels", online))
		return
	}
}

// Unregister removes the channel from its user's set; dropping the last
// channel takes the user offline. Unknown channels are ignored, which covers
// disconnects that happen before registration completed.
func (h *Hub) Unregister(ch Channel) {
	set, ok := h.users.Load(ch.UserID())
	if !ok {
		return
	}
	set.mu.Lock()
	delete(set.channels, ch.ID())
	empty := len(set.channels) == 0
	if empty {
		set.removed = true
	}
	set.mu.Unlock()

	if empty {
		h.users.Compute(ch.UserID(), func(old *channelSet, loaded bool) (*channelSet, bool) {
			// Only drop the entry if it is still the set we emptied; a fresh
			// set stored by a concurrent register stays put.
			return old, !loaded || old == set
		})
		h.logger.Debug("user offline", zap.Uint("user_id", ch.UserID()))
	}
}

// ChannelsFor returns a snapshot of the user's live channels. The slice is
// empty for offline users.
func (h *Hub) ChannelsFor(userID uint) []Channel {
	set, ok := h.users.Load(userID)
	if !ok {
		return nil
	}
	set.mu.Lock()
	defer set.mu.Unlock()
	channels := make([]Channel, 0, len(set.channels))
	for _, ch := range set.channels {
		channels = append(channels, ch)
	}
	return channels
}

// Online reports whether the user has at least one live channel.
func (h *Hub) Online(userID uint) bool {
	return len(h.ChannelsFor(userID)) > 0
}
