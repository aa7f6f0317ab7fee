package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChannel struct {
	id     string
	userID uint
}

func (c *fakeChannel) ID() string              { return c.id }
func (c *fakeChannel) UserID() uint            { return c.userID }
func (c *fakeChannel) Send(payload []byte) error { return nil }
func (c *fakeChannel) Close() error            { return nil }

func newFakeChannel(userID uint, id string) *fakeChannel {
	return &fakeChannel{id: id, userID: userID}
}

func TestRegisterMakesUserOnline(t *testing.T) {
	hub := NewHub(zap.NewNop())

	require.False(t, hub.Online(7))

	ch := newFakeChannel(7, "a")
	hub.Register(ch)

	assert.True(t, hub.Online(7))
	require.Len(t, hub.ChannelsFor(7), 1)
	assert.Equal(t, ch, hub.ChannelsFor(7)[0])
}

func TestRegisterSameChannelTwice(t *testing.T) {
	hub := NewHub(zap.NewNop())

	ch := newFakeChannel(7, "a")
	hub.Register(ch)
	hub.Register(ch)

	assert.Len(t, hub.ChannelsFor(7), 1)
}

func TestMultiDevice(t *testing.T) {
	hub := NewHub(zap.NewNop())

	phone := newFakeChannel(7, "phone")
	laptop := newFakeChannel(7, "laptop")
	hub.Register(phone)
	hub.Register(laptop)

	assert.Len(t, hub.ChannelsFor(7), 2)

	// Dropping one device keeps the user online.
	hub.Unregister(phone)
	assert.True(t, hub.Online(7))
	require.Len(t, hub.ChannelsFor(7), 1)
	assert.Equal(t, laptop, hub.ChannelsFor(7)[0])

	// Dropping the last one takes the user offline.
	hub.Unregister(laptop)
	assert.False(t, hub.Online(7))
	assert.Empty(t, hub.ChannelsFor(7))
}

func TestUnregisterUnknownChannel(t *testing.T) {
	hub := NewHub(zap.NewNop())

	// Disconnect before authentication: must not panic or error.
	hub.Unregister(newFakeChannel(9, "ghost"))
	assert.False(t, hub.Online(9))
}

func TestChannelsForOtherUserIsEmpty(t *testing.T) {
	hub := NewHub(zap.NewNop())
	hub.Register(newFakeChannel(1, "a"))

	assert.Empty(t, hub.ChannelsFor(2))
}

func TestConcurrentRegisterUnregister(t *testing.T) {
	hub := NewHub(zap.NewNop())

	const users = 8
	const perUser = 20

	var wg sync.WaitGroup
	for u := uint(1); u <= users; u++ {
		for i := 0; i < perUser; i++ {
			wg.Add(1)
			go func(u uint, i int) {
				defer wg.Done()
				ch := newFakeChannel(u, fmt.Sprintf("%d-%d", u, i))
				hub.Register(ch)
				hub.Unregister(ch)
			}(u, i)
		}
	}
	wg.Wait()

	for u := uint(1); u <= users; u++ {
		assert.Falsef(t, hub.Online(u), "user %d should be offline after all channels closed", u)
	}

	// Registry must still accept new channels after the churn.
	ch := newFakeChannel(1, "after")
	hub.Register(ch)
	assert.True(t, hub.Online(1))
}
