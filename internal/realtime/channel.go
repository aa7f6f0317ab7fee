package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// writeTimeout bounds a single push; a peer that cannot accept a frame within
// it is treated as dead and unregistered by the caller.
const writeTimeout = 5 * time.Second

// wsChannel adapts a gorilla websocket connection to the Channel interface.
type wsChannel struct {
	id     string
	userID uint
	conn   *websocket.Conn
	mu     sync.Mutex // serializes data writes; control frames go through WriteControl
}

// NewChannel wraps an accepted websocket connection for the given user.
func NewChannel(userID uint, conn *websocket.Conn) Channel {
	return &wsChannel{
		id:     uuid.NewString(),
		userID: userID,
		conn:   conn,
	}
}

func (c *wsChannel) ID() string {
	return c.id
}

func (c *wsChannel) UserID() uint {
	return c.userID
}

// Send writes the payload as a single text frame with a short deadline.
func (c *wsChannel) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *wsChannel) Close() error {
	return c.conn.Close()
}
