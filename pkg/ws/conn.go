package ws

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/gatherly/gatherly/pkg/id"
	"github.com/gatherly/gatherly/pkg/log"
)

const (
	readLimit  = 1024 * 64
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10 // must be shorter than pongWait
	writeWait  = 10 * time.Second
	sendBuffer = 64
)

// Client control messages. A client joins the channel of a household it is
// authorized for and leaves it explicitly or by disconnecting.
const (
	MsgJoinHousehold  = "join:household"
	MsgLeaveHousehold = "leave:household"
)

type clientMessage struct {
	Type        string `json:"type"`
	HouseholdId string `json:"householdId"`
}

// conn wraps a fiber websocket connection with an outbound frame buffer.
type conn struct {
	*websocket.Conn
	id        string
	send      chan []byte
	closeOnce sync.Once
	closed    chan struct{}
}

func newConn(wsConn *websocket.Conn) *conn {
	return &conn{
		Conn:   wsConn,
		id:     id.GetUUID(),
		send:   make(chan []byte, sendBuffer),
		closed: make(chan struct{}),
	}
}

// ID returns the connection's unique identifier.
func (c *conn) ID() string {
	return c.id
}

// Send enqueues a frame. Full buffer or closed connection drops the frame;
// delivery here is best-effort by contract.
func (c *conn) Send(data []byte) {
	select {
	case <-c.closed:
	case c.send <- data:
	default:
		log.Warnf("ws conn %s send buffer full, dropping frame", c.id)
	}
}

// Close closes the connection.
func (c *conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.Conn.Close()
	})
	return err
}

// writePump drains the send buffer onto the socket, one writer per
// connection so frames go out in enqueue order.
func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.closed:
			return
		case data := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}
		}
	}
}

// Handle upgrades the request and runs the connection's read loop. The read
// loop only understands join/leave control messages; everything the server
// wants to say goes through Hub.Publish.
func Handle(hub Hub) fiber.Handler {
	return websocket.New(func(wsConn *websocket.Conn) {
		c := newConn(wsConn)
		hub.Register(c)
		defer hub.Unregister(c)

		wsConn.SetReadLimit(readLimit)
		_ = wsConn.SetReadDeadline(time.Now().Add(pongWait))
		wsConn.SetPongHandler(func(string) error {
			return wsConn.SetReadDeadline(time.Now().Add(pongWait))
		})

		go c.writePump()

		for {
			_, p, err := wsConn.ReadMessage()
			if err != nil {
				break
			}

			var msg clientMessage
			if err := sonic.Unmarshal(p, &msg); err != nil {
				log.Errorf("unmarshal ws message error: %v", err)
				continue
			}

			switch msg.Type {
			case MsgJoinHousehold:
				if msg.HouseholdId != "" {
					hub.Join(msg.HouseholdId, c.ID())
				}
			case MsgLeaveHousehold:
				if msg.HouseholdId != "" {
					hub.Leave(msg.HouseholdId, c.ID())
				}
			default:
				log.Warnf("unknown ws message type: %s", msg.Type)
			}
		}
	})
}

// Upgrade guards the ws route: non-websocket requests get a 426.
func Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}
