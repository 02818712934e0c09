package ws

// Conn represents one live client connection.
type Conn interface {
	// ID returns the connection's unique identifier
	ID() string

	// Send enqueues a frame for delivery. Best-effort: frames are
	// dropped when the connection's buffer is full or it is closed.
	Send(data []byte)

	// Close closes the connection
	Close() error
}

// Hub tracks live connections and their household channel membership.
// Membership is ephemeral in-process state; clients re-join on reconnect.
type Hub interface {
	// Register adds a new connection
	Register(conn Conn)

	// Unregister removes a connection and leaves all its channels
	Unregister(conn Conn)

	// Join adds a connection to a household's channel
	Join(householdId, connId string)

	// Leave removes a connection from a household's channel
	Leave(householdId, connId string)

	// Publish delivers an event to every connection joined to the
	// household's channel. Fire-and-forget: no ack, no retry, lost
	// when nobody is joined.
	Publish(householdId, event string, detail any)

	// Count returns the number of registered connections
	Count() int

	// JoinedCount returns the number of connections joined to a household's channel
	JoinedCount(householdId string) int
}

// Event is the frame pushed to joined connections.
type Event struct {
	Event  string `json:"event"`
	Detail any    `json:"detail,omitempty"`
}

// Events published by the system.
const (
	EventInviteNew      = "invite:new"
	EventInviteResponse = "invite:response"
	EventStatusUpdate   = "status:update"
)
