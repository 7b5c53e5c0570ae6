package wire

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// Timeouts for one Conn's read/write pump, mirroring the values a
// websocket-based full-duplex protocol typically uses.
const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Conn wraps one upgraded websocket connection, a full-duplex transport
// where a single WriteMessage/ReadMessage call already is one framed
// record, with its class tag carried inside the Envelope.
type Conn struct {
	ws *websocket.Conn
}

// NewConn wraps an already-upgraded websocket connection.
func NewConn(ws *websocket.Conn) *Conn {
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	return &Conn{ws: ws}
}

// Send encodes msg as an Envelope and writes it as one JSON text frame.
func (c *Conn) Send(msg interface{}) error {
	env, err := Encode(msg)
	if err != nil {
		return err
	}
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteJSON(env); err != nil {
		return errors.Wrap(err, "wire: write envelope")
	}
	return nil
}

// Receive reads one frame and decodes it to its concrete message type.
func (c *Conn) Receive() (interface{}, error) {
	var env Envelope
	if err := c.ws.ReadJSON(&env); err != nil {
		return nil, errors.Wrap(err, "wire: read envelope")
	}
	return Decode(env)
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.ws.Close()
}

// RemoteAddr reports the peer address.
func (c *Conn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}
