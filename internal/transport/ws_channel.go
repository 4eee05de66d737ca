package transport

import (
	"github.com/gorilla/websocket"
)

// WebSocketChannel adapts a gorilla/websocket connection to the
// BinaryChannel interface Exchange depends on, keeping the timing
// logic free of any transport-specific import.
type WebSocketChannel struct {
	conn *websocket.Conn
}

// NewWebSocketChannel wraps an already-upgraded connection.
func NewWebSocketChannel(conn *websocket.Conn) *WebSocketChannel {
	return &WebSocketChannel{conn: conn}
}

// Send writes data as a single binary frame.
func (c *WebSocketChannel) Send(data []byte) error {
	return c.conn.WriteMessage(websocket.BinaryMessage, data)
}

// Receive reads the next frame, reporting whether it was binary.
func (c *WebSocketChannel) Receive() (Frame, error) {
	messageType, data, err := c.conn.ReadMessage()
	if err != nil {
		return Frame{}, err
	}
	return Frame{Binary: messageType == websocket.BinaryMessage, Data: data}, nil
}

// Close closes the underlying connection.
func (c *WebSocketChannel) Close() error {
	return c.conn.Close()
}
