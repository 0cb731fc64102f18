package push

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"eventrequests/internal/relay"
)

const handshakeTimeout = 10 * time.Second

type wsDialer struct {
	url    string
	token  string
	dialer *websocket.Dialer
}

// NewDialer returns a relay.Dialer that opens WebSocket connections to url,
// authenticating with token as bearer credential.
func NewDialer(url, token string) relay.Dialer {
	return &wsDialer{
		url:   url,
		token: token,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
	}
}

func (d *wsDialer) Dial(ctx context.Context) (relay.Conn, error) {
	header := http.Header{}
	if d.token != "" {
		header.Set("Authorization", "Bearer "+d.token)
	}
	c, resp, err := d.dialer.DialContext(ctx, d.url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", d.url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", d.url, err)
	}
	return &wsConn{conn: c}, nil
}

// wsConn adapts a gorilla connection to relay.Conn. The relay serializes
// writes and owns the only reader.
type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) Read() ([]byte, error) {
	for {
		typ, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if typ == websocket.TextMessage {
			return data, nil
		}
	}
}

func (c *wsConn) Write(frame []byte) error {
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
