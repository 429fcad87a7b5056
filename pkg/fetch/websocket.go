package fetch

import (
	"bytes"
	"context"
	"net/http"

	"github.com/coder/websocket"
)

// getWebSocket reads text or binary frames until the server closes the
// connection normally and returns their concatenation.
func (c *Client) getWebSocket(ctx context.Context) ([]byte, error) {
	opts := &websocket.DialOptions{
		HTTPClient: c.HTTPClient,
	}
	if c.Token != "" {
		opts.HTTPHeader = http.Header{
			"Authorization": []string{"Bearer " + c.Token},
		}
	}

	conn, _, err := websocket.Dial(ctx, c.URL.String(), opts)
	if err != nil {
		return nil, err
	}
	defer conn.CloseNow()
	conn.SetReadLimit(16 << 20)

	var buf bytes.Buffer
	for {
		_, data, err := conn.Read(ctx)
		if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
		if buf.Len()+len(data) > maxManifestBytes {
			conn.Close(websocket.StatusMessageTooBig, "manifest too large")
			return nil, ErrTooLarge
		}
		buf.Write(data)
	}
}
