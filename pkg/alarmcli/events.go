package alarmcli

import (
	"context"
	"encoding/json"
	"net/http"

	cws "github.com/coder/websocket"
)

// Change is one store mutation pushed by the daemon's event feed.
type Change struct {
	Table string `json:"table"`
	Op    string `json:"op"`
	ID    int64  `json:"id"`
}

// Watch connects to the daemon's event feed and streams store changes
// until ctx is cancelled or the connection drops, after which the
// returned channel is closed. The daemon drops slow watchers; a closed
// channel means re-Watch to resynchronize.
func (c *Client) Watch(ctx context.Context) (<-chan Change, error) {
	// The client's timeout would sever the long-lived feed; reuse only
	// its unix-socket transport.
	conn, _, err := cws.Dial(ctx, "ws://alarmd/events", &cws.DialOptions{
		HTTPClient: &http.Client{Transport: c.http.Transport},
	})
	if err != nil {
		return nil, err
	}

	out := make(chan Change)
	go func() {
		defer close(out)
		defer conn.Close(cws.StatusNormalClosure, "")
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var msg struct {
				Method string `json:"method"`
				Params Change `json:"params"`
			}
			if err := json.Unmarshal(data, &msg); err != nil || msg.Method != "store.changed" {
				continue
			}
			select {
			case out <- msg.Params:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
