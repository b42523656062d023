package server

import (
	"context"
	"net/http"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"

	"github.com/groupalarm/alarmd/internal/store"
	"github.com/groupalarm/alarmd/pkg/logger"
)

// wsChannel presents one websocket connection as a jrpc2 Channel so the
// event feed can run a push-enabled jrpc2 server over it. One message per
// JSON-RPC frame, text opcode.
type wsChannel struct {
	conn *cws.Conn
	ctx  context.Context
}

func (c *wsChannel) Send(data []byte) error {
	return c.conn.Write(c.ctx, cws.MessageText, data)
}

func (c *wsChannel) Recv() ([]byte, error) {
	_, data, err := c.conn.Read(c.ctx)
	return data, err
}

// Close performs a normal-closure websocket handshake.
func (c *wsChannel) Close() error {
	return c.conn.Close(cws.StatusNormalClosure, "")
}

// EventServer pushes store change notifications to WebSocket clients as
// JSON-RPC notifications ("store.changed"). Each connection runs its own
// jrpc2 server with push enabled and its own store subscription; a
// subscription dropped by the store for slowness ends the connection.
type EventServer struct {
	store store.Store
	log   logger.Logger
}

// NewEventServer creates the /events handler.
func NewEventServer(st store.Store, l logger.Logger) *EventServer {
	return &EventServer{store: st, log: l}
}

func (es *EventServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		es.log.Error("events: accept websocket: %v", err)
		return
	}

	ctx := r.Context()
	srv := jrpc2.NewServer(handler.Map{}, &jrpc2.ServerOptions{AllowPush: true})
	srv.Start(&wsChannel{conn: conn, ctx: ctx})

	sub := es.store.Subscribe()
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		srv.Wait()
		close(done)
	}()

	for {
		select {
		case ch, ok := <-sub.C():
			if !ok {
				// Dropped as a slow subscriber; the client reconnects.
				es.log.Warning("events: subscription dropped, closing connection")
				srv.Stop()
				<-done
				return
			}
			if err := srv.Notify(ctx, "store.changed", ch); err != nil {
				srv.Stop()
				<-done
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			srv.Stop()
			<-done
			return
		}
	}
}
