package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	cws "github.com/coder/websocket"

	"github.com/groupalarm/alarmd/internal/store"
	"github.com/groupalarm/alarmd/pkg/alarmlib"
	"github.com/groupalarm/alarmd/pkg/logger"
)

func TestEventServerPushesChanges(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "alarmd.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	ts := httptest.NewServer(NewEventServer(st, logger.NewNopLogger()))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := cws.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close(cws.StatusNormalClosure, "")

	// Give the server a moment to register its subscription before the
	// mutation, otherwise the change is published to nobody.
	time.Sleep(100 * time.Millisecond)

	gid, err := st.CreateGroup(context.Background(), &alarmlib.Group{Name: "Push"})
	if err != nil {
		t.Fatal(err)
	}

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var msg struct {
		Method string       `json:"method"`
		Params store.Change `json:"params"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	if msg.Method != "store.changed" {
		t.Errorf("method = %q", msg.Method)
	}
	if msg.Params.Table != "alarm_groups" || msg.Params.Op != store.OpCreate || msg.Params.ID != gid {
		t.Errorf("params = %+v", msg.Params)
	}
}
