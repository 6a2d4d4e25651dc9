package xrplws

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunSubscribesAndDeliversMessages(t *testing.T) {
	upgrader := websocket.Upgrader{}
	gotSubscribe := make(chan map[string]any, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var sub map[string]any
		if err := conn.ReadJSON(&sub); err != nil {
			t.Errorf("read subscribe: %v", err)
			return
		}
		gotSubscribe <- sub

		_ = conn.WriteJSON(map[string]any{"id": sub["id"], "status": "success", "type": "response"})
		_ = conn.WriteJSON(map[string]any{"type": "transaction", "ledger_index": 81000000})

		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	client := New("feed1", wsURL(server), []string{"transactions"}, quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan map[string]any, 4)
	go func() {
		_ = client.Run(ctx, func(ctx context.Context, msg map[string]any) error {
			received <- msg
			return nil
		})
	}()

	select {
	case sub := <-gotSubscribe:
		if sub["command"] != "subscribe" {
			t.Fatalf("subscribe command = %v", sub["command"])
		}
		streams, _ := sub["streams"].([]any)
		if len(streams) != 1 || streams[0] != "transactions" {
			t.Fatalf("streams = %v", streams)
		}
	case <-ctx.Done():
		t.Fatalf("no subscribe request seen")
	}

	// The subscribe ack and the transaction both arrive, in order.
	var txn map[string]any
	for i := 0; i < 2; i++ {
		select {
		case msg := <-received:
			txn = msg
		case <-ctx.Done():
			t.Fatalf("message %d not delivered", i)
		}
	}
	if txn["type"] != "transaction" {
		t.Fatalf("last message = %v", txn)
	}
	if client.LastMessage().IsZero() {
		t.Fatalf("last message time not tracked")
	}
	cancel()
}

func TestRunReconnectsAfterDrop(t *testing.T) {
	upgrader := websocket.Upgrader{}
	connects := make(chan struct{}, 8)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		connects <- struct{}{}
		// Accept the subscription, then drop the connection.
		var sub map[string]any
		_ = conn.ReadJSON(&sub)
		conn.Close()
	}))
	defer server.Close()

	client := New("feed1", wsURL(server), []string{"transactions"}, quietLogger())
	reconnects := make(chan struct{}, 8)
	client.OnReconnect(func() { reconnects <- struct{}{} })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = client.Run(ctx, func(ctx context.Context, msg map[string]any) error { return nil })
		close(done)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-connects:
		case <-ctx.Done():
			t.Fatalf("connection %d never arrived", i)
		}
	}
	select {
	case <-reconnects:
	case <-ctx.Done():
		t.Fatalf("reconnect hook never fired")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestNextBackoffCaps(t *testing.T) {
	b := time.Second
	for i := 0; i < 10; i++ {
		b = nextBackoff(b)
		if b > maxBackoff {
			t.Fatalf("backoff %v exceeds cap", b)
		}
	}
	if b != maxBackoff {
		t.Fatalf("backoff = %v, want cap %v", b, maxBackoff)
	}
}
