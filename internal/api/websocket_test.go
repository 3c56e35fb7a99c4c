package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/thermolab/internal/infrastructure/config"
	"github.com/nerrad567/thermolab/internal/infrastructure/logging"
)

func testHub() *Hub {
	return NewHub(config.WebSocketConfig{MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10}, logging.Discard())
}

func newClient(hub *Hub, channels ...string) *WSClient {
	c := &WSClient{
		hub:           hub,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: make(map[string]struct{}),
	}
	for _, ch := range channels {
		c.subscriptions[ch] = struct{}{}
	}
	return c
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := testHub()
	c := newClient(hub)

	hub.Register(c)
	if hub.ClientCount() != 1 {
		t.Fatalf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.Unregister(c)
	hub.Unregister(c) // second call must not close twice
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", hub.ClientCount())
	}
	if _, ok := <-c.send; ok {
		t.Error("send channel should be closed")
	}
}

func TestHub_BroadcastFiltersByChannel(t *testing.T) {
	hub := testHub()
	all := newClient(hub, WSChannelAll)
	sec := newClient(hub, EventSecurityUpdated)
	none := newClient(hub)
	for _, c := range []*WSClient{all, sec, none} {
		hub.Register(c)
	}

	hub.Broadcast(EventThermostatAdded, map[string]any{"id": "t-1"})

	if len(all.send) != 1 {
		t.Errorf("wildcard client got %d messages, want 1", len(all.send))
	}
	if len(sec.send) != 0 || len(none.send) != 0 {
		t.Error("unsubscribed clients received the event")
	}

	var msg WSMessage
	if err := json.Unmarshal(<-all.send, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != WSTypeEvent || msg.EventType != EventThermostatAdded || msg.Timestamp == "" {
		t.Errorf("message = %+v", msg)
	}
}

func TestHub_BroadcastAfterUnregisterDoesNotPanic(t *testing.T) {
	hub := testHub()
	c := newClient(hub, WSChannelAll)
	hub.Register(c)
	hub.Unregister(c)

	c.trySend([]byte("late"))
	hub.Broadcast(EventAttackSimulated, nil)
}

func TestClient_Subscription(t *testing.T) {
	hub := testHub()
	c := newClient(hub)

	c.handleMessage([]byte(`{"type":"subscribe","id":"1","payload":{"channels":["security.updated","attack.simulated"]}}`))
	if !c.isSubscribed(EventSecurityUpdated) || !c.isSubscribed(EventAttackSimulated) {
		t.Fatal("subscribe did not register channels")
	}

	c.handleMessage([]byte(`{"type":"unsubscribe","id":"2","payload":{"channels":["attack.simulated"]}}`))
	if c.isSubscribed(EventAttackSimulated) {
		t.Error("unsubscribe did not remove channel")
	}

	c.handleMessage([]byte(`{"type":"ping","id":"3"}`))
	c.handleMessage([]byte(`{"type":"teleport"}`))
	c.handleMessage([]byte(`not json`))

	want := []string{WSTypeResponse, WSTypeResponse, WSTypePong, WSTypeError, WSTypeError}
	for i, typ := range want {
		var msg WSMessage
		if err := json.Unmarshal(<-c.send, &msg); err != nil {
			t.Fatalf("message %d: %v", i, err)
		}
		if msg.Type != typ {
			t.Errorf("message %d type = %q, want %q", i, msg.Type, typ)
		}
	}
}

func TestWebSocket_ReceivesLabEvents(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer resp.Body.Close()
	defer conn.Close()

	sub := WSMessage{Type: WSTypeSubscribe, ID: "s1", Payload: WSSubscribePayload{Channels: []string{WSChannelAll}}}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("write subscribe: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second)) //nolint:errcheck // test deadline
	var ack WSMessage
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if ack.Type != WSTypeResponse || ack.ID != "s1" {
		t.Fatalf("ack = %+v", ack)
	}

	w := env.do(t, http.MethodPost, "/api/v1/update_security", map[string]any{"dos_protection": false}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("update_security status = %d", w.Code)
	}

	var event WSMessage
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.Type != WSTypeEvent || event.EventType != EventSecurityUpdated {
		t.Fatalf("event = %+v", event)
	}
	payload, _ := event.Payload.(map[string]any)
	if payload["dos_protection"] != false || payload["acl"] != true {
		t.Errorf("payload = %v", payload)
	}
}
