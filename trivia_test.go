package main

import (
	"testing"
	"time"
)

// testHub starts a hub around a fresh game. Fake clients never start pumps,
// so messages are read straight from their send channels.
func testHub(t *testing.T) *Hub {
	t.Helper()

	cfg := &Config{}
	hub := newHub(cfg, newGame("Test Night", 30, testCategories()))
	go hub.run()

	return hub
}

func connectClient(h *Hub, connID string) *Client {
	c := &Client{
		send:   make(chan any, 16),
		connID: connID,
	}
	h.register <- c
	return c
}

func recv(t *testing.T, c *Client) any {
	t.Helper()

	select {
	case msg := <-c.send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

// recvState skips host-only messages and returns the next snapshot.
func recvState(t *testing.T, c *Client) Snapshot {
	t.Helper()

	for {
		msg := recv(t, c)
		if m, ok := msg.(GameStateMessage); ok {
			return m.State
		}
	}
}

func sendEvent(h *Hub, c *Client, msg ClientMessage) {
	h.events <- inboundEvent{client: c, msg: msg}
}

func TestConnectReceivesConfigThenState(t *testing.T) {
	h := testHub(t)
	c := connectClient(h, "c1")

	first := recv(t, c)
	cfgMsg, ok := first.(GameConfigMessage)
	if !ok {
		t.Fatalf("expected gameConfig first, got %T", first)
	}
	if cfgMsg.Title != "Test Night" || len(cfgMsg.Categories) != 2 {
		t.Fatalf("unexpected config: %+v", cfgMsg)
	}

	second := recv(t, c)
	stateMsg, ok := second.(GameStateMessage)
	if !ok {
		t.Fatalf("expected gameState second, got %T", second)
	}
	if stateMsg.State.Phase != PhaseLobby {
		t.Fatalf("expected lobby snapshot, got %s", stateMsg.State.Phase)
	}
}

func TestEveryEventBroadcastsToEveryone(t *testing.T) {
	h := testHub(t)

	host := connectClient(h, "h1")
	p1 := connectClient(h, "c1")
	recvState(t, host)
	recvState(t, p1)

	sendEvent(h, host, ClientMessage{Type: "hostJoin"})
	recvState(t, host)
	recvState(t, p1)

	sendEvent(h, p1, ClientMessage{Type: "playerJoin", Name: "Alice"})

	for _, c := range []*Client{host, p1} {
		state := recvState(t, c)
		if len(state.Players) != 1 || state.Players[0].Name != "Alice" {
			t.Fatalf("join not reflected in broadcast: %+v", state.Players)
		}
	}
}

func TestFullQuestionGoesToHostsOnly(t *testing.T) {
	h := testHub(t)

	host := connectClient(h, "h1")
	p1 := connectClient(h, "c1")
	recvState(t, host)
	recvState(t, p1)

	sendEvent(h, host, ClientMessage{Type: "hostJoin"})
	recvState(t, host)
	recvState(t, p1)

	sendEvent(h, p1, ClientMessage{Type: "playerJoin", Name: "Alice"})
	recvState(t, host)
	recvState(t, p1)

	sendEvent(h, host, ClientMessage{Type: "startGame"})
	recvState(t, host)
	recvState(t, p1)

	sendEvent(h, host, ClientMessage{Type: "selectQuestion", Category: "Science", Value: 100})

	// Host: fullQuestion, then the snapshot.
	msg := recv(t, host)
	full, ok := msg.(FullQuestionMessage)
	if !ok {
		t.Fatalf("expected fullQuestion, got %T", msg)
	}
	if full.Category != "Science" || full.Value != 100 || full.Answer == "" {
		t.Fatalf("unexpected fullQuestion: %+v", full)
	}
	recvState(t, host)

	// Player: snapshot only.
	playerMsg := recv(t, p1)
	if _, ok := playerMsg.(FullQuestionMessage); ok {
		t.Fatal("player received the host-only fullQuestion")
	}
	stateMsg, ok := playerMsg.(GameStateMessage)
	if !ok {
		t.Fatalf("expected gameState, got %T", playerMsg)
	}
	if stateMsg.State.Phase != PhaseQuestion {
		t.Fatalf("expected question phase, got %s", stateMsg.State.Phase)
	}
}

func TestBuzzOrderMatchesDispatchOrder(t *testing.T) {
	h := testHub(t)

	host := connectClient(h, "h1")
	p1 := connectClient(h, "c1")
	p2 := connectClient(h, "c2")
	recvState(t, host)
	recvState(t, p1)
	recvState(t, p2)

	drainAll := func() {
		recvState(t, host)
		recvState(t, p1)
		recvState(t, p2)
	}

	sendEvent(h, host, ClientMessage{Type: "hostJoin"})
	drainAll()
	sendEvent(h, p1, ClientMessage{Type: "playerJoin", Name: "P1"})
	drainAll()
	sendEvent(h, p2, ClientMessage{Type: "playerJoin", Name: "P2"})
	drainAll()
	sendEvent(h, host, ClientMessage{Type: "startGame"})
	drainAll()
	sendEvent(h, host, ClientMessage{Type: "selectQuestion", Category: "Science", Value: 100})
	drainAll()

	sendEvent(h, p1, ClientMessage{Type: "buzz"})

	// The accepted buzz rings the host chime before the snapshot.
	msg := recv(t, host)
	sound, ok := msg.(BuzzerSoundMessage)
	if !ok {
		t.Fatalf("expected buzzerSound, got %T", msg)
	}
	if sound.PlayerName != "P1" {
		t.Fatalf("expected P1 chime, got %q", sound.PlayerName)
	}
	recvState(t, host)
	recvState(t, p1)
	recvState(t, p2)

	sendEvent(h, p2, ClientMessage{Type: "buzz"})
	recv(t, host) // chime
	recvState(t, host)
	recvState(t, p1)
	state := recvState(t, p2)

	if len(state.BuzzerOrder) != 2 {
		t.Fatalf("expected 2 buzzes, got %d", len(state.BuzzerOrder))
	}
	if state.BuzzerOrder[0].PlayerName != "P1" || state.BuzzerOrder[1].PlayerName != "P2" {
		t.Fatalf("order does not match dispatch order: %v", state.BuzzerOrder)
	}

	// A duplicate buzz is dropped and rings no chime.
	sendEvent(h, p1, ClientMessage{Type: "buzz"})
	hostMsg := recv(t, host)
	if _, ok := hostMsg.(BuzzerSoundMessage); ok {
		t.Fatal("duplicate buzz rang the chime")
	}
	recvState(t, p1)
	state = recvState(t, p2)
	if len(state.BuzzerOrder) != 2 {
		t.Fatalf("duplicate buzz mutated the order: %v", state.BuzzerOrder)
	}
}

func TestUnknownEventTypeStillBroadcasts(t *testing.T) {
	h := testHub(t)

	c := connectClient(h, "c1")
	recvState(t, c)

	sendEvent(h, c, ClientMessage{Type: "selfDestruct"})

	state := recvState(t, c)
	if state.Phase != PhaseLobby {
		t.Fatalf("unknown event mutated state: %s", state.Phase)
	}
}

func TestDisconnectReleasesConnectionMapping(t *testing.T) {
	h := testHub(t)

	p1 := connectClient(h, "c1")
	recvState(t, p1)
	sendEvent(h, p1, ClientMessage{Type: "playerJoin", Name: "Alice"})
	recvState(t, p1)

	h.unreg <- p1

	// Rejoining from a new connection restores the same record.
	p2 := connectClient(h, "c2")
	recvState(t, p2)
	sendEvent(h, p2, ClientMessage{Type: "playerJoin", Name: "ALICE"})
	state := recvState(t, p2)

	if len(state.Players) != 1 {
		t.Fatalf("rejoin duplicated the player: %+v", state.Players)
	}
	if state.Players[0].ID != "c2" {
		t.Fatalf("player id not rebound: %q", state.Players[0].ID)
	}
}
