// Triviabox game server
//
// One host screen drives the game; any number of players join by display
// name and compete by buzzing in.
//
// Features:
// - WebSocket per browser tab at /ws; host and player roles claimed by the
//   first message ("hostJoin" / "playerJoin")
// - Single authoritative game per process; all events applied one at a time
//   by the hub goroutine, so buzz order is exactly dispatcher arrival order
// - Players reconnect by name (case-insensitive) with score intact
// - Full-state snapshot broadcast to every connection after every event
// - Question text with answers goes to the host room only
// - Host-side buzzer chime trigger on each accepted buzz
// - In-browser QR code for the player join URL, backed by go-qrcode

package main

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

type Client struct {
	conn   *websocket.Conn
	send   chan any
	connID string

	// role flags, touched only by the hub goroutine
	host bool
}

type inboundEvent struct {
	client *Client
	msg    ClientMessage
}

// Hub owns the Game and serializes every inbound event through one select
// loop. No mutex guards game state: the loop is the only reader and writer,
// and one event is fully applied (and its broadcast queued) before the next
// is taken.
type Hub struct {
	cfg  *Config
	game *Game

	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	events   chan inboundEvent
}

func newHub(cfg *Config, game *Game) *Hub {
	return &Hub{
		cfg:      cfg,
		game:     game,
		clients:  make(map[*Client]bool),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		events:   make(chan inboundEvent),
	}
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true

			// Static config first, then the current state.
			h.deliver(c, h.game.Config())
			h.deliver(c, GameStateMessage{
				Type:  "gameState",
				State: h.game.Snapshot(),
			})

		case c := <-h.unreg:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.game.Disconnect(c.connID)

		case ev := <-h.events:
			h.dispatch(ev.client, ev.msg)
			h.broadcastState()
		}
	}
}

// deliver sends without blocking; a client whose buffer is full is dropped
// rather than allowed to stall everyone else.
func (h *Hub) deliver(c *Client, msg any) {
	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) broadcastState() {
	msg := GameStateMessage{
		Type:  "gameState",
		State: h.game.Snapshot(),
	}

	for c := range h.clients {
		h.deliver(c, msg)
	}
}

func (h *Hub) toHosts(msg any) {
	for c := range h.clients {
		if c.host {
			h.deliver(c, msg)
		}
	}
}

func (h *Hub) dispatch(c *Client, msg ClientMessage) {
	switch msg.Type {
	case "hostJoin":
		// Any connection may claim host; control is deliberately shared.
		c.host = true
		logf(h.cfg, "GAME: Host joined on connection %s", c.connID)

	case "playerJoin":
		p, rejoined := h.game.JoinPlayer(c.connID, msg.Name)
		if rejoined {
			logf(h.cfg, "GAME: Player %q reconnected with %d points", p.Name, p.Score)
		} else {
			logf(h.cfg, "GAME: Player %q joined", p.Name)
		}

	case "startGame":
		h.game.StartGame()
		logf(h.cfg, "GAME: Game started")

	case "selectQuestion":
		if q := h.game.SelectQuestion(msg.Category, msg.Value); q != nil {
			h.toHosts(FullQuestionMessage{
				Type:     "fullQuestion",
				Category: msg.Category,
				Question: q.Question,
				Answer:   q.Answer,
				Value:    q.Value,
				Image:    q.Image,
				YouTube:  q.YouTube,
			})
			logf(h.cfg, "GAME: Selected %s for %d", msg.Category, msg.Value)
		}

	case "buzz":
		if name, ok := h.game.Buzz(c.connID, time.Now()); ok {
			h.toHosts(BuzzerSoundMessage{
				Type:       "buzzerSound",
				PlayerName: name,
			})
			logf(h.cfg, "GAME: %q buzzed in", name)
		}

	case "lockBuzzer":
		h.game.LockBuzzer()

	case "unlockBuzzer":
		h.game.UnlockBuzzer()

	case "clearBuzzers":
		h.game.ClearBuzzers()

	case "revealAnswer":
		h.game.RevealAnswer()

	case "correctAnswer":
		h.game.CorrectAnswer(msg.PlayerID)

	case "incorrectAnswer":
		h.game.IncorrectAnswer(msg.PlayerID)

	case "skipQuestion":
		h.game.SkipQuestion()

	case "showLeaderboard":
		h.game.ShowLeaderboard()

	case "backToGame":
		h.game.BackToGame()

	case "resetGame":
		h.game.ResetGame()
		logf(h.cfg, "GAME: Game reset")

	default:
		// ignore unknown types
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// newConnID generates a fresh identifier per websocket connection. Identity
// across reconnects comes from the display name, not this ID.
func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		log.Println("rand.Read error:", err)
		return ""
	}
	return hex.EncodeToString(buf)
}

func serveWS(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		connID := newConnID()
		if connID == "" {
			http.Error(w, "unable to assign connection id", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := &Client{
			conn:   conn,
			send:   make(chan any, 16),
			connID: connID,
		}

		hub.register <- client

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unreg <- c
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		h.events <- inboundEvent{
			client: c,
			msg:    msg,
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// qrHandler renders the player join URL as a PNG QR code, so the host
// screen can be scanned to join.
func qrHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		// We are at .../qr; the join page lives at .../play.
		path := strings.TrimSuffix(r.URL.Path, "/qr") + "/play"

		url := scheme + "://" + r.Host + path

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

// registerTriviaGame loads the question pack, starts the hub, and sets up
// the game routes:
//   - /ws    → WebSocket for hosts and players
//   - /qr    → PNG QR code for the player join URL
func registerTriviaGame(cfg *Config, mux *httprouter.Router) error {
	categories, err := loadCategories(cfg.questions)
	if err != nil {
		return err
	}

	game := newGame(cfg.title, cfg.countdown, categories)
	hub := newHub(cfg, game)
	go hub.run()

	logf(cfg, "GAME: Loaded %d categories", len(categories))

	mux.GET(cfg.prefix+"/ws", serveWS(hub))
	mux.GET(cfg.prefix+"/qr", qrHandler(cfg))

	return nil
}
