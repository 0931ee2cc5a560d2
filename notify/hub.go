package notify

import (
	"encoding/json"
	"log"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"hospital-portal/monitoring"
)

const writeWait = 10 * time.Second

// Message is one frame pushed to the browser.
type Message struct {
	Type         string        `json:"type"`
	Notification *Notification `json:"notification,omitempty"`
	Index        *int          `json:"index,omitempty"`
	Image        string        `json:"image,omitempty"`
}

// Hub fans notifications out to every websocket a session has open and
// drives the home carousel on connections that ask for it.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]map[*Client]struct{}
	images   []string
	interval time.Duration
	upgrader websocket.Upgrader
}

type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	session  string
	send     chan []byte
	carousel bool
}

// NewHub accepts upgrades from the listed origins; requests without an
// Origin header are always accepted.
func NewHub(images []string, interval time.Duration, allowedOrigins []string) *Hub {
	return &Hub{
		sessions: make(map[string]map[*Client]struct{}),
		images:   images,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// NextSlide is the carousel step: wrap around after the last image.
func NextSlide(i, n int) int {
	if n <= 0 {
		return 0
	}
	return (i + 1) % n
}

// Serve upgrades the request and keeps the connection until the browser
// goes away or the session is disconnected. withCarousel starts the slide
// ticker for this connection.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sessionID string, withCarousel bool) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &Client{
		hub:      h,
		conn:     conn,
		session:  sessionID,
		send:     make(chan []byte, 32),
		carousel: withCarousel && len(h.images) > 0,
	}
	h.register(c)

	go c.writePump()
	go c.readPump()
	return nil
}

// Notify queues n for every connection of the session. Slow connections
// drop the message rather than block the caller.
func (h *Hub) Notify(sessionID string, n Notification) {
	b, err := json.Marshal(Message{Type: "notification", Notification: &n})
	if err != nil {
		log.Printf("Failed to marshal notification: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.sessions[sessionID] {
		select {
		case c.send <- b:
		default:
		}
	}
}

// Disconnect closes every connection of the session.
func (h *Hub) Disconnect(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.sessions[sessionID] {
		h.removeLocked(c)
	}
}

func (h *Hub) Connections(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions[sessionID])
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[c.session] == nil {
		h.sessions[c.session] = make(map[*Client]struct{})
	}
	h.sessions[c.session][c] = struct{}{}
	monitoring.LiveSockets.Inc()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	clients, ok := h.sessions[c.session]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.sessions, c.session)
	}
	close(c.send)
	monitoring.LiveSockets.Dec()
}

// readPump only watches for the browser closing the connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	var tick <-chan time.Time
	slide := 0
	if c.carousel {
		ticker := time.NewTicker(c.hub.interval)
		defer ticker.Stop()
		tick = ticker.C
		if !c.write(c.slide(slide)) {
			c.conn.Close()
			return
		}
	}

	defer c.conn.Close()
	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if !c.write(message) {
				return
			}
		case <-tick:
			slide = NextSlide(slide, len(c.hub.images))
			if !c.write(c.slide(slide)) {
				return
			}
		}
	}
}

func (c *Client) slide(i int) []byte {
	b, _ := json.Marshal(Message{Type: "carousel", Index: &i, Image: c.hub.images[i]})
	return b
}

func (c *Client) write(message []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, message) == nil
}
