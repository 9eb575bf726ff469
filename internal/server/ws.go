package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/drishti/internal/analysis"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// scoresInterval is the live score feed push rate (~10 Hz). The analysis
// loop runs faster, so consecutive pushes may repeat the latest sample.
const scoresInterval = 100 * time.Millisecond

// scoresMessage is one live score feed frame.
type scoresMessage struct {
	Sample    analysis.ScoreSample   `json:"sample"`
	Cheating  analysis.CheatingState `json:"cheating"`
	Timestamp int64                  `json:"timestamp"`
}

// ScoresHandler broadcasts the live session's latest scores via WebSocket.
type ScoresHandler struct {
	manager *analysis.Manager
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewScoresHandler creates a new ScoresHandler fed by the given manager.
func NewScoresHandler(m *analysis.Manager) *ScoresHandler {
	h := &ScoresHandler{
		manager: m,
		clients: make(map[*websocket.Conn]bool),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *ScoresHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade error")
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast pushes the latest sample to all connected clients. Nothing is
// sent while no session is live.
func (h *ScoresHandler) broadcast() {
	ticker := time.NewTicker(scoresInterval)
	defer ticker.Stop()

	for range ticker.C {
		h.mu.RLock()
		if len(h.clients) == 0 {
			h.mu.RUnlock()
			continue
		}
		h.mu.RUnlock()

		session := h.manager.Current()
		if session == nil {
			continue
		}

		msg := scoresMessage{
			Sample:    session.Latest(),
			Cheating:  session.Cheating(),
			Timestamp: time.Now().UnixMilli(),
		}

		h.mu.RLock()
		for conn := range h.clients {
			if err := conn.WriteJSON(msg); err != nil {
				logrus.WithError(err).Debug("websocket write error")
			}
		}
		h.mu.RUnlock()
	}
}
