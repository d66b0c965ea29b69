package session

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dashcam-viewer/internal/frame"
	"dashcam-viewer/internal/platform/metrics"
	"dashcam-viewer/internal/timeline"
)

// DefaultOverlayFPS is the overlay refresh rate used when the handler is
// given a non-positive one.
const DefaultOverlayFPS = 30

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The viewer UI is served from arbitrary local origins (file://, dev
	// servers), so origin checking is left to the deployment.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StateMessage is pushed to the client after every applied command, and as a
// "tick" at the overlay refresh rate while playback is running.
type StateMessage struct {
	Type      string         `json:"type"`
	SessionID string         `json:"session_id"`
	Handled   bool           `json:"handled"`
	State     timeline.State `json:"state"`
}

// Handler owns all live viewing sessions and exposes them over one websocket
// endpoint. Each connection gets its own session; the session dies with the
// connection.
type Handler struct {
	log        *slog.Logger
	metrics    *metrics.Metrics
	overlayFPS int

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewHandler returns a Handler using the given logger and optional metrics.
// Metrics may be nil to disable metric recording (e.g. in tests).
// overlayFPS caps how often playing sessions push overlay ticks; non-positive
// values fall back to DefaultOverlayFPS.
func NewHandler(log *slog.Logger, m *metrics.Metrics, overlayFPS int) *Handler {
	if overlayFPS <= 0 {
		overlayFPS = DefaultOverlayFPS
	}
	return &Handler{
		log:        log,
		metrics:    m,
		overlayFPS: overlayFPS,
		sessions:   make(map[string]*Session),
	}
}

// ActiveSessionCount returns the number of connected sessions. Used for
// metrics.
func (h *Handler) ActiveSessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Serve handles GET /sessions: upgrades to a websocket, creates the session,
// and applies JSON commands until the connection closes. A state snapshot is
// written back after every command; while playback runs, a throttled frame
// loop additionally pushes snapshots so overlays redraw without client
// polling.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	sess := New()
	h.register(sess)
	defer h.unregister(sess)

	h.log.Info("session opened", slog.String("session_id", sess.ID))
	if h.metrics != nil {
		h.metrics.IncSessions()
	}

	// Gorilla connections allow one concurrent writer; the command loop and
	// the overlay tick loop share this lock.
	var writeMu sync.Mutex
	writeState := func(typ string, handled bool) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(StateMessage{
			Type:      typ,
			SessionID: sess.ID,
			Handled:   handled,
			State:     sess.Controller().Snapshot(),
		})
	}

	loop := frame.NewThrottledLoop(func(time.Duration) {
		_ = writeState("tick", false)
	}, h.overlayFPS)
	defer loop.Stop()

	// Initial snapshot so the client knows its session id immediately.
	if err := writeState("state", false); err != nil {
		h.log.Debug("initial state write failed", slog.String("session_id", sess.ID))
		return
	}

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Info("session read error",
					slog.String("session_id", sess.ID),
					slog.String("error", err.Error()))
			}
			break
		}

		handled, err := sess.Apply(cmd)
		if err != nil {
			h.log.Debug("command rejected",
				slog.String("session_id", sess.ID),
				slog.String("op", cmd.Op),
				slog.String("error", err.Error()))
			continue
		}
		h.recordCommand(cmd)

		// Overlay ticks only while something is actually playing.
		loop.SetActive(sess.Controller().Playing())

		if err := writeState("state", handled); err != nil {
			break
		}
	}

	h.log.Info("session closed", slog.String("session_id", sess.ID))
}

func (h *Handler) register(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s.ID] = s
}

func (h *Handler) unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, s.ID)
}

func (h *Handler) recordCommand(cmd Command) {
	if h.metrics == nil {
		return
	}
	h.metrics.IncCommands()
	switch cmd.Op {
	case "key":
		h.metrics.IncKeyEvents()
	case "load_event":
		h.metrics.IncEventsLoaded()
	case "seek", "jump", "seek_clip_time":
		h.metrics.IncSeeks()
	case "next_clip", "prev_clip", "seek_clip", "clip_ended":
		h.metrics.IncClipAdvances()
	}
}
