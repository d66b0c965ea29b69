// Package session hosts the playback core for one browser viewing session:
// one timeline controller, one key dispatcher, and any number of attached
// playback surfaces that must stay synchronized.
package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"dashcam-viewer/internal/input"
	"dashcam-viewer/internal/timeline"
)

// ErrUnknownOp is returned when a command names an operation the session does
// not expose.
var ErrUnknownOp = errors.New("unknown operation")

// PlaybackSurface is one synchronized video surface (a camera angle's player)
// attached to the session. The session fans a single seek out to every
// attached surface so they stay frame-aligned.
type PlaybackSurface interface {
	Seek(t float64)
}

// Session binds one controller and one dispatcher for its lifetime. The
// dispatcher is registered once and rebound whenever the surface set changes,
// so the seek override always reaches the current surfaces.
type Session struct {
	ID string

	ctrl *timeline.Controller
	disp *input.Dispatcher

	mu       sync.Mutex
	surfaces []PlaybackSurface
}

// New returns a session with a fresh controller and an empty surface set.
func New() *Session {
	s := &Session{
		ID:   uuid.NewString(),
		ctrl: timeline.NewController(),
		disp: input.NewDispatcher(),
	}
	s.disp.Bind(s.ctrl, input.Options{Seek: s.Seek})
	return s
}

// Controller exposes the session's timeline controller. Collaborators (the
// media player reporting durations, the telemetry decoder) call its
// operations directly; no field is mutated from outside.
func (s *Session) Controller() *timeline.Controller {
	return s.ctrl
}

// AttachSurface registers a playback surface for seek fan-out.
func (s *Session) AttachSurface(ps PlaybackSurface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surfaces = append(s.surfaces, ps)
}

// Seek applies the seek to the controller, then forwards the clamped time to
// every attached surface so all angles land on the same instant.
func (s *Session) Seek(t float64) {
	s.ctrl.Seek(t)
	clamped := s.ctrl.CurrentTime()

	s.mu.Lock()
	surfaces := make([]PlaybackSurface, len(s.surfaces))
	copy(surfaces, s.surfaces)
	s.mu.Unlock()

	for _, ps := range surfaces {
		ps.Seek(clamped)
	}
}

// HandleKey runs one key press through the dispatcher. The return value tells
// the host whether to suppress the key's default handling.
func (s *Session) HandleKey(ev input.KeyEvent) bool {
	return s.disp.HandleKey(ev)
}

// Command is one JSON message on the session's control channel. Op selects
// the operation; the remaining fields carry its arguments.
type Command struct {
	Op string `json:"op"`

	// "key"
	Key           string `json:"key,omitempty"`
	Shift         bool   `json:"shift,omitempty"`
	FromTextInput bool   `json:"from_text_input,omitempty"`

	// "load_event"
	Event     *timeline.Event `json:"event,omitempty"`
	StartClip int             `json:"start_clip,omitempty"`

	// clip/time/speed arguments
	Index     int     `json:"index,omitempty"`
	Time      float64 `json:"time,omitempty"`
	Delta     float64 `json:"delta,omitempty"`
	Seconds   float64 `json:"seconds,omitempty"`
	Speed     float64 `json:"speed,omitempty"`
	Direction int     `json:"direction,omitempty"`

	// camera arguments
	Camera  timeline.CameraAngle `json:"camera,omitempty"`
	Visible bool                 `json:"visible,omitempty"`

	// "sei"
	SEI *timeline.SEIData `json:"sei,omitempty"`
}

// Apply executes one command against the session. handled reports whether the
// command did anything; for "key" it is the dispatcher's verdict, which the
// client uses to decide whether to suppress the key's default handling.
// Every controller operation is total, so the only error is an unknown op.
func (s *Session) Apply(cmd Command) (handled bool, err error) {
	switch cmd.Op {
	case "key":
		return s.HandleKey(input.KeyEvent{Key: cmd.Key, Shift: cmd.Shift, FromTextInput: cmd.FromTextInput}), nil
	case "load_event":
		s.ctrl.LoadEvent(cmd.Event, cmd.StartClip)
	case "unload_event":
		s.ctrl.UnloadEvent()
	case "play":
		s.ctrl.Play()
	case "pause":
		s.ctrl.Pause()
	case "toggle_play":
		s.ctrl.TogglePlayPause()
	case "seek":
		s.Seek(cmd.Time)
	case "seek_clip":
		s.ctrl.SeekToClip(cmd.Index)
	case "seek_clip_time":
		s.ctrl.SeekToClipAndTime(cmd.Index, cmd.Time)
	case "jump":
		s.ctrl.Jump(cmd.Delta)
	case "jump_to_event":
		s.ctrl.JumpToEvent()
	case "next_clip":
		s.ctrl.NextClip()
	case "prev_clip":
		s.ctrl.PrevClip()
	case "clip_ended":
		s.ctrl.OnClipEnded()
	case "step_frame":
		s.ctrl.StepFrame(cmd.Direction)
	case "set_speed":
		s.ctrl.SetPlaybackSpeed(cmd.Speed)
	case "set_duration":
		s.ctrl.SetDuration(cmd.Seconds)
	case "sei":
		s.ctrl.SetSEI(cmd.SEI)
	case "toggle_camera":
		s.ctrl.ToggleCamera(cmd.Camera)
	case "set_camera":
		s.ctrl.SetCameraVisible(cmd.Camera, cmd.Visible)
	case "set_all_cameras":
		s.ctrl.SetAllCamerasVisible(cmd.Visible)
	default:
		return false, ErrUnknownOp
	}
	return true, nil
}
