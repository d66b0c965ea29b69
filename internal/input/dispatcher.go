// Package input maps discrete key events onto timeline operations. The
// dispatcher is registered once per viewing session; the controller and
// option set behind it are swapped on every state refresh and read only
// inside the handler, so the host never re-registers its listener.
package input

import (
	"sync"

	"dashcam-viewer/internal/timeline"
)

// Working range the dispatcher enforces for playback speed. The controller
// itself stores speed verbatim.
const (
	MinSpeed  = 0.25
	MaxSpeed  = 2.0
	SpeedStep = 0.25
)

// Seek distances in seconds for the arrow and j/l keys.
const (
	arrowSeekSeconds      = 1
	arrowShiftSeekSeconds = 5
	mediumSeekSeconds     = 10
)

// KeyEvent is one discrete key press as observed by the host. Key uses the
// web KeyboardEvent.key naming ("k", "ArrowLeft", "Home", " ", ...).
// FromTextInput is true when the press targeted a text-entry element; such
// events are ignored outright.
type KeyEvent struct {
	Key           string
	Shift         bool
	FromTextInput bool
}

// Options lets a host redirect primitive operations. A host that fans one
// seek out to several synchronized playback surfaces supplies Seek; absent an
// override the controller's own operation is called directly. PrevEvent and
// NextEvent have no intra-controller meaning and only do anything when the
// host wires them.
type Options struct {
	Seek      func(t float64)
	StepFrame func(direction int)
	PrevEvent func()
	NextEvent func()
}

// Dispatcher holds the latest controller and options behind a lock and reads
// them on every key press.
type Dispatcher struct {
	mu   sync.RWMutex
	ctrl *timeline.Controller
	opts Options
}

// NewDispatcher returns an unbound dispatcher; HandleKey is a no-op until
// Bind installs a controller.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Bind refreshes the dispatch target. Safe to call on every state refresh;
// the key listener itself stays registered.
func (d *Dispatcher) Bind(ctrl *timeline.Controller, opts Options) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ctrl = ctrl
	d.opts = opts
}

// HandleKey applies the key table to the bound controller. It returns true
// when the key matched an operation, in which case the host must suppress
// its default handling of the key.
func (d *Dispatcher) HandleKey(ev KeyEvent) bool {
	if ev.FromTextInput {
		return false
	}

	d.mu.RLock()
	ctrl, opts := d.ctrl, d.opts
	d.mu.RUnlock()

	if ctrl == nil {
		return false
	}

	switch ev.Key {
	case " ", "Space", "k":
		ctrl.TogglePlayPause()
	case "j":
		d.seek(ctrl, opts, ctrl.CurrentTime()-mediumSeekSeconds)
	case "l":
		d.seek(ctrl, opts, ctrl.CurrentTime()+mediumSeekSeconds)
	case "ArrowLeft":
		d.seek(ctrl, opts, ctrl.CurrentTime()-arrowDelta(ev.Shift))
	case "ArrowRight":
		d.seek(ctrl, opts, ctrl.CurrentTime()+arrowDelta(ev.Shift))
	case "ArrowUp":
		ctrl.SetPlaybackSpeed(clampSpeed(ctrl.PlaybackSpeed() + SpeedStep))
	case "ArrowDown":
		ctrl.SetPlaybackSpeed(clampSpeed(ctrl.PlaybackSpeed() - SpeedStep))
	case "Home":
		d.seek(ctrl, opts, 0)
	case "End":
		d.seek(ctrl, opts, ctrl.Duration())
	case "n", "N":
		ctrl.NextClip()
	case "p", "P":
		ctrl.PrevClip()
	case "[":
		if opts.PrevEvent == nil {
			return false
		}
		opts.PrevEvent()
	case "]":
		if opts.NextEvent == nil {
			return false
		}
		opts.NextEvent()
	case "e", "E":
		ctrl.JumpToEvent()
	case ",", "<":
		d.stepFrame(ctrl, opts, -1)
	case ".", ">":
		d.stepFrame(ctrl, opts, +1)
	default:
		if digit, ok := digitKey(ev.Key); ok {
			d.seek(ctrl, opts, ctrl.Duration()*float64(digit)/10)
			return true
		}
		return false
	}
	return true
}

// seek resolves through the host override when present so a single key press
// can reach every attached playback surface.
func (d *Dispatcher) seek(ctrl *timeline.Controller, opts Options, t float64) {
	if opts.Seek != nil {
		opts.Seek(t)
		return
	}
	ctrl.Seek(t)
}

// stepFrame uses the wired stepping hook when present; otherwise it falls
// back to pausing and seeking by one nominal frame so unwired hosts still get
// frame-accurate scrubbing through their seek path.
func (d *Dispatcher) stepFrame(ctrl *timeline.Controller, opts Options, direction int) {
	if opts.StepFrame != nil {
		opts.StepFrame(direction)
		return
	}
	ctrl.Pause()
	d.seek(ctrl, opts, ctrl.CurrentTime()+float64(direction)*timeline.NominalFrameSeconds)
}

func arrowDelta(shift bool) float64 {
	if shift {
		return arrowShiftSeekSeconds
	}
	return arrowSeekSeconds
}

func clampSpeed(s float64) float64 {
	if s < MinSpeed {
		return MinSpeed
	}
	if s > MaxSpeed {
		return MaxSpeed
	}
	return s
}

func digitKey(key string) (int, bool) {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return 0, false
	}
	return int(key[0] - '0'), true
}
