package timeline

import "sync"

// NominalFrameSeconds is the fixed frame duration StepFrame assumes. Exact
// per-frame boundaries are not tracked; stepping uses a constant nominal rate
// regardless of the source media's actual rate.
const NominalFrameSeconds = 1.0 / 30.0

// Controller is the authoritative state machine for one viewing session:
// which event, clip, time, speed and camera set are active. Every operation
// is total — inputs are clamped or ignored, never rejected — and
// concurrency-safe, so a duration report followed by an aggregate query
// always observes the report.
type Controller struct {
	mu sync.Mutex

	event     *Event
	clipIndex int
	playing   bool

	currentTime float64 // seconds into the active clip
	duration    float64 // active clip's reported duration; 0 = unknown

	// One entry per clip; values <= 0 mean the clip has not reported its
	// real duration yet. Retained across clip changes within one event.
	clipDurations []float64

	speed      float64
	visible    map[CameraAngle]bool
	sei        *SEIData
	frameIndex int // advisory, for frame-stepping consumers
}

// NewController returns an empty controller with no event loaded.
func NewController() *Controller {
	return &Controller{
		speed:   1,
		visible: make(map[CameraAngle]bool),
	}
}

// LoadEvent replaces the session state wholesale: pauses, installs event,
// clamps startClipIndex into range, resets time, duration, telemetry and the
// duration map, and seeds the visible camera set from the first clip's
// availability. An event with no clips is a caller precondition violation;
// camera seeding safely no-ops in that case.
func (c *Controller) LoadEvent(event *Event, startClipIndex int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.event = event
	c.playing = false
	c.currentTime = 0
	c.duration = 0
	c.sei = nil
	c.speed = 1
	c.frameIndex = 0
	c.clipIndex = 0
	c.clipDurations = nil
	c.visible = make(map[CameraAngle]bool)

	if event == nil {
		return
	}

	c.clipDurations = make([]float64, len(event.Clips))
	c.clipIndex = clampIndex(startClipIndex, len(event.Clips))

	if len(event.Clips) > 0 {
		c.seedVisibleLocked(event.Clips[0])
	}
}

// UnloadEvent returns the controller to the exact initial empty state.
func (c *Controller) UnloadEvent() {
	c.LoadEvent(nil, 0)
}

// Play starts playback. No-op when no event is loaded. The flag is the only
// side effect; actual media transport reacts to it externally.
func (c *Controller) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.event == nil {
		return
	}
	c.playing = true
}

// Pause stops playback.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = false
}

// TogglePlayPause flips the play/pause flag.
func (c *Controller) TogglePlayPause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing {
		c.playing = false
		return
	}
	if c.event == nil {
		return
	}
	c.playing = true
}

// Seek sets the current time within the active clip. Out-of-range inputs are
// silently clamped to [0, duration], never rejected.
func (c *Controller) Seek(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = clamp(t, 0, c.duration)
}

// Jump seeks relative to the current time, clamped identically to Seek.
func (c *Controller) Jump(delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = clamp(c.currentTime+delta, 0, c.duration)
}

// SeekToClip switches the active clip, resetting time to 0 and the duration
// placeholder to unknown even if that clip's true duration was previously
// learned — the player re-reports once it opens the clip.
func (c *Controller) SeekToClip(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.event == nil {
		return
	}
	c.switchClipLocked(clampIndex(index, len(c.event.Clips)))
}

// SeekToClipAndTime switches the active clip and seeds the current time with
// t. t is not clamped against the destination clip's still-unknown duration;
// the caller reapplies the seek once that clip reports its real length.
func (c *Controller) SeekToClipAndTime(index int, t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.event == nil {
		return
	}
	c.switchClipLocked(clampIndex(index, len(c.event.Clips)))
	if t < 0 {
		t = 0
	}
	c.currentTime = t
}

// JumpToEvent seeks to the event marker, the recorded moment of interest.
// No-op when the event carries no marker.
func (c *Controller) JumpToEvent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.event == nil || c.event.Marker == nil {
		return
	}
	m := c.event.Marker
	c.switchClipLocked(clampIndex(m.ClipIndex, len(c.event.Clips)))
	t := m.TimeOffset
	if t < 0 {
		t = 0
	}
	c.currentTime = t
}

// NextClip advances to the following clip. Returns false, leaving all state
// untouched, when already at the last clip.
func (c *Controller) NextClip() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.event == nil || c.clipIndex >= len(c.event.Clips)-1 {
		return false
	}
	// Clear telemetry before the switch so not even one frame of the old
	// clip's position leaks into the new one.
	c.sei = nil
	c.switchClipLocked(c.clipIndex + 1)
	return true
}

// PrevClip moves to the preceding clip. Returns false, leaving all state
// untouched, when already at the first clip.
func (c *Controller) PrevClip() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.event == nil || c.clipIndex <= 0 {
		return false
	}
	c.sei = nil
	c.switchClipLocked(c.clipIndex - 1)
	return true
}

// OnClipEnded is invoked by the player when the active clip's media
// completes. It advances to the next clip; at the end of the event it pauses
// instead — a terminal condition for that playback run, not an error.
func (c *Controller) OnClipEnded() {
	if !c.NextClip() {
		c.Pause()
	}
}

// StepFrame pauses, then shifts the current time by one nominal frame
// duration in the requested direction (positive = forward), clamped to
// [0, duration].
func (c *Controller) StepFrame(direction int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = false
	step := NominalFrameSeconds
	if direction < 0 {
		step = -step
		c.frameIndex--
	} else {
		c.frameIndex++
	}
	if c.frameIndex < 0 {
		c.frameIndex = 0
	}
	c.currentTime = clamp(c.currentTime+step, 0, c.duration)
}

// SetPlaybackSpeed stores the speed multiplier verbatim. Range enforcement is
// the caller's responsibility.
func (c *Controller) SetPlaybackSpeed(speed float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = speed
}

// ToggleCamera flips visibility of one angle.
func (c *Controller) ToggleCamera(angle CameraAngle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.visible[angle] {
		delete(c.visible, angle)
	} else {
		c.visible[angle] = true
	}
}

// SetCameraVisible sets visibility of one angle explicitly.
func (c *Controller) SetCameraVisible(angle CameraAngle, visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if visible {
		c.visible[angle] = true
	} else {
		delete(c.visible, angle)
	}
}

// SetAllCamerasVisible with true recomputes the visible set from the active
// clip's available angles; with false it empties the set.
func (c *Controller) SetAllCamerasVisible(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = make(map[CameraAngle]bool)
	if !visible || c.event == nil {
		return
	}
	if c.clipIndex < len(c.event.Clips) {
		c.seedVisibleLocked(c.event.Clips[c.clipIndex])
	}
}

// SetSEI installs the current telemetry sample. nil clears it. The decoder
// owns payload correctness; no validation happens here.
func (c *Controller) SetSEI(sample *SEIData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sei = sample
}

// SetDuration records the active clip's real length as reported by the
// player, both as the live duration and in the per-clip duration map so
// aggregate-time computations use it instead of an estimate. Non-positive
// reports collapse to the unknown sentinel (0) so the seek range can never go
// negative.
func (c *Controller) SetDuration(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.event == nil {
		return
	}
	if seconds < 0 {
		seconds = 0
	}
	c.duration = seconds
	if c.clipIndex < len(c.clipDurations) {
		c.clipDurations[c.clipIndex] = seconds
	}
}

// TotalTime returns elapsed seconds across the whole event: every clip before
// the active one (reported duration, or the per-unknown estimate) plus the
// current time in the active clip. 0 when no event is loaded.
func (c *Controller) TotalTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.event == nil {
		return 0
	}
	return elapsedBefore(c.clipDurations, c.event.TotalDuration, c.clipIndex) + c.currentTime
}

// TotalDuration returns the event's full duration: reported clip durations
// where known, the per-unknown estimate elsewhere. Recomputed on every call
// since the estimate shifts as clips report. 0 when no event is loaded.
func (c *Controller) TotalDuration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.event == nil {
		return 0
	}
	return aggregateDuration(c.clipDurations, c.event.TotalDuration)
}

// Event returns the loaded event, or nil.
func (c *Controller) Event() *Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.event
}

// ClipIndex returns the active clip index.
func (c *Controller) ClipIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clipIndex
}

// Playing reports the play/pause flag.
func (c *Controller) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// CurrentTime returns seconds into the active clip.
func (c *Controller) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTime
}

// Duration returns the active clip's reported duration; 0 means unknown.
func (c *Controller) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

// PlaybackSpeed returns the stored speed multiplier.
func (c *Controller) PlaybackSpeed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// SEI returns the current telemetry sample, or nil.
func (c *Controller) SEI() *SEIData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sei
}

// CameraVisible reports whether the given angle is in the visible set.
func (c *Controller) CameraVisible(angle CameraAngle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible[angle]
}

// State is a consistent snapshot of the controller for rendering and
// transport. Fields mirror the controller's session state; aggregates are
// recomputed at snapshot time.
type State struct {
	EventName     string        `json:"event_name,omitempty"`
	HasEvent      bool          `json:"has_event"`
	ClipIndex     int           `json:"clip_index"`
	ClipCount     int           `json:"clip_count"`
	Playing       bool          `json:"playing"`
	CurrentTime   float64       `json:"current_time"`
	Duration      float64       `json:"duration"`
	Speed         float64       `json:"speed"`
	Cameras       []CameraAngle `json:"cameras"`
	SEI           *SEIData      `json:"sei,omitempty"`
	FrameIndex    int           `json:"frame_index"`
	TotalTime     float64       `json:"total_time"`
	TotalDuration float64       `json:"total_duration"`
}

// Snapshot returns a point-in-time copy of the controller state. The visible
// camera slice is ordered by AllCameraAngles so output is stable.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		ClipIndex:   c.clipIndex,
		Playing:     c.playing,
		CurrentTime: c.currentTime,
		Duration:    c.duration,
		Speed:       c.speed,
		SEI:         c.sei,
		FrameIndex:  c.frameIndex,
	}
	for _, a := range AllCameraAngles {
		if c.visible[a] {
			s.Cameras = append(s.Cameras, a)
		}
	}
	if c.event != nil {
		s.HasEvent = true
		s.EventName = c.event.Name
		s.ClipCount = len(c.event.Clips)
		s.TotalTime = elapsedBefore(c.clipDurations, c.event.TotalDuration, c.clipIndex) + c.currentTime
		s.TotalDuration = aggregateDuration(c.clipDurations, c.event.TotalDuration)
	}
	return s
}

// switchClipLocked performs the shared clip-change reset: new index, time 0,
// duration back to the unknown placeholder, telemetry cleared. The per-clip
// duration map is deliberately retained. Caller must hold c.mu.
func (c *Controller) switchClipLocked(index int) {
	c.clipIndex = index
	c.currentTime = 0
	c.duration = 0
	c.sei = nil
	c.frameIndex = 0
}

// seedVisibleLocked recomputes the visible set as the intersection of the
// fixed angle enumeration with the clip's availability. Caller must hold c.mu.
func (c *Controller) seedVisibleLocked(clip Clip) {
	for _, a := range AllCameraAngles {
		if clip.HasCamera(a) {
			c.visible[a] = true
		}
	}
}

// clampIndex limits index to [0, n-1]; returns 0 when n is 0.
func clampIndex(index, n int) int {
	if index < 0 || n == 0 {
		return 0
	}
	if index >= n {
		return n - 1
	}
	return index
}
