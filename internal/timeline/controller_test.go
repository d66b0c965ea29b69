package timeline

import "testing"

func threeClipEvent() *Event {
	return &Event{
		Name:          "2024-05-01_12-00-00",
		TotalDuration: 40,
		Clips: []Clip{
			{Name: "clip-0", Cameras: []CameraAngle{CameraFront, CameraBack}},
			{Name: "clip-1", Cameras: []CameraAngle{CameraFront}},
			{Name: "clip-2", Cameras: []CameraAngle{CameraFront, CameraCabin}},
		},
		Marker: &Marker{ClipIndex: 1, TimeOffset: 4.5},
	}
}

func TestLoadEvent_seeds_state(t *testing.T) {
	c := NewController()
	c.LoadEvent(threeClipEvent(), 0)

	if c.Playing() {
		t.Error("load should pause")
	}
	if c.ClipIndex() != 0 || c.CurrentTime() != 0 || c.Duration() != 0 {
		t.Errorf("unexpected state after load: clip=%d time=%v dur=%v",
			c.ClipIndex(), c.CurrentTime(), c.Duration())
	}
	// Visible cameras come from clip 0's availability.
	if !c.CameraVisible(CameraFront) || !c.CameraVisible(CameraBack) {
		t.Error("clip 0 cameras should be visible")
	}
	if c.CameraVisible(CameraCabin) {
		t.Error("cabin is not available in clip 0")
	}
}

func TestLoadEvent_clamps_start_clip(t *testing.T) {
	c := NewController()
	c.LoadEvent(threeClipEvent(), 99)
	if c.ClipIndex() != 2 {
		t.Errorf("start clip = %d, want 2", c.ClipIndex())
	}
	c.LoadEvent(threeClipEvent(), -4)
	if c.ClipIndex() != 0 {
		t.Errorf("start clip = %d, want 0", c.ClipIndex())
	}
}

func TestPlay_requires_event(t *testing.T) {
	c := NewController()
	c.Play()
	if c.Playing() {
		t.Error("play without an event should be a no-op")
	}
	c.TogglePlayPause()
	if c.Playing() {
		t.Error("toggle without an event should not start playback")
	}
	c.LoadEvent(threeClipEvent(), 0)
	c.TogglePlayPause()
	if !c.Playing() {
		t.Error("toggle with an event should start playback")
	}
	c.TogglePlayPause()
	if c.Playing() {
		t.Error("second toggle should pause")
	}
}

func TestSeek_clamps(t *testing.T) {
	c := NewController()
	c.LoadEvent(threeClipEvent(), 0)
	c.SetDuration(10)

	c.Seek(-5)
	if c.CurrentTime() != 0 {
		t.Errorf("negative seek: time = %v, want 0", c.CurrentTime())
	}
	c.Seek(25)
	if c.CurrentTime() != 10 {
		t.Errorf("overshoot seek: time = %v, want 10", c.CurrentTime())
	}
	c.Seek(3.5)
	if c.CurrentTime() != 3.5 {
		t.Errorf("in-range seek: time = %v, want 3.5", c.CurrentTime())
	}
	c.Jump(100)
	if c.CurrentTime() != 10 {
		t.Errorf("jump clamps like seek: time = %v, want 10", c.CurrentTime())
	}
}

func TestSeekToClip_resets_even_known_duration(t *testing.T) {
	c := NewController()
	c.LoadEvent(threeClipEvent(), 0)
	c.SetDuration(10)
	c.SeekToClip(1)
	c.SetDuration(12)
	c.SeekToClip(0)

	// Clip 0's duration was learned earlier but the placeholder still resets;
	// the player re-reports when it reopens the clip.
	if c.Duration() != 0 {
		t.Errorf("duration = %v, want 0 (unknown placeholder)", c.Duration())
	}
	if c.CurrentTime() != 0 {
		t.Errorf("time = %v, want 0", c.CurrentTime())
	}
}

func TestSeekToClipAndTime_seeds_unclamped_time(t *testing.T) {
	c := NewController()
	c.LoadEvent(threeClipEvent(), 0)
	c.SeekToClipAndTime(2, 7.25)

	if c.ClipIndex() != 2 {
		t.Errorf("clip = %d, want 2", c.ClipIndex())
	}
	// Destination duration is still unknown (0); the seed is kept anyway.
	if c.CurrentTime() != 7.25 {
		t.Errorf("time = %v, want 7.25", c.CurrentTime())
	}
}

func TestJumpToEvent_uses_marker(t *testing.T) {
	c := NewController()
	c.LoadEvent(threeClipEvent(), 0)
	c.JumpToEvent()
	if c.ClipIndex() != 1 || c.CurrentTime() != 4.5 {
		t.Errorf("marker jump: clip=%d time=%v, want clip=1 time=4.5",
			c.ClipIndex(), c.CurrentTime())
	}
}

func TestJumpToEvent_without_marker_is_noop(t *testing.T) {
	ev := threeClipEvent()
	ev.Marker = nil
	c := NewController()
	c.LoadEvent(ev, 0)
	c.Seek(0)
	c.JumpToEvent()
	if c.ClipIndex() != 0 || c.CurrentTime() != 0 {
		t.Error("jump without marker should change nothing")
	}
}

func TestNextClip_advances_and_clears_telemetry(t *testing.T) {
	c := NewController()
	c.LoadEvent(threeClipEvent(), 0)
	c.SetDuration(10)
	c.Seek(5)
	c.SetSEI(&SEIData{Timestamp: 5})

	if !c.NextClip() {
		t.Fatal("NextClip at index 0 of 3 should succeed")
	}
	if c.ClipIndex() != 1 {
		t.Errorf("clip = %d, want 1", c.ClipIndex())
	}
	if c.CurrentTime() != 0 || c.Duration() != 0 {
		t.Errorf("time/duration not reset: %v/%v", c.CurrentTime(), c.Duration())
	}
	if c.SEI() != nil {
		t.Error("telemetry should be cleared on clip change")
	}
}

func TestNextClip_at_last_clip_is_noop(t *testing.T) {
	c := NewController()
	c.LoadEvent(threeClipEvent(), 2)
	c.SetSEI(&SEIData{Timestamp: 1})

	if c.NextClip() {
		t.Fatal("NextClip at the last clip should return false")
	}
	if c.ClipIndex() != 2 {
		t.Errorf("clip = %d, want 2 (unchanged)", c.ClipIndex())
	}
	// The no-op path must not clear telemetry.
	if c.SEI() == nil {
		t.Error("failed move must leave telemetry in place")
	}
}

func TestPrevClip_boundaries(t *testing.T) {
	c := NewController()
	c.LoadEvent(threeClipEvent(), 0)
	if c.PrevClip() {
		t.Error("PrevClip at index 0 should return false")
	}
	c.SeekToClip(2)
	if !c.PrevClip() {
		t.Error("PrevClip at index 2 should succeed")
	}
	if c.ClipIndex() != 1 {
		t.Errorf("clip = %d, want 1", c.ClipIndex())
	}
}

func TestOnClipEnded_advances_or_pauses(t *testing.T) {
	c := NewController()
	c.LoadEvent(threeClipEvent(), 1)
	c.Play()

	c.OnClipEnded()
	if c.ClipIndex() != 2 {
		t.Errorf("clip = %d, want 2", c.ClipIndex())
	}
	if !c.Playing() {
		t.Error("playback continues across a clip boundary")
	}

	c.OnClipEnded()
	if c.ClipIndex() != 2 {
		t.Errorf("clip = %d, want 2 (end of event)", c.ClipIndex())
	}
	if c.Playing() {
		t.Error("end of event should pause")
	}
}

func TestStepFrame_pauses_and_steps_one_frame(t *testing.T) {
	c := NewController()
	c.LoadEvent(threeClipEvent(), 0)
	c.SetDuration(10)
	c.Seek(5)
	c.Play()

	c.StepFrame(1)
	if c.Playing() {
		t.Error("stepping must pause first")
	}
	if !almostEqual(c.CurrentTime(), 5+NominalFrameSeconds) {
		t.Errorf("time = %v, want %v", c.CurrentTime(), 5+NominalFrameSeconds)
	}

	c.StepFrame(-1)
	if !almostEqual(c.CurrentTime(), 5) {
		t.Errorf("time = %v, want 5", c.CurrentTime())
	}
}

func TestStepFrame_clamps_at_bounds(t *testing.T) {
	c := NewController()
	c.LoadEvent(threeClipEvent(), 0)
	c.SetDuration(10)

	c.StepFrame(-1)
	if c.CurrentTime() != 0 {
		t.Errorf("time = %v, want 0", c.CurrentTime())
	}
	c.Seek(10)
	c.StepFrame(1)
	if c.CurrentTime() != 10 {
		t.Errorf("time = %v, want 10 (clamped at duration)", c.CurrentTime())
	}
}

func TestCameraVisibility_operations(t *testing.T) {
	c := NewController()
	c.LoadEvent(threeClipEvent(), 0)

	c.ToggleCamera(CameraFront)
	if c.CameraVisible(CameraFront) {
		t.Error("toggle should hide a visible camera")
	}
	c.ToggleCamera(CameraFront)
	if !c.CameraVisible(CameraFront) {
		t.Error("toggle should show a hidden camera")
	}

	c.SetCameraVisible(CameraCabin, true)
	if !c.CameraVisible(CameraCabin) {
		t.Error("explicit set true")
	}
	c.SetCameraVisible(CameraCabin, false)
	if c.CameraVisible(CameraCabin) {
		t.Error("explicit set false")
	}

	c.SetAllCamerasVisible(false)
	for _, a := range AllCameraAngles {
		if c.CameraVisible(a) {
			t.Errorf("camera %s should be hidden", a)
		}
	}

	// Recompute from the *active* clip's availability, not a remembered set.
	c.SeekToClip(2)
	c.SetAllCamerasVisible(true)
	if !c.CameraVisible(CameraFront) || !c.CameraVisible(CameraCabin) {
		t.Error("clip 2 cameras should be visible")
	}
	if c.CameraVisible(CameraBack) {
		t.Error("back is not available in clip 2")
	}
}

func TestAggregates_estimate_scenario(t *testing.T) {
	// 3 clips, true durations [10, ?, ?], event estimate 40.
	c := NewController()
	c.LoadEvent(threeClipEvent(), 0)
	c.SetDuration(10)

	if got := c.TotalDuration(); !almostEqual(got, 40) {
		t.Errorf("TotalDuration = %v, want 40", got)
	}

	// Land 3s into clip 1 while its duration is still unknown.
	c.SeekToClipAndTime(1, 3)
	// TotalTime uses clip 0's reported 10s plus 3s into clip 1.
	if got := c.TotalTime(); !almostEqual(got, 13) {
		t.Errorf("TotalTime = %v, want 13", got)
	}
	// Per-unknown estimate is (40-10)/2 = 15 for clips 1 and 2.
	if got := c.TotalDuration(); !almostEqual(got, 40) {
		t.Errorf("TotalDuration = %v, want 40", got)
	}
}

func TestSetDuration_reanchors_estimate(t *testing.T) {
	c := NewController()
	c.LoadEvent(threeClipEvent(), 0)
	c.SetDuration(10)
	c.SeekToClip(1)
	c.SetDuration(12)

	// Remaining unknown clip (index 2) absorbs (40-10-12)=18; the aggregate
	// stays anchored at the event estimate until every clip is known.
	if got := c.TotalDuration(); !almostEqual(got, 40) {
		t.Errorf("TotalDuration = %v, want 40", got)
	}
}

func TestSetDuration_negative_report_is_unknown(t *testing.T) {
	c := NewController()
	c.LoadEvent(threeClipEvent(), 0)

	c.SetDuration(-5)
	if c.Duration() != 0 {
		t.Errorf("duration = %v, want 0 (unknown sentinel)", c.Duration())
	}
	// With the sentinel in place a seek clamps into [0, 0] instead of
	// landing on a negative bound.
	c.Seek(3)
	if c.CurrentTime() != 0 {
		t.Errorf("time after seek = %v, want 0", c.CurrentTime())
	}
	// The duration map must not treat the bad report as known either.
	if got := c.TotalDuration(); !almostEqual(got, 40) {
		t.Errorf("TotalDuration = %v, want 40 (all clips still unknown)", got)
	}
}

func TestLoadEvent_zero_clips_is_safe(t *testing.T) {
	c := NewController()
	c.LoadEvent(&Event{Name: "empty", TotalDuration: 10}, 0)

	if c.ClipIndex() != 0 {
		t.Errorf("clip = %d, want 0", c.ClipIndex())
	}
	c.Seek(5)
	if c.CurrentTime() != 0 {
		t.Errorf("time = %v, want 0", c.CurrentTime())
	}
	// Camera seeding has no clip to read from and stays empty.
	c.SetAllCamerasVisible(true)
	for _, a := range AllCameraAngles {
		if c.CameraVisible(a) {
			t.Errorf("camera %s should not be visible", a)
		}
	}
	if c.TotalDuration() != 0 || c.TotalTime() != 0 {
		t.Errorf("aggregates = %v/%v, want 0/0",
			c.TotalTime(), c.TotalDuration())
	}
	if c.NextClip() || c.PrevClip() {
		t.Error("clip navigation should be a no-op with no clips")
	}
}

func TestAggregates_zero_without_event(t *testing.T) {
	c := NewController()
	if c.TotalTime() != 0 || c.TotalDuration() != 0 {
		t.Error("aggregates must be 0 with no event loaded")
	}
}

func TestUnloadEvent_roundtrip_to_empty(t *testing.T) {
	c := NewController()
	c.LoadEvent(threeClipEvent(), 1)
	c.Play()
	c.SetDuration(12)
	c.Seek(4)
	c.SetSEI(&SEIData{Timestamp: 4})
	c.SetPlaybackSpeed(1.75)
	c.UnloadEvent()

	if c.Event() != nil {
		t.Error("event should be nil")
	}
	if c.ClipIndex() != 0 || c.CurrentTime() != 0 || c.Duration() != 0 {
		t.Errorf("not reset: clip=%d time=%v dur=%v",
			c.ClipIndex(), c.CurrentTime(), c.Duration())
	}
	if c.Playing() || c.SEI() != nil {
		t.Error("playing flag and telemetry should be reset")
	}
	if c.PlaybackSpeed() != 1 {
		t.Errorf("speed = %v, want 1", c.PlaybackSpeed())
	}
	if got := c.TotalDuration(); got != 0 {
		t.Errorf("TotalDuration = %v, want 0", got)
	}
}

func TestSnapshot_reflects_state(t *testing.T) {
	c := NewController()
	c.LoadEvent(threeClipEvent(), 0)
	c.SetDuration(10)
	c.Seek(2)

	s := c.Snapshot()
	if !s.HasEvent || s.EventName != "2024-05-01_12-00-00" {
		t.Errorf("snapshot event: %+v", s)
	}
	if s.ClipCount != 3 || s.ClipIndex != 0 {
		t.Errorf("snapshot clips: %+v", s)
	}
	if s.CurrentTime != 2 || s.Duration != 10 {
		t.Errorf("snapshot time: %+v", s)
	}
	if !almostEqual(s.TotalDuration, 40) || !almostEqual(s.TotalTime, 2) {
		t.Errorf("snapshot aggregates: total=%v elapsed=%v", s.TotalDuration, s.TotalTime)
	}
	if len(s.Cameras) != 2 {
		t.Errorf("snapshot cameras = %v, want front+back", s.Cameras)
	}
}
