package timeline

// CameraAngle identifies one physical camera's stream within a clip.
type CameraAngle string

// The fixed set of camera angles a clip may carry.
const (
	CameraFront         CameraAngle = "front"
	CameraBack          CameraAngle = "back"
	CameraLeftRepeater  CameraAngle = "left_repeater"
	CameraRightRepeater CameraAngle = "right_repeater"
	CameraCabin         CameraAngle = "cabin"
)

// AllCameraAngles lists every known angle in display order.
var AllCameraAngles = []CameraAngle{
	CameraFront,
	CameraBack,
	CameraLeftRepeater,
	CameraRightRepeater,
	CameraCabin,
}

// Marker points at the moment of interest within an event: the clip it falls
// in and the offset into that clip.
type Marker struct {
	ClipIndex  int     `json:"clip_index"`
	TimeOffset float64 `json:"time_offset"` // seconds into the clip
}

// Clip is one segment of an event. Cameras lists the angles that have a
// recording for this segment. A clip's real duration is unknown until the
// media player opens it and reports back via Controller.SetDuration.
type Clip struct {
	Name    string        `json:"name"`
	Cameras []CameraAngle `json:"cameras"`
}

// HasCamera reports whether the clip carries a recording for the given angle.
func (c Clip) HasCamera(angle CameraAngle) bool {
	for _, a := range c.Cameras {
		if a == angle {
			return true
		}
	}
	return false
}

// Event is an ordered sequence of clips recorded around one trigger.
// TotalDuration is the scanner's estimate for the whole event, used to
// apportion time to clips whose real duration has not been reported yet.
// Events are immutable once handed to the controller.
type Event struct {
	Name          string  `json:"name"`
	Clips         []Clip  `json:"clips"`
	TotalDuration float64 `json:"total_duration"` // seconds, approximate
	Marker        *Marker `json:"marker,omitempty"`
}

// SEIData is one time-correlated telemetry payload decoded from the stream
// for the currently visible instant. The controller treats it as opaque.
type SEIData struct {
	Timestamp float64        `json:"timestamp"`
	Fields    map[string]any `json:"fields,omitempty"`
}
