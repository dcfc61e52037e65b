package device

// Segment is one measured rebar section as reported by the device. Immutable
// once received.
type Segment struct {
	SectionID int     `json:"section_id"`
	VolumeCc  float64 `json:"volume_cc"`
	WidthCm   float64 `json:"width_cm"`
	LengthCm  float64 `json:"length_cm"`
	HeightCm  float64 `json:"height_cm"`
}

// Snapshot is the latest known capture result. The backend keeps segments and
// the total consistent; the client never recomputes the sum. A snapshot is
// replaced wholesale on every refresh, never merged.
type Snapshot struct {
	Connected   bool      `json:"connected"`
	Timestamp   string    `json:"timestamp"`
	Segments    []Segment `json:"segments"`
	TotalVolume float64   `json:"total_volume"`
	HasImage    bool      `json:"has_image"`
}

// Config mirrors the device-side capture configuration. The client holds a
// read/edit copy for the settings form until explicitly submitted.
type Config struct {
	DetectionThreshold  float64 `json:"detection_threshold"`
	CameraEnabled       bool    `json:"camera_enabled"`
	ExternalCameraIndex int     `json:"external_camera_index"`
}

// Firmware defaults applied when get_config omits fields.
const (
	DefaultDetectionThreshold = 0.7
	DefaultCameraEnabled      = true
	DefaultCameraIndex        = 0
)
