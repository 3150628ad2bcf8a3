package domain

// MediaKind distinguishes the images attached to a tool.
type MediaKind string

const (
	MediaLogo       MediaKind = "logo"
	MediaScreenshot MediaKind = "screenshot"
)

// Valid reports whether the kind is one of the known values.
func (k MediaKind) Valid() bool {
	return k == MediaLogo || k == MediaScreenshot
}

// ToolMedia is an uploaded image attached to a tool.
// The image bytes live on disk at Path; BlurHash is a compact
// placeholder clients can render before the image loads.
type ToolMedia struct {
	Record
	ToolID      string    `json:"tool_id"`
	Kind        MediaKind `json:"kind"`
	Path        string    `json:"path"`
	ContentType string    `json:"content_type"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	BlurHash    string    `json:"blur_hash,omitempty"`
}
