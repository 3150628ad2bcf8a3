package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

// maxImageBytes caps uploaded image size at 5 MiB.
const maxImageBytes = 5 * 1024 * 1024

// formatInfo maps a decoded image format name to its file extension
// and content type.
var formatInfo = map[string]struct {
	ext         string
	contentType string
}{
	"jpeg": {"jpg", "image/jpeg"},
	"png":  {"png", "image/png"},
	"gif":  {"gif", "image/gif"},
	"webp": {"webp", "image/webp"},
}

// Processed describes a stored media file and its display metadata.
type Processed struct {
	Filename    string
	ContentType string
	BlurHash    string
	Width       int
	Height      int
}

// Processor validates, measures and stores uploaded images.
type Processor struct {
	storage *Storage
	logger  *slog.Logger
}

// NewProcessor creates a new Processor instance.
func NewProcessor(storage *Storage, logger *slog.Logger) *Processor {
	return &Processor{
		storage: storage,
		logger:  logger,
	}
}

// Process decodes image data, computes its BlurHash placeholder and stores
// the original bytes under {mediaID}.{ext}.
// Returns an error if the data is not a supported image format.
func (p *Processor) Process(mediaID string, data []byte) (*Processed, error) {
	if mediaID == "" {
		return nil, fmt.Errorf("media ID cannot be empty")
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image data cannot be empty")
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds maximum size of %d bytes", maxImageBytes)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	info, ok := formatInfo[format]
	if !ok {
		return nil, fmt.Errorf("unsupported image format: %s", format)
	}

	bounds := img.Bounds()

	// BlurHash is a nice-to-have placeholder; an encoding failure
	// shouldn't reject the upload.
	hash, err := ComputeBlurHash(img)
	if err != nil {
		p.logger.Warn("failed to compute blurhash",
			"media_id", mediaID,
			"error", err,
		)
		hash = ""
	}

	filename := fmt.Sprintf("%s.%s", mediaID, info.ext)
	if err := p.storage.Save(filename, data); err != nil {
		return nil, fmt.Errorf("failed to save media: %w", err)
	}

	p.logger.Debug("processed media upload",
		"media_id", mediaID,
		"format", format,
		"size", len(data),
		"width", bounds.Dx(),
		"height", bounds.Dy(),
	)

	return &Processed{
		Filename:    filename,
		ContentType: info.contentType,
		BlurHash:    hash,
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}, nil
}
