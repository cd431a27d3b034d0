package frames

import (
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxVideoBytes caps uploads at 100 MiB
const DefaultMaxVideoBytes = 100 << 20

var supportedVideoTypes = map[string]bool{
	"video/mp4":        true,
	"video/quicktime":  true,
	"video/webm":       true,
	"video/x-matroska": true,
}

// ValidateVideoFile rejects oversized or wrong-MIME files before any decode
// work begins. The MIME type is sniffed from content, not the extension.
func ValidateVideoFile(path string, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxVideoBytes
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat video file: %w", err)
	}
	if info.Size() > maxBytes {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, info.Size(), maxBytes)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("failed to sniff file type: %w", err)
	}
	if !supportedVideoTypes[mtype.String()] && !strings.HasPrefix(mtype.String(), "video/") {
		return fmt.Errorf("%w: detected %s", ErrNotVideo, mtype.String())
	}

	return nil
}
