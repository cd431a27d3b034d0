package frames

import (
	"bytes"
	"encoding/base64"
	"image"

	"github.com/corona10/goimagehash"

	"github.com/yourusername/parlayscope/internal/models"
)

// DefaultHashDistance is the Hamming-distance threshold below which two
// frame hashes are treated as the same visual content. A 64-bit difference
// hash with distance <= 10 tolerates compression noise between samples of
// a static slip while still separating distinct screens.
const DefaultHashDistance = 10

// Deduplicate removes frames whose visual content is near-identical to an
// already-kept frame, preserving the temporal order of the first occurrence
// of each visually distinct frame. Frames that cannot be decoded are kept,
// since their similarity cannot be judged.
func Deduplicate(frames []models.ExtractedFrame, maxDistance int) []models.ExtractedFrame {
	if maxDistance <= 0 {
		maxDistance = DefaultHashDistance
	}
	if len(frames) < 2 {
		return frames
	}

	kept := make([]models.ExtractedFrame, 0, len(frames))
	keptHashes := make([]*goimagehash.ImageHash, 0, len(frames))

	for _, frame := range frames {
		hash, err := hashFrame(frame)
		if err != nil {
			kept = append(kept, frame)
			keptHashes = append(keptHashes, nil)
			continue
		}

		duplicate := false
		for _, existing := range keptHashes {
			if existing == nil {
				continue
			}
			distance, err := hash.Distance(existing)
			if err != nil {
				continue
			}
			if distance <= maxDistance {
				duplicate = true
				break
			}
		}

		if !duplicate {
			kept = append(kept, frame)
			keptHashes = append(keptHashes, hash)
		}
	}

	return kept
}

// hashFrame computes a perceptual difference hash of the frame's pixels
func hashFrame(frame models.ExtractedFrame) (*goimagehash.ImageHash, error) {
	data, err := base64.StdEncoding.DecodeString(frame.Base64)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return goimagehash.DifferenceHash(img)
}
