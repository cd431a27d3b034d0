package frames

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"math/rand"
	"testing"

	"github.com/yourusername/parlayscope/internal/models"
)

func encodeTestFrame(t *testing.T, img image.Image, timestampMs int64) models.ExtractedFrame {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to encode test frame: %v", err)
	}
	bounds := img.Bounds()
	return models.ExtractedFrame{
		Base64:      base64.StdEncoding.EncodeToString(buf.Bytes()),
		TimestampMs: timestampMs,
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}
}

func solidFrame(t *testing.T, c color.RGBA, timestampMs int64) models.ExtractedFrame {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, c)
		}
	}
	return encodeTestFrame(t, img, timestampMs)
}

func noiseFrame(t *testing.T, seed int64, timestampMs int64) models.ExtractedFrame {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return encodeTestFrame(t, img, timestampMs)
}

func TestDeduplicateDropsBitIdenticalFrames(t *testing.T) {
	first := solidFrame(t, color.RGBA{R: 200, A: 255}, 0)
	duplicate := first
	duplicate.TimestampMs = 500

	out := Deduplicate([]models.ExtractedFrame{first, duplicate}, 0)
	if len(out) != 1 {
		t.Fatalf("expected 1 frame after dedup, got %d", len(out))
	}
	if out[0].TimestampMs != 0 {
		t.Fatalf("expected earlier timestamp retained, got %d", out[0].TimestampMs)
	}
}

func TestDeduplicateKeepsDistinctFrames(t *testing.T) {
	frames := []models.ExtractedFrame{
		noiseFrame(t, 1, 0),
		noiseFrame(t, 99, 500),
		noiseFrame(t, 12345, 1000),
	}

	out := Deduplicate(frames, 0)
	if len(out) != 3 {
		t.Fatalf("expected all distinct frames kept, got %d of 3", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i].TimestampMs <= out[i-1].TimestampMs {
			t.Fatalf("temporal order not preserved: %d after %d", out[i].TimestampMs, out[i-1].TimestampMs)
		}
	}
}

func TestDeduplicateKeepsUndecodableFrames(t *testing.T) {
	garbage := models.ExtractedFrame{Base64: "bm90IGFuIGltYWdl", TimestampMs: 0}
	decodable := noiseFrame(t, 7, 500)

	out := Deduplicate([]models.ExtractedFrame{garbage, decodable}, 0)
	if len(out) != 2 {
		t.Fatalf("expected undecodable frame kept, got %d frames", len(out))
	}
}

func TestDeduplicateShortInputs(t *testing.T) {
	if out := Deduplicate(nil, 0); len(out) != 0 {
		t.Fatalf("expected empty output for nil input")
	}
	single := []models.ExtractedFrame{solidFrame(t, color.RGBA{B: 255, A: 255}, 0)}
	if out := Deduplicate(single, 0); len(out) != 1 {
		t.Fatalf("expected single frame passthrough")
	}
}
