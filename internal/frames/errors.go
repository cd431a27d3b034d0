// Package frames extracts and deduplicates still frames from uploaded slip videos.
package frames

import "errors"

var (
	// ErrNotVideo indicates the file's sniffed MIME type is not a supported video format
	ErrNotVideo = errors.New("file is not a supported video format")

	// ErrFileTooLarge indicates the file exceeds the configured size cap
	ErrFileTooLarge = errors.New("video file exceeds maximum size")

	// ErrDecodeFailed indicates the video could not be decoded
	ErrDecodeFailed = errors.New("video decode failed")

	// ErrNoFrames indicates decoding produced no usable frames
	ErrNoFrames = errors.New("no frames could be extracted")
)
