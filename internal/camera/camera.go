// Package camera provides frame sources for the enrollment and capture
// loops. Frames are JPEG-encoded, which is what the recognition library
// consumes directly.
package camera

import (
	"context"
	"errors"
	"time"
)

// Frame is a single captured camera frame.
type Frame struct {
	JPEG      []byte
	Timestamp time.Time
}

// Source produces frames one at a time. Reads are synchronous; the capture
// loops poll cancellation between frames, not during a read.
type Source interface {
	// NextFrame blocks until a frame is available or the context is done.
	NextFrame(ctx context.Context) (Frame, error)
	Close() error
}

// ErrNoMoreFrames is returned by finite sources when they are exhausted.
var ErrNoMoreFrames = errors.New("no more frames")

// ErrCameraUnavailable is returned when the camera endpoint cannot be
// reached or stops producing frames. Fatal to the running session.
var ErrCameraUnavailable = errors.New("camera unavailable")
