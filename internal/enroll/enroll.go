// Package enroll captures face images for a student, filters them for
// quality and persists the resulting embeddings and registry row.
package enroll

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/akraiem/attendance-tracker/internal/camera"
	"github.com/akraiem/attendance-tracker/internal/encodings"
	"github.com/akraiem/attendance-tracker/internal/identity"
	"github.com/akraiem/attendance-tracker/internal/quality"
	"github.com/akraiem/attendance-tracker/internal/recognition"
	"github.com/akraiem/attendance-tracker/internal/store"
)

// MaxTargetImages bounds one enrollment session.
const MaxTargetImages = 50

var (
	// ErrRegNoConflict: the registration number belongs to another name.
	// Enrollment performs zero writes in this case.
	ErrRegNoConflict = errors.New("registration number already used by another student")
	// ErrAlreadyRegistered: the same student exists and re-enrollment was
	// not confirmed.
	ErrAlreadyRegistered = errors.New("student already registered; confirm to add more images")
	// ErrNoEncodings: the session produced zero accepted frames, nothing
	// was written.
	ErrNoEncodings = errors.New("no face encodings captured")
	// ErrTargetOutOfRange: requested image count outside 1..MaxTargetImages.
	ErrTargetOutOfRange = errors.New("image count out of range")
)

// Options configure one enrollment session.
type Options struct {
	FullName     string
	RegNo        string
	TargetImages int
	// Confirm allows appending images to an already-registered student.
	Confirm bool
	// Progress, when set, is called after every capture attempt.
	Progress func(accepted, attempts int)
}

// Stats are the session counters, surfaced for end-of-session diagnostics.
type Stats struct {
	TotalAttempts      int `json:"total_attempts"`
	Accepted           int `json:"accepted"`
	RejectedNoFace     int `json:"rejected_no_face"`
	RejectedBlur       int `json:"rejected_blur"`
	RejectedNoEncoding int `json:"rejected_no_encoding"`
}

// Result summarizes a completed session.
type Result struct {
	SessionID  string
	Identifier string
	FullName   string
	RegNo      string
	Stats      Stats
	// ImageCount is the registry image count after this session.
	ImageCount int
}

// Pipeline wires the enrollment dependencies.
type Pipeline struct {
	Source        camera.Source
	Detector      recognition.Detector
	Encodings     encodings.Store
	Students      store.Students
	DatasetDir    string
	BlurThreshold float64
}

// Run executes the session. Embeddings are appended (never replaced) and
// the registry image count is summed onto any prior count. Cancelling the
// context stops the capture loop; frames accepted before the stop are
// still persisted. A frame-read failure aborts the same way and is
// returned after any accepted frames were persisted.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	fullName, err := identity.ValidateName(opts.FullName)
	if err != nil {
		return nil, err
	}
	regNo := strings.TrimSpace(opts.RegNo)
	if regNo == "" {
		return nil, identity.ErrEmptyRegNo
	}
	if opts.TargetImages < 1 || opts.TargetImages > MaxTargetImages {
		return nil, fmt.Errorf("%w: %d", ErrTargetOutOfRange, opts.TargetImages)
	}

	priorCount := 0
	existing, err := p.Students.GetByRegNo(ctx, regNo)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.FullName != fullName {
			return nil, ErrRegNoConflict
		}
		if !opts.Confirm {
			return nil, ErrAlreadyRegistered
		}
		priorCount = existing.ImageCount
	}

	folder := identity.FolderName(fullName, regNo)
	folderPath := filepath.Join(p.DatasetDir, folder)
	if err := os.MkdirAll(folderPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating dataset directory: %w", err)
	}

	log := logrus.WithFields(logrus.Fields{"session": uuid.NewString()[:8], "student": folder})
	log.WithField("target", opts.TargetImages).Info("enrollment session started")

	var (
		stats    Stats
		vectors  [][]float32
		captureE error
	)

	for stats.Accepted < opts.TargetImages {
		// Cancellation is polled once per frame.
		if ctx.Err() != nil {
			log.Info("enrollment cancelled")
			break
		}

		frame, err := p.Source.NextFrame(ctx)
		if errors.Is(err, camera.ErrNoMoreFrames) || errors.Is(err, context.Canceled) {
			break
		}
		if err != nil {
			captureE = err
			break
		}

		stats.TotalAttempts++
		p.inspectFrame(frame, folderPath, &stats, &vectors)
		if opts.Progress != nil {
			opts.Progress(stats.Accepted, stats.TotalAttempts)
		}
	}

	if stats.Accepted == 0 {
		if captureE != nil {
			return nil, fmt.Errorf("capture failed: %w", captureE)
		}
		return nil, ErrNoEncodings
	}

	// Cancellation stops the capture, not the persistence of what was
	// already accepted.
	pctx := context.WithoutCancel(ctx)
	if err := p.Encodings.Append(pctx, folder, vectors); err != nil {
		return nil, fmt.Errorf("saving encodings: %w", err)
	}
	err = p.Students.Upsert(pctx, store.Student{
		FullName:         fullName,
		RegNo:            regNo,
		FolderName:       folder,
		RegistrationDate: time.Now().Format(store.DateLayout),
	}, stats.Accepted)
	if err != nil {
		return nil, fmt.Errorf("saving student: %w", err)
	}

	result := &Result{
		SessionID:  uuid.NewString(),
		Identifier: folder,
		FullName:   fullName,
		RegNo:      regNo,
		Stats:      stats,
		ImageCount: priorCount + stats.Accepted,
	}
	log.WithFields(logrus.Fields{
		"accepted": stats.Accepted,
		"attempts": stats.TotalAttempts,
		"total":    result.ImageCount,
	}).Info("enrollment session finished")

	if captureE != nil {
		return result, fmt.Errorf("capture aborted after %d accepted frames: %w", stats.Accepted, captureE)
	}
	return result, nil
}

// inspectFrame runs the per-frame quality gates and collects the embedding
// of an accepted frame.
func (p *Pipeline) inspectFrame(frame camera.Frame, folderPath string, stats *Stats, vectors *[][]float32) {
	faces, err := p.Detector.Detect(frame.JPEG)
	if err != nil || len(faces) == 0 {
		stats.RejectedNoFace++
		return
	}

	// More than one face: use the first detected region only.
	face := faces[0]

	sharpness, err := quality.Sharpness(frame.JPEG, face.Box)
	if err != nil {
		stats.RejectedNoFace++
		return
	}
	if sharpness < p.BlurThreshold {
		stats.RejectedBlur++
		return
	}

	if len(face.Embedding) == 0 {
		stats.RejectedNoEncoding++
		return
	}

	*vectors = append(*vectors, face.Embedding)
	stats.Accepted++

	// Persist the accepted crop for audit; failure to write the image is
	// not worth losing the embedding over.
	path := filepath.Join(folderPath, fmt.Sprintf("%d.jpg", stats.Accepted))
	if err := saveCrop(frame.JPEG, face.Box, path); err != nil {
		logrus.WithError(err).Warn("could not save face crop")
	}
}

// saveCrop writes the face region of a frame as a JPEG file. Falls back
// to the full frame when the decoded image cannot be cropped.
func saveCrop(jpegData []byte, box image.Rectangle, path string) error {
	img, _, err := image.Decode(bytes.NewReader(jpegData))
	if err != nil {
		return fmt.Errorf("decoding frame: %w", err)
	}

	out := img
	if sub, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		if cropped := box.Intersect(img.Bounds()); !cropped.Empty() {
			out = sub.SubImage(cropped)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating crop file: %w", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, out, &jpeg.Options{Quality: 90}); err != nil {
		return fmt.Errorf("encoding crop: %w", err)
	}
	return nil
}
