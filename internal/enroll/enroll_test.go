package enroll

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/akraiem/attendance-tracker/internal/camera"
	"github.com/akraiem/attendance-tracker/internal/encodings"
	"github.com/akraiem/attendance-tracker/internal/recognition"
	"github.com/akraiem/attendance-tracker/internal/store"
	"github.com/akraiem/attendance-tracker/internal/store/mock"
)

func sharpJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if (x+y)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return encodeJPEG(t, img)
}

func blurryJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetGray(x, y, color.Gray{Y: 128})
		}
	}
	return encodeJPEG(t, img)
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("encoding jpeg: %v", err)
	}
	return buf.Bytes()
}

type fakeSource struct {
	frames [][]byte
	err    error
}

func (s *fakeSource) NextFrame(ctx context.Context) (camera.Frame, error) {
	if len(s.frames) == 0 {
		if s.err != nil {
			return camera.Frame{}, s.err
		}
		return camera.Frame{}, camera.ErrNoMoreFrames
	}
	data := s.frames[0]
	s.frames = s.frames[1:]
	return camera.Frame{JPEG: data, Timestamp: time.Now()}, nil
}

func (s *fakeSource) Close() error { return nil }

// scriptDetector returns one scripted response per call, then no faces.
type scriptDetector struct {
	responses [][]recognition.DetectedFace
}

func (d *scriptDetector) Detect(jpegData []byte) ([]recognition.DetectedFace, error) {
	if len(d.responses) == 0 {
		return nil, nil
	}
	faces := d.responses[0]
	d.responses = d.responses[1:]
	return faces, nil
}

func (d *scriptDetector) Close() error { return nil }

func face(embedding []float32) []recognition.DetectedFace {
	return []recognition.DetectedFace{{Box: image.Rect(0, 0, 64, 64), Embedding: embedding}}
}

func embedding(fill float32) []float32 {
	v := make([]float32, recognition.Dim)
	for i := range v {
		v[i] = fill
	}
	return v
}

func newPipeline(t *testing.T, src camera.Source, det recognition.Detector, st *mock.Store) (*Pipeline, string) {
	t.Helper()
	dir := t.TempDir()
	enc, err := encodings.NewFileStore(filepath.Join(dir, "encodings"))
	if err != nil {
		t.Fatalf("creating encodings store: %v", err)
	}
	return &Pipeline{
		Source:        src,
		Detector:      det,
		Encodings:     enc,
		Students:      st.Students(),
		DatasetDir:    filepath.Join(dir, "dataset"),
		BlurThreshold: 100,
	}, dir
}

func TestRunAcceptsSharpFramesAndPersists(t *testing.T) {
	sharp := sharpJPEG(t)
	src := &fakeSource{frames: [][]byte{sharp, sharp}}
	det := &scriptDetector{responses: [][]recognition.DetectedFace{
		face(embedding(0.1)),
		face(embedding(0.2)),
	}}
	st := mock.New()
	p, dir := newPipeline(t, src, det, st)

	res, err := p.Run(context.Background(), Options{
		FullName:     "Amal Omar Khalid",
		RegNo:        "2021001",
		TargetImages: 2,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Identifier != "amal_omar_khalid_2021001" {
		t.Fatalf("identifier = %q", res.Identifier)
	}
	if res.Stats.Accepted != 2 || res.Stats.TotalAttempts != 2 {
		t.Fatalf("stats = %+v", res.Stats)
	}
	if res.ImageCount != 2 {
		t.Fatalf("image count = %d, want 2", res.ImageCount)
	}

	s, err := st.Students().GetByRegNo(context.Background(), "2021001")
	if err != nil {
		t.Fatalf("GetByRegNo: %v", err)
	}
	if s.ImageCount != 2 || s.FolderName != res.Identifier {
		t.Fatalf("student = %+v", s)
	}

	vectors, err := p.Encodings.Load(context.Background(), res.Identifier)
	if err != nil {
		t.Fatalf("loading encodings: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("stored %d vectors, want 2", len(vectors))
	}

	crops, err := os.ReadDir(filepath.Join(dir, "dataset", res.Identifier))
	if err != nil {
		t.Fatalf("reading dataset dir: %v", err)
	}
	if len(crops) != 2 {
		t.Fatalf("saved %d crops, want 2", len(crops))
	}
}

func TestRunCountsRejections(t *testing.T) {
	sharp := sharpJPEG(t)
	blurry := blurryJPEG(t)
	src := &fakeSource{frames: [][]byte{sharp, blurry, sharp, sharp}}
	det := &scriptDetector{responses: [][]recognition.DetectedFace{
		nil,                  // no face
		face(embedding(0.1)), // blurry frame
		face(nil),            // no embedding
		face(embedding(0.3)), // accepted
	}}
	st := mock.New()
	p, _ := newPipeline(t, src, det, st)

	res, err := p.Run(context.Background(), Options{
		FullName:     "Amal Omar Khalid",
		RegNo:        "2021001",
		TargetImages: 1,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := Stats{TotalAttempts: 4, Accepted: 1, RejectedNoFace: 1, RejectedBlur: 1, RejectedNoEncoding: 1}
	if res.Stats != want {
		t.Fatalf("stats = %+v, want %+v", res.Stats, want)
	}
}

func TestRunZeroAcceptedWritesNothing(t *testing.T) {
	src := &fakeSource{frames: [][]byte{sharpJPEG(t)}}
	det := &scriptDetector{} // never detects a face
	st := mock.New()
	p, dir := newPipeline(t, src, det, st)

	_, err := p.Run(context.Background(), Options{
		FullName:     "Amal Omar Khalid",
		RegNo:        "2021001",
		TargetImages: 3,
	})
	if !errors.Is(err, ErrNoEncodings) {
		t.Fatalf("err = %v, want ErrNoEncodings", err)
	}
	if _, err := st.Students().GetByRegNo(context.Background(), "2021001"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("student row written on empty session")
	}
	if _, err := p.Encodings.Load(context.Background(), "amal_omar_khalid_2021001"); !errors.Is(err, encodings.ErrNotFound) {
		t.Fatalf("encodings written on empty session")
	}
	_ = dir
}

func TestRunRegNoConflictRejectsBeforeCapture(t *testing.T) {
	st := mock.New()
	if err := st.Students().Upsert(context.Background(), store.Student{
		FullName:         "sara ali hassan",
		RegNo:            "2021001",
		FolderName:       "sara_ali_hassan_2021001",
		RegistrationDate: "2026-01-10",
	}, 5); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	src := &fakeSource{frames: [][]byte{sharpJPEG(t)}}
	det := &scriptDetector{responses: [][]recognition.DetectedFace{face(embedding(0.1))}}
	p, _ := newPipeline(t, src, det, st)

	_, err := p.Run(context.Background(), Options{
		FullName:     "Amal Omar Khalid",
		RegNo:        "2021001",
		TargetImages: 1,
	})
	if !errors.Is(err, ErrRegNoConflict) {
		t.Fatalf("err = %v, want ErrRegNoConflict", err)
	}
	if len(src.frames) != 1 {
		t.Fatalf("capture ran despite conflict")
	}
}

func TestRunReEnrollmentNeedsConfirm(t *testing.T) {
	st := mock.New()
	if err := st.Students().Upsert(context.Background(), store.Student{
		FullName:         "amal omar khalid",
		RegNo:            "2021001",
		FolderName:       "amal_omar_khalid_2021001",
		RegistrationDate: "2026-01-10",
	}, 5); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	opts := Options{
		FullName:     "Amal Omar Khalid",
		RegNo:        "2021001",
		TargetImages: 1,
	}

	src := &fakeSource{frames: [][]byte{sharpJPEG(t)}}
	det := &scriptDetector{responses: [][]recognition.DetectedFace{face(embedding(0.1))}}
	p, _ := newPipeline(t, src, det, st)

	if _, err := p.Run(context.Background(), opts); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("err = %v, want ErrAlreadyRegistered", err)
	}

	opts.Confirm = true
	res, err := p.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("confirmed re-enrollment: %v", err)
	}
	if res.ImageCount != 6 {
		t.Fatalf("image count = %d, want 6", res.ImageCount)
	}
	s, _ := st.Students().GetByRegNo(context.Background(), "2021001")
	if s.ImageCount != 6 {
		t.Fatalf("registry image count = %d, want 6", s.ImageCount)
	}
	if s.RegistrationDate != "2026-01-10" {
		t.Fatalf("registration date changed to %q", s.RegistrationDate)
	}
}

func TestRunValidation(t *testing.T) {
	p, _ := newPipeline(t, &fakeSource{}, &scriptDetector{}, mock.New())

	cases := []struct {
		name string
		opts Options
	}{
		{"two name tokens", Options{FullName: "Amal Omar", RegNo: "1", TargetImages: 1}},
		{"empty reg no", Options{FullName: "Amal Omar Khalid", RegNo: "  ", TargetImages: 1}},
		{"zero images", Options{FullName: "Amal Omar Khalid", RegNo: "1", TargetImages: 0}},
		{"too many images", Options{FullName: "Amal Omar Khalid", RegNo: "1", TargetImages: MaxTargetImages + 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := p.Run(context.Background(), tc.opts); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestRunCameraFailureKeepsAcceptedFrames(t *testing.T) {
	src := &fakeSource{frames: [][]byte{sharpJPEG(t)}, err: camera.ErrCameraUnavailable}
	det := &scriptDetector{responses: [][]recognition.DetectedFace{face(embedding(0.1))}}
	st := mock.New()
	p, _ := newPipeline(t, src, det, st)

	res, err := p.Run(context.Background(), Options{
		FullName:     "Amal Omar Khalid",
		RegNo:        "2021001",
		TargetImages: 3,
	})
	if !errors.Is(err, camera.ErrCameraUnavailable) {
		t.Fatalf("err = %v, want camera failure", err)
	}
	if res == nil || res.Stats.Accepted != 1 {
		t.Fatalf("result = %+v", res)
	}
	if s, err := st.Students().GetByRegNo(context.Background(), "2021001"); err != nil || s.ImageCount != 1 {
		t.Fatalf("accepted frame not persisted: %v %+v", err, s)
	}
}
