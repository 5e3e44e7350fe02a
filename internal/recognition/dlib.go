//go:build ignore_diagnostic

package recognition

import (
	"fmt"
	"os"

	"github.com/Kagami/go-face"
	"github.com/sirupsen/logrus"
)

// DlibDetector implements Detector using dlib via go-face.
// The models directory must contain shape_predictor_5_face_landmarks.dat
// and dlib_face_recognition_resnet_model_v1.dat.
type DlibDetector struct {
	rec *face.Recognizer
}

// NewDlibDetector loads the dlib models from modelsDir.
func NewDlibDetector(modelsDir string) (*DlibDetector, error) {
	if _, err := os.Stat(modelsDir); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrModelsNotFound, modelsDir)
	}

	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("loading recognition models: %w", err)
	}

	logrus.WithField("models", modelsDir).Debug("face recognition models loaded")
	return &DlibDetector{rec: rec}, nil
}

// Detect finds all faces in a JPEG frame.
func (d *DlibDetector) Detect(jpegData []byte) ([]DetectedFace, error) {
	faces, err := d.rec.Recognize(jpegData)
	if err != nil {
		return nil, fmt.Errorf("face detection: %w", err)
	}

	result := make([]DetectedFace, len(faces))
	for i, f := range faces {
		emb := make([]float32, Dim)
		copy(emb, f.Descriptor[:])
		result[i] = DetectedFace{
			Box:       f.Rectangle,
			Embedding: emb,
		}
	}
	return result, nil
}

// Close releases the dlib recognizer.
func (d *DlibDetector) Close() error {
	if d.rec != nil {
		d.rec.Close()
		d.rec = nil
	}
	return nil
}
