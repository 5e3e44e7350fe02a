// Package attend runs live recognition sessions that turn camera frames
// into Present records.
package attend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/akraiem/attendance-tracker/internal/camera"
	"github.com/akraiem/attendance-tracker/internal/identity"
	"github.com/akraiem/attendance-tracker/internal/notify"
	"github.com/akraiem/attendance-tracker/internal/recognition"
	"github.com/akraiem/attendance-tracker/internal/store"
)

// Mark is one student recognized during a session.
type Mark struct {
	Identifier string `json:"identifier"`
	FullName   string `json:"full_name"`
	RegNo      string `json:"reg_no"`
	Time       string `json:"time"`
	// NewlyMarked is false when the student already had a record for the
	// day before this session started.
	NewlyMarked bool `json:"newly_marked"`
}

// Result summarizes a finished session.
type Result struct {
	SessionID       string `json:"session_id"`
	Date            string `json:"date"`
	FramesProcessed int    `json:"frames_processed"`
	FacesSeen       int    `json:"faces_seen"`
	UnknownFaces    int    `json:"unknown_faces"`
	Marks           []Mark `json:"marks"`
}

// Options configure one session.
type Options struct {
	// Duration stops the session after the given time. Zero runs until
	// the context is cancelled or the source is exhausted.
	Duration time.Duration
	// OnMark, when set, is called for every recognized student.
	OnMark func(Mark)
}

// Session recognizes students in camera frames and marks them present.
// Each student is marked at most once per session; the storage layer
// additionally enforces once per day.
type Session struct {
	Source     camera.Source
	Detector   recognition.Detector
	Matcher    *recognition.Matcher
	Attendance store.Attendance
	Notifier   notify.Notifier

	// Now is overridable in tests.
	Now func() time.Time
}

// Run processes frames until the duration elapses, the context is
// cancelled or the source runs out. Camera read failures abort the
// session; students marked before the failure keep their records.
func (s *Session) Run(ctx context.Context, opts Options) (*Result, error) {
	now := s.Now
	if now == nil {
		now = time.Now
	}
	if opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	result := &Result{
		SessionID: uuid.NewString(),
		Date:      now().Format(store.DateLayout),
	}
	log := logrus.WithField("session", result.SessionID[:8])
	log.Info("recognition session started")

	// One mark per identifier per session.
	seen := map[string]bool{}

	for {
		if ctx.Err() != nil {
			break
		}
		frame, err := s.Source.NextFrame(ctx)
		if errors.Is(err, camera.ErrNoMoreFrames) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}
		if err != nil {
			log.WithError(err).Error("camera read failed")
			return result, fmt.Errorf("reading frame: %w", err)
		}

		result.FramesProcessed++

		faces, err := s.Detector.Detect(frame.JPEG)
		if err != nil {
			// A frame that cannot be decoded is skipped, not fatal.
			log.WithError(err).Debug("frame skipped")
			continue
		}

		for _, face := range faces {
			result.FacesSeen++
			match, ok := s.Matcher.Classify(face.Embedding)
			if !ok {
				result.UnknownFaces++
				continue
			}
			if seen[match.Identifier] {
				continue
			}
			seen[match.Identifier] = true

			mark, err := s.mark(ctx, match.Identifier, now())
			if err != nil {
				return result, err
			}
			result.Marks = append(result.Marks, *mark)
			if opts.OnMark != nil {
				opts.OnMark(*mark)
			}
		}
	}

	log.WithFields(logrus.Fields{
		"frames":  result.FramesProcessed,
		"marked":  len(result.Marks),
		"unknown": result.UnknownFaces,
	}).Info("recognition session finished")
	return result, nil
}

// mark writes the Present record and sends the confirmation. Notification
// failures are logged and never undo the attendance write.
func (s *Session) mark(ctx context.Context, identifier string, at time.Time) (*Mark, error) {
	fullName, regNo := identity.Split(identifier)
	mark := Mark{
		Identifier: identifier,
		FullName:   fullName,
		RegNo:      regNo,
		Time:       at.Format(store.TimeLayout),
	}

	written, err := s.Attendance.MarkPresent(ctx, fullName, regNo, at.Format(store.DateLayout), mark.Time)
	if err != nil {
		return nil, fmt.Errorf("marking %s present: %w", fullName, err)
	}
	mark.NewlyMarked = written

	log := logrus.WithFields(logrus.Fields{"student": identifier, "new": written})
	log.Info("student recognized")

	if written && s.Notifier != nil {
		if err := s.Notifier.NotifyPresent(ctx, fullName, regNo); err != nil {
			log.WithError(err).Warn("confirmation email failed")
		}
	}
	return &mark, nil
}
