package camera

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// HTTPSource reads frames from an IP camera over HTTP. Both MJPEG streams
// (multipart/x-mixed-replace) and plain snapshot endpoints that return one
// JPEG per request are supported; the mode is picked from the Content-Type
// of the first response.
type HTTPSource struct {
	url    string
	client *http.Client

	reader *multipart.Reader
	body   io.Closer
}

// NewHTTPSource connects to the camera URL and prepares the stream.
func NewHTTPSource(ctx context.Context, url string) (*HTTPSource, error) {
	s := &HTTPSource{
		url: url,
		client: &http.Client{
			// No overall timeout: MJPEG responses never complete.
			Transport: &http.Transport{ResponseHeaderTimeout: 10 * time.Second},
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create camera request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: camera returned status %d", ErrCameraUnavailable, resp.StatusCode)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err == nil && strings.HasPrefix(mediaType, "multipart/") {
		s.reader = multipart.NewReader(resp.Body, params["boundary"])
		s.body = resp.Body
		return s, nil
	}

	// Snapshot endpoint: consume this response as the first frame source
	// and re-request per frame.
	resp.Body.Close()
	return s, nil
}

// NextFrame returns the next JPEG frame from the stream, or fetches a fresh
// snapshot for non-streaming cameras.
func (s *HTTPSource) NextFrame(ctx context.Context) (Frame, error) {
	if s.reader != nil {
		part, err := s.reader.NextPart()
		if err != nil {
			return Frame{}, fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return Frame{}, fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
		}
		return Frame{JPEG: data, Timestamp: time.Now()}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return Frame{}, fmt.Errorf("could not create snapshot request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Frame{}, fmt.Errorf("%w: camera returned status %d", ErrCameraUnavailable, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}
	return Frame{JPEG: data, Timestamp: time.Now()}, nil
}

// Close shuts down the underlying stream, if any.
func (s *HTTPSource) Close() error {
	if s.body != nil {
		return s.body.Close()
	}
	return nil
}
