package imgproc

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/veendy/blink-counter/blink"
	"github.com/veendy/blink-counter/metrics"
	"github.com/veendy/blink-counter/publish"
)

var (
	ErrCameraOpen   = errors.New("could not open camera")
	ErrCameraClosed = errors.New("camera closed")
)

var (
	countColor = color.RGBA{255, 0, 0, 0}
	eyeColor   = color.RGBA{0, 255, 0, 0}
	countOrg   = image.Pt(70, 70)
)

// EventQueue receives blink events. Enqueue must not block.
type EventQueue interface {
	Enqueue(msg publish.Message) error
}

// Session counts blinks in a stream of frames
type Session struct {
	cfg       Config
	detector  Detector
	debouncer *blink.Debouncer
	events    EventQueue
	logger    logrus.FieldLogger
}

func NewSession(cfg Config, detector Detector, events EventQueue, logger logrus.FieldLogger) *Session {
	return &Session{
		cfg:       cfg,
		detector:  detector,
		debouncer: blink.New(),
		events:    events,
		logger:    logger,
	}
}

// Count returns the blinks counted so far
func (s *Session) Count() int {
	return s.debouncer.Count()
}

// Step runs detection on a preprocessed frame and feeds the debouncer.
// A failed detection counts as a frame without a face.
func (s *Session) Step(gray gocv.Mat) (Detection, bool) {
	det, err := Detect(s.detector, gray)
	switch {
	case err != nil:
		metrics.Frames.WithLabelValues(metrics.ResultError).Inc()
		s.logger.WithError(err).Warn("Detection failed, skipping frame")
		det = Detection{}
	case det.Found:
		metrics.Frames.WithLabelValues(metrics.ResultFace).Inc()
		s.logger.WithField("eyes", len(det.Eyes)).Debug("Face found")
	default:
		metrics.Frames.WithLabelValues(metrics.ResultNoFace).Inc()
	}

	ev, fired := s.debouncer.Observe(det.Observation())
	if fired {
		s.onBlink(ev)
	}
	return det, fired
}

func (s *Session) onBlink(ev blink.Event) {
	metrics.BlinkEvents.Inc()
	s.logger.WithField("count", ev.Count).Info("Blink")

	msg := publish.Message{Topic: s.cfg.Topic, Payload: publish.FormatPayload(s.cfg.PayloadFmt, ev.Count)}
	if err := s.events.Enqueue(msg); err != nil {
		s.logger.WithError(err).WithField("count", ev.Count).Warn("Blink event not queued")
	}
}

// Draw renders the face box, eyes and the blink counter onto frame
func (s *Session) Draw(frame *gocv.Mat, det Detection) {
	count := s.debouncer.Count()
	if det.Found {
		gocv.Rectangle(frame, det.Face, FaceColor(count), 3)
		for _, eye := range det.Eyes {
			gocv.Rectangle(frame, eye, eyeColor, 2)
		}
	}
	gocv.PutText(frame, fmt.Sprintf("Blinking Eyes: %d", count), countOrg, gocv.FontHersheyPlain, 3, countColor, 2)
}

// Run reads frames from the configured camera until ctx is cancelled, the
// camera stops delivering frames or `q` is pressed in the preview window.
func (s *Session) Run(ctx context.Context) error {
	webcam, err := gocv.VideoCaptureDevice(s.cfg.CameraID)
	if err != nil {
		return fmt.Errorf("%w %d: %v", ErrCameraOpen, s.cfg.CameraID, err)
	}
	defer webcam.Close()

	var window *gocv.Window
	if s.cfg.ShowGUI {
		window = gocv.NewWindow(s.cfg.WindowTitle)
		defer window.Close()
	}

	frame := gocv.NewMat()
	defer frame.Close()

	gray := gocv.NewMat()
	defer gray.Close()

	s.logger.WithField("camera", s.cfg.CameraID).Info("Capture started")

	// Frame read loop
	for {
		select {
		case <-ctx.Done():
			s.logger.WithField("count", s.Count()).Info("Stopping capture")
			return nil
		default:
		}

		if ok := webcam.Read(&frame); !ok {
			return fmt.Errorf("%w: device %d", ErrCameraClosed, s.cfg.CameraID)
		}
		if frame.Empty() {
			continue
		}

		Preprocess(frame, &gray, s.cfg)
		det, _ := s.Step(gray)

		if window == nil {
			continue
		}

		s.Draw(&frame, det)
		window.IMShow(frame)
		if key := window.WaitKey(1); key == 'q' || key == 'Q' {
			s.logger.WithField("count", s.Count()).Info("Quit requested")
			return nil
		}
	}
}
