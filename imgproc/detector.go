package imgproc

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/veendy/blink-counter/blink"
)

var (
	ErrCascadeLoad = errors.New("could not load cascade")
	ErrEmptyFrame  = errors.New("empty frame")
)

// Detector finds faces in a grayscale frame and eyes in a face region
type Detector interface {
	DetectFaces(gray gocv.Mat) []image.Rectangle
	DetectEyes(face gocv.Mat) []image.Rectangle
}

// CascadeDetector runs two Haar cascades, one for faces and one for eyes
type CascadeDetector struct {
	face    gocv.CascadeClassifier
	eye     gocv.CascadeClassifier
	faceCfg CascadeParams
	eyeCfg  CascadeParams
}

// NewCascadeDetector loads the face and eye classifiers from cfg
func NewCascadeDetector(cfg Config) (*CascadeDetector, error) {
	face := gocv.NewCascadeClassifier()
	if !face.Load(cfg.Face.Path) {
		face.Close()
		return nil, fmt.Errorf("%w: %s", ErrCascadeLoad, cfg.Face.Path)
	}

	eye := gocv.NewCascadeClassifier()
	if !eye.Load(cfg.Eye.Path) {
		face.Close()
		eye.Close()
		return nil, fmt.Errorf("%w: %s", ErrCascadeLoad, cfg.Eye.Path)
	}

	return &CascadeDetector{face: face, eye: eye, faceCfg: cfg.Face, eyeCfg: cfg.Eye}, nil
}

func (d *CascadeDetector) DetectFaces(gray gocv.Mat) []image.Rectangle {
	return d.face.DetectMultiScaleWithParams(gray, d.faceCfg.ScaleFactor, d.faceCfg.MinNeighbors, 0, d.faceCfg.MinSize, image.Point{})
}

func (d *CascadeDetector) DetectEyes(face gocv.Mat) []image.Rectangle {
	return d.eye.DetectMultiScaleWithParams(face, d.eyeCfg.ScaleFactor, d.eyeCfg.MinNeighbors, 0, d.eyeCfg.MinSize, image.Point{})
}

func (d *CascadeDetector) Close() error {
	d.face.Close()
	d.eye.Close()
	return nil
}

// Detection is what was found in one frame. Eye rectangles are in frame coordinates.
type Detection struct {
	Face  image.Rectangle
	Eyes  []image.Rectangle
	Found bool
}

// Observation converts the detection to debouncer input
func (d Detection) Observation() blink.Observation {
	return blink.Observation{FaceDetected: d.Found, EyeCount: len(d.Eyes)}
}

// SelectFace picks the face to track. Haar cascades report no score, so the
// largest face wins; ties go to the first one.
func SelectFace(faces []image.Rectangle) (image.Rectangle, bool) {
	if len(faces) == 0 {
		return image.Rectangle{}, false
	}

	best := faces[0]
	for _, f := range faces[1:] {
		if area(f) > area(best) {
			best = f
		}
	}
	return best, true
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}

// Detect finds the largest face in gray and the eyes inside it
func Detect(det Detector, gray gocv.Mat) (Detection, error) {
	if gray.Empty() {
		return Detection{}, ErrEmptyFrame
	}

	bounds := image.Rect(0, 0, gray.Cols(), gray.Rows())
	face, ok := SelectFace(det.DetectFaces(gray))
	if !ok {
		return Detection{}, nil
	}
	face = face.Intersect(bounds)
	if face.Empty() {
		return Detection{}, nil
	}

	roi := gray.Region(face)
	defer roi.Close()

	eyes := det.DetectEyes(roi)
	return Detection{Face: face, Eyes: ToFrame(face, eyes), Found: true}, nil
}

// ToFrame translates rectangles relative to a face region into frame coordinates
func ToFrame(face image.Rectangle, rects []image.Rectangle) []image.Rectangle {
	out := make([]image.Rectangle, len(rects))
	for i, r := range rects {
		out[i] = r.Add(face.Min)
	}
	return out
}

// Preprocess converts a BGR frame to a smoothed grayscale image
func Preprocess(frame gocv.Mat, gray *gocv.Mat, cfg Config) {
	gocv.CvtColor(frame, gray, gocv.ColorBGRToGray)

	if cfg.FilterD <= 0 {
		return
	}
	smoothed := gocv.NewMat()
	defer smoothed.Close()
	gocv.BilateralFilter(*gray, &smoothed, cfg.FilterD, cfg.FilterSigma, cfg.FilterSigma)
	smoothed.CopyTo(gray)
}
