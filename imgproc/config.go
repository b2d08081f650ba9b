package imgproc

import "image"

// CascadeParams are the detectMultiScale parameters for one classifier
type CascadeParams struct {
	Path         string      // Haar cascade XML
	ScaleFactor  float64     // Image pyramid step
	MinNeighbors int         // Candidate rectangles needed to keep a detection
	MinSize      image.Point // Smallest object size in pixels
}

type Config struct {
	CameraID    int           // Capture device index
	Face        CascadeParams // Face classifier
	Eye         CascadeParams // Eye classifier, run inside the selected face
	FilterD     int           // Bilateral filter diameter
	FilterSigma float64       // Bilateral filter sigma, used for color and space
	ShowGUI     bool          // Show window with live visuals or not
	WindowTitle string        // Window name when ShowGUI is set
	Topic       string        // Topic blink events are published to
	PayloadFmt  string        // Payload format, receives the blink count
}

// DefaultConfig returns the detector parameters tuned for a webcam at arm's length
func DefaultConfig() Config {
	return Config{
		CameraID: 0,
		Face: CascadeParams{
			ScaleFactor:  1.3,
			MinNeighbors: 5,
			MinSize:      image.Pt(200, 200),
		},
		Eye: CascadeParams{
			ScaleFactor:  1.3,
			MinNeighbors: 5,
			MinSize:      image.Pt(20, 20),
		},
		FilterD:     5,
		FilterSigma: 1,
		ShowGUI:     true,
		WindowTitle: "Face Detection",
		Topic:       "htmtfunas/97921921312/test",
	}
}
