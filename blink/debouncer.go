// Package blink turns a per-frame eye count into discrete blink events.
package blink

// State is the debounce state of a Debouncer.
type State int

const (
	EyesOpen   State = iota // Initial state, eyes seen or not yet observed
	EyesClosed              // Eyes disappeared, a blink was already counted
)

func (s State) String() string {
	switch s {
	case EyesOpen:
		return "open"
	case EyesClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Observation is what the detector saw in one frame
type Observation struct {
	FaceDetected bool
	EyeCount     int
}

// Signal classifies an observation's eye count.
type Signal int

const (
	Closed    Signal = iota // No eyes in the face region
	Open                    // Both eyes found
	Ambiguous               // One eye or more than two; ignored
)

// Classify maps an eye count to a Signal.
// Partial detections are left ambiguous instead of guessing whether the eye is closed.
func Classify(eyeCount int) Signal {
	switch eyeCount {
	case 0:
		return Closed
	case 2:
		return Open
	default:
		return Ambiguous
	}
}

// Event is fired once per counted blink.
type Event struct {
	Count int
}

// Debouncer counts blinks. It is not safe for concurrent use; one instance
// belongs to one frame loop.
type Debouncer struct {
	state State
	count int
}

// New returns a Debouncer in the EyesOpen state with a zero count.
func New() *Debouncer {
	return &Debouncer{state: EyesOpen}
}

// Update feeds one frame and returns the current count and whether a blink fired.
func (d *Debouncer) Update(faceDetected bool, eyeCount int) (int, bool) {
	if !faceDetected {
		return d.count, false
	}

	switch Classify(eyeCount) {
	case Closed:
		if d.state == EyesClosed {
			return d.count, false
		}
		d.count++
		d.state = EyesClosed
		return d.count, true
	case Open:
		d.state = EyesOpen
	}

	return d.count, false
}

// Observe is Update for an Observation. The returned Event is only meaningful when fired is true.
func (d *Debouncer) Observe(obs Observation) (Event, bool) {
	count, fired := d.Update(obs.FaceDetected, obs.EyeCount)
	return Event{Count: count}, fired
}

// Count returns the number of blinks counted so far
func (d *Debouncer) Count() int { return d.count }

// State returns the current debounce state
func (d *Debouncer) State() State { return d.state }
