// Package pose provides the landmark vocabulary, per-frame kinematic
// records, and the bounded history buffer that the stroke pipeline
// operates on.
package pose

import "math"

// Body landmark indices following the MediaPipe pose convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose          = 0
	LeftShoulder  = 11
	RightShoulder = 12
	LeftElbow     = 13
	RightElbow    = 14
	LeftWrist     = 15
	RightWrist    = 16
	LeftHip       = 23
	RightHip      = 24
	LeftKnee      = 25
	RightKnee     = 26
	LeftAnkle     = 27
	RightAnkle    = 28
	NumLandmarks  = 33
)

// VisibilityThreshold is the minimum landmark visibility for a joint to
// participate in a metric. Joints below this are treated as missing.
const VisibilityThreshold = 0.5

// Landmark is a single labelled joint observation. Coordinates are in the
// detector's normalized image space (0-1), Z is relative depth.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Visible reports whether the landmark is confident enough to use.
func (l Landmark) Visible() bool {
	return l.Visibility >= VisibilityThreshold
}

// Joints is one frame's worth of labelled landmarks.
type Joints [NumLandmarks]Landmark

// Visible reports whether the joint at idx is usable.
func (j *Joints) Visible(idx int) bool {
	return idx >= 0 && idx < NumLandmarks && j[idx].Visible()
}

// AllVisible reports whether every listed joint is usable.
func (j *Joints) AllVisible(idxs ...int) bool {
	for _, i := range idxs {
		if !j.Visible(i) {
			return false
		}
	}
	return true
}

// Distance returns the 2D Euclidean distance between two landmarks.
func Distance(a, b Landmark) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Midpoint returns the 2D midpoint of two landmarks.
func Midpoint(a, b Landmark) Landmark {
	return Landmark{
		X:          (a.X + b.X) / 2,
		Y:          (a.Y + b.Y) / 2,
		Z:          (a.Z + b.Z) / 2,
		Visibility: math.Min(a.Visibility, b.Visibility),
	}
}

// AngleAt returns the angle in degrees at vertex b formed by segments
// b→a and b→c. Returns 0 for degenerate (zero-length) segments.
func AngleAt(a, b, c Landmark) float64 {
	v1x, v1y := a.X-b.X, a.Y-b.Y
	v2x, v2y := c.X-b.X, c.Y-b.Y

	n1 := math.Sqrt(v1x*v1x + v1y*v1y)
	n2 := math.Sqrt(v2x*v2x + v2y*v2y)
	if n1 < 1e-10 || n2 < 1e-10 {
		return 0
	}

	cos := (v1x*v2x + v1y*v2y) / (n1 * n2)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// LineAngle returns the angle in degrees of the line from a to b,
// measured from the positive X axis.
func LineAngle(a, b Landmark) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi
}

// TorsoLength returns the shoulder-midpoint to hip-midpoint distance,
// the body-relative length reference used for normalization. Returns
// false when any of the four torso joints is below the visibility
// threshold.
func TorsoLength(j *Joints) (float64, bool) {
	if !j.AllVisible(LeftShoulder, RightShoulder, LeftHip, RightHip) {
		return 0, false
	}
	shoulderMid := Midpoint(j[LeftShoulder], j[RightShoulder])
	hipMid := Midpoint(j[LeftHip], j[RightHip])
	return Distance(shoulderMid, hipMid), true
}

// ShoulderWidth returns the left-to-right shoulder distance, used to
// sanity-check the torso reference. Returns false when either shoulder
// is below the visibility threshold.
func ShoulderWidth(j *Joints) (float64, bool) {
	if !j.AllVisible(LeftShoulder, RightShoulder) {
		return 0, false
	}
	return Distance(j[LeftShoulder], j[RightShoulder]), true
}
