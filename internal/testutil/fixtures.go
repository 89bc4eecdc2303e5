package testutil

import (
	"math"

	"github.com/courtside-data/stroke.report/internal/pose"
)

// FrameIntervalMs is the synthetic frame spacing (30 fps).
const FrameIntervalMs = 33

// StandingJoints returns a plausible right-handed ready position in
// normalized image coordinates: all the joints the metric extractors
// need, fully visible.
func StandingJoints() pose.Joints {
	var j pose.Joints
	set := func(idx int, x, y float64) {
		j[idx] = pose.Landmark{X: x, Y: y, Visibility: 1.0}
	}
	set(pose.Nose, 0.50, 0.20)
	set(pose.LeftShoulder, 0.42, 0.35)
	set(pose.RightShoulder, 0.58, 0.35)
	set(pose.LeftElbow, 0.38, 0.45)
	set(pose.RightElbow, 0.64, 0.45)
	set(pose.LeftWrist, 0.40, 0.52)
	set(pose.RightWrist, 0.66, 0.52)
	set(pose.LeftHip, 0.45, 0.58)
	set(pose.RightHip, 0.55, 0.58)
	set(pose.LeftKnee, 0.44, 0.76)
	set(pose.RightKnee, 0.56, 0.76)
	set(pose.LeftAnkle, 0.43, 0.94)
	set(pose.RightAnkle, 0.57, 0.94)
	return j
}

// JointsWithElbowAngle returns standing joints with the right arm posed
// so the shoulder-elbow-wrist angle equals deg.
func JointsWithElbowAngle(deg float64) pose.Joints {
	j := StandingJoints()
	s := j[pose.RightShoulder]
	e := pose.Landmark{X: s.X + 0.06, Y: s.Y + 0.10, Visibility: 1.0}
	j[pose.RightElbow] = e

	// Rotate the elbow->shoulder direction by deg to place the wrist.
	toShoulder := math.Atan2(s.Y-e.Y, s.X-e.X)
	wristDir := toShoulder + deg*math.Pi/180
	forearm := 0.12
	j[pose.RightWrist] = pose.Landmark{
		X:          e.X + forearm*math.Cos(wristDir),
		Y:          e.Y + forearm*math.Sin(wristDir),
		Visibility: 1.0,
	}
	return j
}

// StrokeScript describes a synthetic right-handed stroke as per-phase
// frame counts and kinematic targets. Build turns it into an enriched
// frame sequence suitable for the detector, segmenter, and analyzers
// without running the estimation stages.
type StrokeScript struct {
	PrepFrames   int
	LoadFrames   int
	AccelFrames  int
	FollowFrames int

	StillVelocity float64 // velocity during preparation and loading
	PeakVelocity  float64 // velocity at the contact frame
	PeakAccel     float64 // acceleration through the swing
	RotationGain  float64 // degrees of body rotation gained while loading
	ContactElbow  float64 // elbow angle at contact; 0 means leave default
	StartMs       int64
}

// DefaultStrokeScript is a comfortable forehand under default-scale
// thresholds divided by ~16 (the synthetic profiles used in tests).
func DefaultStrokeScript() StrokeScript {
	return StrokeScript{
		PrepFrames:    8,
		LoadFrames:    8,
		AccelFrames:   8,
		FollowFrames:  12,
		StillVelocity: 0.01,
		PeakVelocity:  0.06,
		PeakAccel:     0.5,
		RotationGain:  20,
		ContactElbow:  140,
		StartMs:       1000,
	}
}

// Build produces the enriched frame sequence. The contact frame index is
// PrepFrames+LoadFrames+AccelFrames.
func (s StrokeScript) Build() []pose.Frame {
	total := s.PrepFrames + s.LoadFrames + s.AccelFrames + 1 + s.FollowFrames
	frames := make([]pose.Frame, 0, total)
	ts := s.StartMs
	contactIdx := s.PrepFrames + s.LoadFrames + s.AccelFrames

	for i := 0; i < total; i++ {
		f := pose.Frame{
			TimestampMs: ts,
			Joints:      StandingJoints(),
			Normalized:  true,
		}

		switch {
		case i < s.PrepFrames:
			f.VelocityMag = s.StillVelocity
			f.BodyRotation = 0

		case i < s.PrepFrames+s.LoadFrames:
			// Coiling: velocity stays quiet, rotation builds.
			prog := float64(i-s.PrepFrames+1) / float64(s.LoadFrames)
			f.VelocityMag = s.StillVelocity
			f.BodyRotation = s.RotationGain * prog

		case i < contactIdx:
			// Forward swing: velocity ramps to the peak.
			prog := float64(i-s.PrepFrames-s.LoadFrames+1) / float64(s.AccelFrames)
			f.VelocityMag = s.StillVelocity + (s.PeakVelocity-s.StillVelocity)*prog
			f.AccelMag = s.PeakAccel
			f.BodyRotation = s.RotationGain
			f.VelocityX = f.VelocityMag

		case i == contactIdx:
			f.VelocityMag = s.PeakVelocity
			f.AccelMag = s.PeakAccel
			f.BodyRotation = s.RotationGain
			f.VelocityX = f.VelocityMag
			if s.ContactElbow > 0 {
				f.Joints = JointsWithElbowAngle(s.ContactElbow)
			}

		default:
			// Decay after contact.
			prog := float64(i-contactIdx) / float64(s.FollowFrames)
			f.VelocityMag = s.PeakVelocity * math.Max(0, 1-prog)
			f.BodyRotation = s.RotationGain
			f.VelocityX = f.VelocityMag
		}

		enrichScriptFrame(&f)
		frames = append(frames, f)
		ts += FrameIntervalMs
	}
	return frames
}

// ContactIndex returns the index the script placed the contact frame at.
func (s StrokeScript) ContactIndex() int {
	return s.PrepFrames + s.LoadFrames + s.AccelFrames
}

// enrichScriptFrame fills the derived pointer metrics the analyzers read
// from scripted joints.
func enrichScriptFrame(f *pose.Frame) {
	j := &f.Joints
	if j.AllVisible(pose.RightShoulder, pose.RightElbow, pose.RightWrist) {
		f.ElbowAngle = pose.Float64Ptr(pose.AngleAt((*j)[pose.RightShoulder], (*j)[pose.RightElbow], (*j)[pose.RightWrist]))
	}
	if j.AllVisible(pose.LeftHip, pose.RightHip) {
		mid := pose.Midpoint((*j)[pose.LeftHip], (*j)[pose.RightHip])
		f.HipHeight = pose.Float64Ptr(mid.Y)
		hipAngle := pose.LineAngle((*j)[pose.LeftHip], (*j)[pose.RightHip])
		f.HipShoulderSep = pose.Float64Ptr(math.Abs(f.BodyRotation - hipAngle))
	}
	if j.Visible(pose.RightWrist) {
		f.WristHeight = pose.Float64Ptr((*j)[pose.RightWrist].Y)
		f.WristSpeed = pose.Float64Ptr(f.VelocityMag)
	}
	if knee := kneeAngle(j); knee > 0 {
		f.KneeBend = pose.Float64Ptr(knee)
	}
}

func kneeAngle(j *pose.Joints) float64 {
	if !j.AllVisible(pose.RightHip, pose.RightKnee, pose.RightAnkle) {
		return 0
	}
	return pose.AngleAt((*j)[pose.RightHip], (*j)[pose.RightKnee], (*j)[pose.RightAnkle])
}
