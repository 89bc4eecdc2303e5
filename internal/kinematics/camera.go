package kinematics

import (
	"math"

	"github.com/courtside-data/stroke.report/internal/pose"
)

// ViewType classifies the camera's viewing angle relative to the player.
type ViewType string

const (
	ViewFrontOrBack  ViewType = "front_or_back"
	ViewSide         ViewType = "side"
	ViewAngled       ViewType = "angled"
	ViewExtremeSide  ViewType = "extreme_side"
	ViewUndetermined ViewType = "undetermined"
)

// CameraView is an estimate of the camera angle derived from the
// shoulder line. extreme_side views overlap the shoulders so badly that
// rotation metrics become meaningless.
type CameraView struct {
	ShoulderAngleDeg    float64
	ShoulderWidthNorm   float64
	DepthDifference     float64
	View                ViewType
	SuitableForAnalysis bool
}

// EstimateCameraView estimates the viewing angle from one frame of
// joints. View is ViewUndetermined when the shoulders are not visible.
func EstimateCameraView(joints *pose.Joints) CameraView {
	if !joints.AllVisible(pose.LeftShoulder, pose.RightShoulder) {
		return CameraView{View: ViewUndetermined}
	}

	ls := joints[pose.LeftShoulder]
	rs := joints[pose.RightShoulder]

	dx := rs.X - ls.X
	dy := rs.Y - ls.Y
	width := math.Sqrt(dx*dx + dy*dy)
	angle := math.Abs(math.Atan2(dy, dx) * 180 / math.Pi)
	dz := math.Abs(rs.Z - ls.Z)

	view := ViewSide
	switch {
	case width < 0.05:
		view = ViewExtremeSide
	case dz > 0.1:
		view = ViewAngled
	case angle < 20:
		view = ViewFrontOrBack
	}

	return CameraView{
		ShoulderAngleDeg:    angle,
		ShoulderWidthNorm:   width,
		DepthDifference:     dz,
		View:                view,
		SuitableForAnalysis: view != ViewExtremeSide,
	}
}
