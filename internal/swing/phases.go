package swing

import (
	"math"

	"github.com/courtside-data/stroke.report/internal/config"
	"github.com/courtside-data/stroke.report/internal/pose"
)

// Phase analyzer thresholds. Values are body-relative where kinematic,
// degrees where angular, and normalized image units where positional.
const (
	earlyShoulderTurnDeg   = 5.0
	loadingRotationTarget  = 15.0
	hipShoulderSepTarget   = 20.0
	forwardHipShiftMin     = 0.02
	wristLeadMin           = 0.03
	contactRotationMin     = 8.0
	splitStepDipMin        = 0.008
	jerkSmoothCeiling      = 30.0
	wrapFinishWidthFactor  = 1.5
	balanceCenterTolerance = 0.15
	decelBackslideRatioMax = 0.3
)

// analyzer scores the five phases of a segmented stroke. Each phase
// scorer inspects only its own frame slice and returns a 0-100 score
// plus human-readable issues; an empty issue list means the phase looked
// good.
type analyzer struct {
	cfg  *config.TuningConfig
	hand string // config.HandLeft or config.HandRight
}

func newAnalyzer(cfg *config.TuningConfig, hand string) *analyzer {
	return &analyzer{cfg: cfg, hand: hand}
}

// Dominant-side joint indices for the configured hand.
func (a *analyzer) wrist() int {
	if a.hand == config.HandLeft {
		return pose.LeftWrist
	}
	return pose.RightWrist
}

func (a *analyzer) shoulder() int {
	if a.hand == config.HandLeft {
		return pose.LeftShoulder
	}
	return pose.RightShoulder
}

func (a *analyzer) oppositeShoulder() int {
	if a.hand == config.HandLeft {
		return pose.RightShoulder
	}
	return pose.LeftShoulder
}

func (a *analyzer) backAnkle() int {
	if a.hand == config.HandLeft {
		return pose.LeftAnkle
	}
	return pose.RightAnkle
}

// AnalyzePreparation rewards early stillness, a detectable split-step,
// and an early shoulder turn.
func (a *analyzer) AnalyzePreparation(frames []pose.Frame, iv Interval) PhaseScore {
	score := 100.0
	var issues []string
	if iv.Len() <= 0 {
		return PhaseScore{Score: 0, Issues: []string{"preparation window empty"}}
	}
	window := frames[iv.Start:iv.End]

	// Early stillness: a good ready position is quiet.
	var meanVel float64
	for _, f := range window {
		meanVel += f.VelocityMag
	}
	meanVel /= float64(len(window))
	if meanVel > a.cfg.GetReadyThreshold()*1.5 {
		score -= 30
		issues = append(issues, "still moving during preparation; get set earlier")
	}

	// Split-step: hip height dips (body lowers) and rises back inside
	// the window. Image Y grows downward, so the dip is a local maximum.
	if !a.detectSplitStep(window) {
		score -= 30
		issues = append(issues, "no split-step detected before the stroke")
	}

	// Early shoulder turn.
	first := math.Abs(window[0].BodyRotation)
	last := math.Abs(window[len(window)-1].BodyRotation)
	if last-first < earlyShoulderTurnDeg {
		score -= 25
		issues = append(issues, "shoulders turned late; start the unit turn during preparation")
	}

	return PhaseScore{Score: clampScore(score), Issues: issues}
}

func (a *analyzer) detectSplitStep(window []pose.Frame) bool {
	// Need the hip height signal through the window.
	firstH, lastH := -1.0, -1.0
	peakH := -1.0
	peakIdx := -1
	for i, f := range window {
		if f.HipHeight == nil {
			continue
		}
		h := *f.HipHeight
		if firstH < 0 {
			firstH = h
		}
		lastH = h
		if h > peakH {
			peakH = h
			peakIdx = i
		}
	}
	if firstH < 0 || peakIdx <= 0 || peakIdx >= len(window)-1 {
		return false
	}
	return peakH-firstH >= splitStepDipMin && peakH-lastH >= splitStepDipMin
}

// AnalyzeLoading rewards rotation gain (coiling), a back-foot weight
// bias, and the racket hand held behind the torso.
func (a *analyzer) AnalyzeLoading(frames []pose.Frame, iv Interval) PhaseScore {
	score := 100.0
	var issues []string
	if iv.Len() <= 0 {
		return PhaseScore{Score: 0, Issues: []string{"loading window empty"}}
	}

	gain := rotationGain(frames, iv)
	if gain < loadingRotationTarget {
		deduction := 40 * (1 - gain/loadingRotationTarget)
		score -= deduction
		issues = append(issues, "limited coil; turn further away from the net while loading")
	}

	// Weight on the back foot: hip center shifted toward the back ankle.
	last := &frames[iv.End-1]
	if bias, ok := a.backFootBias(last); ok && bias < 0 {
		score -= 25
		issues = append(issues, "weight drifting forward too early; load into the back leg")
	}

	// Racket taken back: dominant wrist beyond the dominant shoulder,
	// away from the opposite shoulder.
	if behind, ok := a.wristBehindTorso(last); ok && !behind {
		score -= 25
		issues = append(issues, "racket not taken back behind the body")
	}

	return PhaseScore{Score: clampScore(score), Issues: issues}
}

// backFootBias returns a positive value when the hip center sits toward
// the back ankle. ok is false when the required joints are not visible.
func (a *analyzer) backFootBias(f *pose.Frame) (float64, bool) {
	j := &f.Joints
	if !j.AllVisible(pose.LeftHip, pose.RightHip, pose.LeftAnkle, pose.RightAnkle) {
		return 0, false
	}
	hipMid := pose.Midpoint(j[pose.LeftHip], j[pose.RightHip])
	ankleMid := pose.Midpoint(j[pose.LeftAnkle], j[pose.RightAnkle])
	toBack := j[a.backAnkle()].X - ankleMid.X
	if math.Abs(toBack) < 1e-9 {
		return 0, false
	}
	// Project the hip offset onto the back-foot direction.
	return (hipMid.X - ankleMid.X) * sign(toBack), true
}

func (a *analyzer) wristBehindTorso(f *pose.Frame) (bool, bool) {
	j := &f.Joints
	if !j.AllVisible(a.wrist(), a.shoulder(), a.oppositeShoulder()) {
		return false, false
	}
	w := j[a.wrist()]
	s := j[a.shoulder()]
	opp := j[a.oppositeShoulder()]
	outward := s.X - opp.X
	if math.Abs(outward) < 1e-9 {
		return false, false
	}
	return (w.X-s.X)*sign(outward) > 0, true
}

// AnalyzeAcceleration rewards acceleration magnitude, a low-jerk
// velocity curve, hip-shoulder separation, and forward hip momentum.
func (a *analyzer) AnalyzeAcceleration(frames []pose.Frame, iv Interval) PhaseScore {
	score := 100.0
	var issues []string
	if iv.Len() <= 0 {
		return PhaseScore{Score: 0, Issues: []string{"acceleration window empty"}}
	}
	window := frames[iv.Start:iv.End]

	var peakAccel, meanJerk, maxSep float64
	sepSeen := false
	for _, f := range window {
		if f.AccelMag > peakAccel {
			peakAccel = f.AccelMag
		}
		meanJerk += math.Abs(f.Smoothness)
		if f.HipShoulderSep != nil {
			sepSeen = true
			if *f.HipShoulderSep > maxSep {
				maxSep = *f.HipShoulderSep
			}
		}
	}
	meanJerk /= float64(len(window))

	target := a.cfg.GetMinAcceleration() * 2
	if peakAccel < target {
		score -= 30 * (1 - peakAccel/target)
		issues = append(issues, "racket speed builds too slowly through the swing")
	}
	if meanJerk > jerkSmoothCeiling {
		score -= 20
		issues = append(issues, "jerky acceleration; let the swing flow instead of muscling it")
	}
	if sepSeen && maxSep < hipShoulderSepTarget {
		score -= 25 * (1 - maxSep/hipShoulderSepTarget)
		issues = append(issues, "hips and shoulders rotating together; lead with the hips")
	}
	if shift, ok := hipForwardShift(window); ok && shift < forwardHipShiftMin {
		score -= 20
		issues = append(issues, "little forward body momentum into the ball")
	}

	return PhaseScore{Score: clampScore(score), Issues: issues}
}

// hipForwardShift measures hip-center displacement along the direction
// of wrist motion over the window.
func hipForwardShift(window []pose.Frame) (float64, bool) {
	firstJ := &window[0].Joints
	lastF := &window[len(window)-1]
	lastJ := &lastF.Joints
	if !firstJ.AllVisible(pose.LeftHip, pose.RightHip) || !lastJ.AllVisible(pose.LeftHip, pose.RightHip) {
		return 0, false
	}
	start := pose.Midpoint(firstJ[pose.LeftHip], firstJ[pose.RightHip])
	end := pose.Midpoint(lastJ[pose.LeftHip], lastJ[pose.RightHip])
	dir := sign(lastF.VelocityX)
	if dir == 0 {
		dir = 1
	}
	return (end.X - start.X) * dir, true
}

// AnalyzeContact rewards a contact height between shoulder and hip, an
// in-front wrist, rotation through the hitting zone, and forward weight.
func (a *analyzer) AnalyzeContact(frames []pose.Frame, iv Interval) PhaseScore {
	score := 100.0
	var issues []string
	if iv.Len() != 1 {
		return PhaseScore{Score: 0, Issues: []string{"contact window malformed"}}
	}
	f := &frames[iv.Start]
	j := &f.Joints

	// Contact height: wrist between shoulder and hip level. Image Y
	// grows downward, so shoulder.Y < wrist.Y < hip.Y.
	if j.AllVisible(a.wrist(), a.shoulder(), pose.LeftHip, pose.RightHip) {
		wristY := j[a.wrist()].Y
		shoulderY := j[a.shoulder()].Y
		hipY := pose.Midpoint(j[pose.LeftHip], j[pose.RightHip]).Y
		if wristY < shoulderY {
			// Above the shoulder is fine for serves; the serve-specific
			// checkpoints handle that. For everything else it reads high.
			score -= 15
			issues = append(issues, "contact above shoulder height")
		} else if wristY > hipY {
			score -= 25
			issues = append(issues, "contact too low; take the ball earlier on the rise")
		}
	}

	// Wrist in front of the shoulder along the motion direction.
	if j.AllVisible(a.wrist(), a.shoulder()) {
		dir := sign(f.VelocityX)
		if dir == 0 {
			dir = 1
		}
		lead := (j[a.wrist()].X - j[a.shoulder()].X) * dir
		if lead < wristLeadMin {
			score -= 30
			issues = append(issues, "contact beside or behind the body; meet the ball out front")
		}
	}

	// Rotation released into contact.
	if math.Abs(f.BodyRotation) < contactRotationMin {
		score -= 20
		issues = append(issues, "body not rotating through contact")
	}

	// Forward weight at the hit.
	if bias, ok := a.backFootBias(f); ok && bias > 0 {
		score -= 20
		issues = append(issues, "weight stuck on the back foot at contact")
	}

	return PhaseScore{Score: clampScore(score), Issues: issues}
}

// AnalyzeFollowThrough rewards duration, monotonic deceleration, a
// wrap-around finish near the opposite shoulder, and balance.
func (a *analyzer) AnalyzeFollowThrough(frames []pose.Frame, iv Interval) PhaseScore {
	score := 100.0
	var issues []string
	if iv.Len() <= 0 {
		return PhaseScore{Score: 0, Issues: []string{"follow-through window empty"}}
	}
	window := frames[iv.Start:iv.End]

	if len(window) < a.cfg.GetFullFollowFrames() {
		score -= 25
		issues = append(issues, "follow-through cut short; let the swing finish")
	}

	// Deceleration should be mostly monotonic.
	backslides := 0
	for i := 1; i < len(window); i++ {
		if window[i].VelocityMag > window[i-1].VelocityMag+1e-9 {
			backslides++
		}
	}
	if len(window) > 1 && float64(backslides)/float64(len(window)-1) > decelBackslideRatioMax {
		score -= 20
		issues = append(issues, "abrupt, jerky deceleration after contact")
	}

	// Wrap-around finish: dominant wrist ends near the opposite shoulder.
	last := &window[len(window)-1]
	lj := &last.Joints
	if lj.AllVisible(a.wrist(), a.oppositeShoulder(), pose.LeftShoulder, pose.RightShoulder) {
		width, _ := pose.ShoulderWidth(lj)
		dist := pose.Distance(lj[a.wrist()], lj[a.oppositeShoulder()])
		if width > 1e-9 && dist > width*wrapFinishWidthFactor {
			score -= 25
			issues = append(issues, "no wrap-around finish; swing across to the opposite shoulder")
		}
	}

	// Balance: body center between the ankles at the end.
	if lj.AllVisible(pose.LeftHip, pose.RightHip, pose.LeftAnkle, pose.RightAnkle) {
		hipMid := pose.Midpoint(lj[pose.LeftHip], lj[pose.RightHip])
		la := lj[pose.LeftAnkle].X
		ra := lj[pose.RightAnkle].X
		lo, hi := math.Min(la, ra), math.Max(la, ra)
		margin := (hi - lo) * balanceCenterTolerance
		if hipMid.X < lo-margin || hipMid.X > hi+margin {
			score -= 20
			issues = append(issues, "finishing off balance; stay over your base")
		}
	}

	return PhaseScore{Score: clampScore(score), Issues: issues}
}

func clampScore(s float64) float64 {
	return math.Max(0, math.Min(100, s))
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
