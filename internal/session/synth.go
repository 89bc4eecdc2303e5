package session

import (
	"math"

	"github.com/courtside-data/stroke.report/internal/pose"
)

// SynthConfig parameterizes the synthetic session generator.
type SynthConfig struct {
	Strokes       int     // number of strokes to simulate
	FrameMs       int64   // frame spacing, default 33 (30 fps)
	SwingReach    float64 // wrist travel during the forward swing, image units
	CoilDeg       float64 // shoulder-line rotation while loading
	RestFrames    int     // quiet frames between strokes
	IncludeTorso3 bool    // emit a small Z offset so the view reads angled
}

// SyntheticGenerator emits a landmark stream simulating a right-handed
// player hitting repeated forehands: ready, coil, forward swing, decay.
// It exists for replay testing and demos, not biomechanical realism.
type SyntheticGenerator struct {
	cfg  SynthConfig
	ts   int64
	base pose.Joints
}

// NewSyntheticGenerator creates a generator with defaults filled in.
func NewSyntheticGenerator(cfg SynthConfig) *SyntheticGenerator {
	if cfg.Strokes <= 0 {
		cfg.Strokes = 5
	}
	if cfg.FrameMs <= 0 {
		cfg.FrameMs = 33
	}
	if cfg.SwingReach <= 0 {
		cfg.SwingReach = 0.25
	}
	if cfg.CoilDeg <= 0 {
		cfg.CoilDeg = 25
	}
	if cfg.RestFrames <= 0 {
		cfg.RestFrames = 60
	}
	return &SyntheticGenerator{cfg: cfg, ts: 1000, base: baseJoints(cfg.IncludeTorso3)}
}

// Phase frame counts for one synthetic stroke.
const (
	synthPrep   = 20
	synthCoil   = 12
	synthSwing  = 8
	synthFollow = 14
)

// Wrist draw during the coil, image units. Kept small so the loading
// phase reads as near-still: at 30 fps and a 0.23 torso this is about
// 0.19 torso-lengths/sec of wrist speed, well under the stillness
// threshold the segmenter searches for.
const (
	synthCoilDrawX = 0.016
	synthCoilDrawY = 0.006
)

// Generate produces the full session as frame records.
func (g *SyntheticGenerator) Generate() []*FrameRecord {
	var out []*FrameRecord
	for s := 0; s < g.cfg.Strokes; s++ {
		out = append(out, g.stroke()...)
		for i := 0; i < g.cfg.RestFrames; i++ {
			out = append(out, g.frame(g.base))
		}
	}
	return out
}

func (g *SyntheticGenerator) stroke() []*FrameRecord {
	var out []*FrameRecord

	// Ready position with slight sway.
	for i := 0; i < synthPrep; i++ {
		j := g.base
		sway := 0.002 * math.Sin(float64(i)/3)
		shift(&j, pose.RightWrist, sway, 0)
		out = append(out, g.frame(j))
	}

	// Coil: rotate the shoulder line and draw the wrist back.
	for i := 1; i <= synthCoil; i++ {
		prog := float64(i) / synthCoil
		j := g.base
		rotateShoulders(&j, g.cfg.CoilDeg*prog)
		shift(&j, pose.RightWrist, synthCoilDrawX*prog, synthCoilDrawY*prog)
		shift(&j, pose.RightElbow, synthCoilDrawX*0.5*prog, synthCoilDrawY*0.5*prog)
		out = append(out, g.frame(j))
	}

	// Forward swing: the wrist sweeps across the body, fast.
	for i := 1; i <= synthSwing; i++ {
		prog := float64(i) / synthSwing
		j := g.base
		// The shoulders keep most of their coil through contact so the
		// rotation gain from loading survives classification.
		rotateShoulders(&j, g.cfg.CoilDeg*(1-prog*0.3))
		dx := synthCoilDrawX - (synthCoilDrawX+g.cfg.SwingReach)*prog
		shift(&j, pose.RightWrist, dx, synthCoilDrawY*(1-prog))
		shift(&j, pose.RightElbow, dx*0.5, synthCoilDrawY*0.5*(1-prog))
		out = append(out, g.frame(j))
	}

	// Follow-through: decelerate toward the opposite shoulder.
	for i := 1; i <= synthFollow; i++ {
		prog := float64(i) / synthFollow
		j := g.base
		rotateShoulders(&j, g.cfg.CoilDeg*0.7*(1-prog))
		endX := -g.cfg.SwingReach - 0.04*prog
		shift(&j, pose.RightWrist, endX, -0.08*prog)
		shift(&j, pose.RightElbow, endX*0.5, -0.04*prog)
		out = append(out, g.frame(j))
	}
	return out
}

func (g *SyntheticGenerator) frame(j pose.Joints) *FrameRecord {
	rec := &FrameRecord{TimestampMs: g.ts, Landmarks: append([]pose.Landmark(nil), j[:]...)}
	g.ts += g.cfg.FrameMs
	return rec
}

func baseJoints(withDepth bool) pose.Joints {
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
	if withDepth {
		j[pose.LeftShoulder].Z = 0.05
		j[pose.RightShoulder].Z = -0.05
	}
	return j
}

func shift(j *pose.Joints, idx int, dx, dy float64) {
	j[idx].X += dx
	j[idx].Y += dy
}

// rotateShoulders turns the shoulder line by deg about its midpoint,
// projected into the image plane.
func rotateShoulders(j *pose.Joints, deg float64) {
	mid := pose.Midpoint(j[pose.LeftShoulder], j[pose.RightShoulder])
	half := pose.Distance(j[pose.LeftShoulder], j[pose.RightShoulder]) / 2
	rad := deg * math.Pi / 180
	dx := half * math.Cos(rad)
	dy := half * math.Sin(rad)
	j[pose.LeftShoulder].X = mid.X - dx
	j[pose.LeftShoulder].Y = mid.Y - dy
	j[pose.RightShoulder].X = mid.X + dx
	j[pose.RightShoulder].Y = mid.Y + dy
}
