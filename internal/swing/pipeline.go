package swing

import (
	"math"
	"reflect"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/courtside-data/stroke.report/internal/config"
	"github.com/courtside-data/stroke.report/internal/kinematics"
	"github.com/courtside-data/stroke.report/internal/monitoring"
	"github.com/courtside-data/stroke.report/internal/pose"
	"github.com/courtside-data/stroke.report/internal/units"
)

// StrokeSink receives every emitted stroke event, in order. A sink error
// is logged and skipped; it never stops the stream.
type StrokeSink interface {
	HandleStroke(ev *StrokeEvent) error
}

// RejectSink receives segmentation rejects for diagnostics.
type RejectSink interface {
	HandleReject(timestampMs int64, reason RejectReason)
}

// CalibrationSink is notified once per session when the body scale
// becomes valid.
type CalibrationSink interface {
	HandleCalibration(scale float64)
}

// isNilInterface checks if an interface value is nil or contains a nil
// pointer. This handles the Go interface nil pitfall where the interface
// != nil but the underlying value is.
func isNilInterface(i interface{}) bool {
	if i == nil {
		return true
	}
	v := reflect.ValueOf(i)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// contactVarianceWindow is how many recent contact points feed the
// rolling contact-consistency variance.
const contactVarianceWindow = 10

// PipelineConfig holds dependencies for the frame-processing pipeline.
// Sinks are optional; nil entries (including typed-nil pointers) are
// resolved away at construction.
type PipelineConfig struct {
	Tuning     *config.TuningConfig
	References config.ReferenceTable
	SessionID  string

	// TorsoMeters converts body-relative speeds to physical units for
	// the ball-speed estimate. Zero selects the adult default.
	TorsoMeters float64

	Sinks       []StrokeSink
	Rejects     RejectSink
	Calibration CalibrationSink
}

// Pipeline is the single-goroutine composition root: one call per video
// frame, zero or one stroke event out. All stages degrade to skipping
// the frame or candidate on bad input; ProcessFrame never fails the
// stream.
type Pipeline struct {
	cfg       *config.TuningConfig
	refs      config.ReferenceTable
	sessionID string
	torso     float64

	normalizer *kinematics.Normalizer
	estimator  *kinematics.Estimator
	history    *pose.History
	detector   *Detector
	segmenter  *Segmenter
	voter      *HandednessVoter
	assessor   *QualityAssessor
	evaluators map[StrokeType]*Evaluator

	sinks    []StrokeSink
	dispatch *dispatcher
	rejects  RejectSink

	camera kinematics.CameraView

	// Previous-frame state for angular rates and jerk.
	prevShoulderAngle *float64
	prevHipAngle      *float64
	prevAccelMag      float64
	prevTsMs          int64

	// Rolling contact consistency.
	contactXs []float64
	contactYs []float64

	strokeCount  int
	lastRejectMs int64
}

// NewPipeline wires the pipeline stages from the config. A nil Tuning
// uses defaults for everything.
func NewPipeline(pc PipelineConfig) *Pipeline {
	cfg := pc.Tuning
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	refs := pc.References
	if refs == nil {
		refs = config.DefaultReferenceTable()
	}
	torso := pc.TorsoMeters
	if torso <= 0 {
		torso = units.DefaultTorsoMeters
	}
	sessionID := pc.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	p := &Pipeline{
		cfg:        cfg,
		refs:       refs,
		sessionID:  sessionID,
		torso:      torso,
		estimator:  kinematics.NewEstimator(kinematics.DefaultTrackedJoints),
		history:    pose.NewHistory(cfg.GetHistoryCapacity()),
		detector:   NewDetector(cfg),
		segmenter:  NewSegmenter(cfg),
		voter:      NewHandednessVoter(cfg.GetDominantHand()),
		assessor:   NewQualityAssessor(refs, cfg.GetSkillTier()),
		evaluators: make(map[StrokeType]*Evaluator),
	}

	onValid := func(scale float64) {
		monitoring.Logf("Session %s calibrated: body scale %.4f", sessionID, scale)
		if !isNilInterface(pc.Calibration) {
			pc.Calibration.HandleCalibration(scale)
		}
	}
	p.normalizer = kinematics.NewNormalizer(cfg.GetScaleValidityFloor(), onValid)

	for _, s := range pc.Sinks {
		if !isNilInterface(s) {
			p.sinks = append(p.sinks, s)
		}
	}
	p.dispatch = newDispatcher(p.sinks)
	if !isNilInterface(pc.Rejects) {
		p.rejects = pc.Rejects
	}
	return p
}

// SessionID returns the session identifier events are stamped with.
func (p *Pipeline) SessionID() string { return p.sessionID }

// CameraView returns the most recent camera angle estimate.
func (p *Pipeline) CameraView() kinematics.CameraView { return p.camera }

// StrokeCount returns how many strokes the pipeline has emitted.
func (p *Pipeline) StrokeCount() int { return p.strokeCount }

// SetReferences swaps in a recalibrated reference table. Subsequent
// strokes are scored and evaluated against the new table; the cached
// per-stroke-type evaluators are rebuilt on next use. Call between
// frames: the pipeline is single-goroutine.
func (p *Pipeline) SetReferences(refs config.ReferenceTable) {
	if refs == nil {
		return
	}
	p.refs = refs
	p.assessor.SetReferences(refs)
	p.evaluators = make(map[StrokeType]*Evaluator)
}

// ProcessFrame runs one frame of landmarks through the full pipeline and
// returns the emitted stroke event, or nil when the frame did not
// complete a stroke. Frames with non-monotonic timestamps are dropped.
func (p *Pipeline) ProcessFrame(joints *pose.Joints, timestampMs int64) *StrokeEvent {
	if joints == nil {
		return nil
	}

	if view := kinematics.EstimateCameraView(joints); view.View != kinematics.ViewUndetermined {
		p.camera = view
	}

	p.normalizer.Calibrate(joints)
	estimates := p.estimator.Update(joints, timestampMs)

	p.voter.Observe(joints, wristSpeed(estimates, pose.LeftWrist), wristSpeed(estimates, pose.RightWrist))
	hand, _ := p.voter.Hand()

	f := p.enrichFrame(joints, timestampMs, estimates, hand)
	if !p.history.Append(f) {
		monitoring.Logf("Dropped out-of-order frame at %dms", timestampMs)
		return nil
	}

	contactIdx, ok := p.detector.Scan(p.history)
	if !ok {
		return nil
	}

	frames := p.history.Frames()
	ps, reason := p.segmenter.Segment(frames, contactIdx)
	if reason != RejectNone {
		// The same candidate can fail repeatedly while the window grows
		// (e.g. follow-through still too short); report it once.
		if ts := frames[contactIdx].TimestampMs; ts != p.lastRejectMs {
			p.lastRejectMs = ts
			if p.rejects != nil {
				p.rejects.HandleReject(ts, reason)
			}
		}
		return nil
	}

	ev := p.buildEvent(frames, &ps, hand)
	p.detector.Commit(timestampMs)
	p.history.Clear()
	p.strokeCount++

	// Fire-and-forget: sinks run on the dispatcher's goroutine, in
	// emission order, off the frame path.
	p.dispatch.enqueue(ev)
	return ev
}

// Close flushes queued sink deliveries and stops the dispatcher. Call it
// once frame processing is done; events from later ProcessFrame calls
// are not delivered to sinks.
func (p *Pipeline) Close() {
	p.dispatch.close()
}

// Reset clears all per-session state: history, filters, calibration,
// handedness, and cooldown.
func (p *Pipeline) Reset() {
	p.history.Clear()
	p.estimator.Reset()
	p.normalizer.Reset()
	p.detector.Reset()
	p.voter.Reset()
	p.prevShoulderAngle = nil
	p.prevHipAngle = nil
	p.prevAccelMag = 0
	p.prevTsMs = 0
	p.contactXs = p.contactXs[:0]
	p.contactYs = p.contactYs[:0]
	p.camera = kinematics.CameraView{}
	p.lastRejectMs = 0
}

func wristSpeed(estimates map[int]kinematics.Estimate, joint int) float64 {
	if est, ok := estimates[joint]; ok {
		return est.Speed()
	}
	return 0
}

// enrichFrame assembles the per-frame kinematic record from the raw
// joints and filter estimates. Missing joints leave the corresponding
// derived metric nil.
func (p *Pipeline) enrichFrame(joints *pose.Joints, timestampMs int64, estimates map[int]kinematics.Estimate, hand string) pose.Frame {
	scale, scaleOK := p.normalizer.Scale()
	norm := func(v float64) float64 {
		if scaleOK {
			return v / scale
		}
		return v
	}

	wristIdx, elbowIdx, shoulderIdx := pose.RightWrist, pose.RightElbow, pose.RightShoulder
	if hand == config.HandLeft {
		wristIdx, elbowIdx, shoulderIdx = pose.LeftWrist, pose.LeftElbow, pose.LeftShoulder
	}

	f := pose.Frame{
		TimestampMs: timestampMs,
		Joints:      *joints,
		Normalized:  scaleOK,
	}

	dt := float64(timestampMs-p.prevTsMs) / 1000.0
	if p.prevTsMs == 0 || dt <= 0 {
		dt = kinematics.DefaultFrameDt
	}

	if est, ok := estimates[wristIdx]; ok {
		f.RawVelocityMag = est.Speed()
		f.RawAccelMag = est.AccelMag()
		f.VelocityMag = norm(est.Speed())
		f.VelocityX = norm(est.VX)
		f.VelocityY = norm(est.VY)
		f.AccelMag = norm(est.AccelMag())
		f.AccelX = norm(est.AX)
		f.AccelY = norm(est.AY)
		// Image Y grows downward; upward racket drive is negative VY.
		f.VerticalMotion = -norm(est.VY)
		f.WristSpeed = pose.Float64Ptr(f.VelocityMag)
	}
	if est, ok := estimates[elbowIdx]; ok {
		f.ElbowSpeed = pose.Float64Ptr(norm(est.Speed()))
	}

	// Local jerk estimate: accel change since the previous frame.
	f.Smoothness = math.Abs(f.AccelMag - p.prevAccelMag)
	p.prevAccelMag = f.AccelMag

	// Torso line angles and their rates.
	if joints.AllVisible(pose.LeftShoulder, pose.RightShoulder) {
		angle := pose.LineAngle((*joints)[pose.LeftShoulder], (*joints)[pose.RightShoulder])
		f.BodyRotation = angle
		if p.prevShoulderAngle != nil {
			f.ShoulderRate = pose.Float64Ptr((angle - *p.prevShoulderAngle) / dt)
		}
		p.prevShoulderAngle = pose.Float64Ptr(angle)
	} else {
		p.prevShoulderAngle = nil
	}
	if joints.AllVisible(pose.LeftHip, pose.RightHip) {
		hipAngle := pose.LineAngle((*joints)[pose.LeftHip], (*joints)[pose.RightHip])
		if p.prevHipAngle != nil {
			f.HipRotationRate = pose.Float64Ptr((hipAngle - *p.prevHipAngle) / dt)
		}
		p.prevHipAngle = pose.Float64Ptr(hipAngle)
		if p.prevShoulderAngle != nil {
			f.HipShoulderSep = pose.Float64Ptr(math.Abs(*p.prevShoulderAngle - hipAngle))
		}
		mid := pose.Midpoint((*joints)[pose.LeftHip], (*joints)[pose.RightHip])
		f.HipHeight = pose.Float64Ptr(mid.Y)
	} else {
		p.prevHipAngle = nil
	}

	if joints.AllVisible(shoulderIdx, elbowIdx, wristIdx) {
		f.ElbowAngle = pose.Float64Ptr(pose.AngleAt((*joints)[shoulderIdx], (*joints)[elbowIdx], (*joints)[wristIdx]))
	}
	if joints.Visible(wristIdx) {
		f.WristHeight = pose.Float64Ptr((*joints)[wristIdx].Y)
	}
	if knee, ok := meanKneeAngle(joints); ok {
		f.KneeBend = pose.Float64Ptr(knee)
	}

	p.prevTsMs = timestampMs
	return f
}

// meanKneeAngle averages the visible knee angles; ok is false when
// neither leg is fully visible.
func meanKneeAngle(j *pose.Joints) (float64, bool) {
	var sum float64
	var n int
	if j.AllVisible(pose.LeftHip, pose.LeftKnee, pose.LeftAnkle) {
		sum += pose.AngleAt((*j)[pose.LeftHip], (*j)[pose.LeftKnee], (*j)[pose.LeftAnkle])
		n++
	}
	if j.AllVisible(pose.RightHip, pose.RightKnee, pose.RightAnkle) {
		sum += pose.AngleAt((*j)[pose.RightHip], (*j)[pose.RightKnee], (*j)[pose.RightAnkle])
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// buildEvent assembles the immutable stroke event for a validated
// candidate.
func (p *Pipeline) buildEvent(frames []pose.Frame, ps *PhaseSet, hand string) *StrokeEvent {
	contact := &frames[ps.Contact.Start]
	an := newAnalyzer(p.cfg, hand)

	// Signed rotation from the start of loading through contact drives
	// the forehand/backhand split.
	rotation := contact.BodyRotation - frames[ps.Loading.Start].BodyRotation
	rotGain := rotationGain(frames, Interval{Start: ps.Loading.Start, End: ps.Contact.End})

	cls := NewClassifier(hand == config.HandLeft)
	strokeType := cls.Classify(contact.VelocityMag, contact.AccelMag, rotation, contact.VerticalMotion)

	var seq *SequenceAnalysis
	if p.segmenter.FullyValid(ps) {
		seq = an.AnalyzeSequence(frames, ps)
	}

	metrics := an.ExtractMetrics(frames, ps)
	eval := p.evaluatorFor(strokeType).Evaluate(metrics, seq)

	path := wristPath(frames, an.wrist(), ps.Acceleration.Start, ps.FollowThrough.End)
	quality := p.assessor.Assess(strokeType, contact.VelocityMag, contact.AccelMag, rotGain, path)

	ev := &StrokeEvent{
		ID:             uuid.NewString(),
		SessionID:      p.sessionID,
		Type:           strokeType,
		TimestampMs:    contact.TimestampMs,
		Velocity:       contact.VelocityMag,
		Acceleration:   contact.AccelMag,
		Rotation:       rotation,
		VerticalMotion: contact.VerticalMotion,
		Smoothness:     quality.Smoothness,
		Normalized:     contact.Normalized,
		Quality:        quality,
		Sequence:       seq,
		Evaluation:     eval,
		Phases:         *ps,
	}
	if contact.Normalized {
		ev.BallSpeedKPH = units.EstimateBallSpeedKPH(contact.VelocityMag, p.torso)
	}
	ev.FinalScore = clampScore(0.6*quality.Overall + 0.4*eval.Overall)

	if contact.Joints.Visible(an.wrist()) {
		w := contact.Joints[an.wrist()]
		ev.Contact = ContactPoint{X: w.X, Y: w.Y}
		ev.ContactVariance = p.recordContact(w.X, w.Y)
	}

	switch strokeType {
	case StrokeServe, StrokeOverhead:
		ev.Serve = serveAnalysis(frames, ps, an.wrist(), p.cfg.GetServeVerticalMotion())
	case StrokeForehand, StrokeBackhand, StrokeGroundstroke:
		ev.Stance = stanceAnalysis(contact, metrics)
	}
	return ev
}

// evaluatorFor returns the checkpoint evaluator for a stroke type,
// building it on first use from the reference table.
func (p *Pipeline) evaluatorFor(t StrokeType) *Evaluator {
	if e, ok := p.evaluators[t]; ok {
		return e
	}
	ref, _ := p.refs.Lookup(string(t), p.cfg.GetSkillTier())
	e := NewEvaluator(ref, p.cfg)
	p.evaluators[t] = e
	return e
}

// recordContact folds a contact point into the rolling window and
// returns the combined positional variance across recent strokes.
func (p *Pipeline) recordContact(x, y float64) float64 {
	p.contactXs = append(p.contactXs, x)
	p.contactYs = append(p.contactYs, y)
	if len(p.contactXs) > contactVarianceWindow {
		p.contactXs = p.contactXs[1:]
		p.contactYs = p.contactYs[1:]
	}
	if len(p.contactXs) < 2 {
		return 0
	}
	return stat.Variance(p.contactXs, nil) + stat.Variance(p.contactYs, nil)
}

// wristPath collects the dominant-wrist trajectory over [start, end) for
// smoothness scoring. Frames where the wrist is hidden are skipped.
func wristPath(frames []pose.Frame, wristIdx, start, end int) SwingPath {
	var path SwingPath
	for i := start; i < end && i < len(frames); i++ {
		if !frames[i].Joints.Visible(wristIdx) {
			continue
		}
		w := frames[i].Joints[wristIdx]
		path.Xs = append(path.Xs, w.X)
		path.Ys = append(path.Ys, w.Y)
	}
	return path
}

func serveAnalysis(frames []pose.Frame, ps *PhaseSet, wristIdx int, verticalMin float64) *ServeAnalysis {
	sa := &ServeAnalysis{PeakWristHeight: math.MaxFloat64}
	for i := ps.Acceleration.Start; i < ps.FollowThrough.End && i < len(frames); i++ {
		f := &frames[i]
		if f.Joints.Visible(wristIdx) && f.Joints[wristIdx].Y < sa.PeakWristHeight {
			sa.PeakWristHeight = f.Joints[wristIdx].Y
		}
		if f.VerticalMotion >= verticalMin {
			sa.UpwardDrive = true
		}
	}
	if knee, ok := minKneeBend(frames[ps.Loading.Start:ps.Contact.End]); ok {
		sa.KneeBendDeg = knee
	}
	if sa.PeakWristHeight == math.MaxFloat64 {
		sa.PeakWristHeight = 0
	}
	return sa
}

func stanceAnalysis(contact *pose.Frame, metrics Metrics) *StanceAnalysis {
	j := &contact.Joints
	if !j.AllVisible(pose.LeftAnkle, pose.RightAnkle) {
		return nil
	}
	spread := math.Abs((*j)[pose.LeftAnkle].X - (*j)[pose.RightAnkle].X)
	torso, ok := pose.TorsoLength(j)
	if ok && torso > 1e-9 {
		spread /= torso
	}
	sa := &StanceAnalysis{StanceWidth: spread}
	if j.AllVisible(pose.LeftHip, pose.RightHip) {
		// An open stance shows a near-level hip line facing the camera.
		hipAngle := pose.LineAngle((*j)[pose.LeftHip], (*j)[pose.RightHip])
		sa.OpenStance = math.Abs(hipAngle) < 20
	}
	if b, ok := metrics.Get(MetricBalancedFinish); ok {
		sa.Balanced = b >= 0.5
	}
	return sa
}
