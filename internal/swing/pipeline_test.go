package swing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside-data/stroke.report/internal/config"
	"github.com/courtside-data/stroke.report/internal/kinematics"
	"github.com/courtside-data/stroke.report/internal/testutil"
)

type recordingSink struct {
	events []*StrokeEvent
}

func (r *recordingSink) HandleStroke(ev *StrokeEvent) error {
	r.events = append(r.events, ev)
	return nil
}

type recordingCalibration struct {
	scales []float64
}

func (r *recordingCalibration) HandleCalibration(scale float64) {
	r.scales = append(r.scales, scale)
}

type recordingRejects struct {
	reasons []RejectReason
}

func (r *recordingRejects) HandleReject(_ int64, reason RejectReason) {
	r.reasons = append(r.reasons, reason)
}

func TestNewPipeline_Defaults(t *testing.T) {
	p := NewPipeline(PipelineConfig{})
	assert.NotEmpty(t, p.SessionID())
	assert.Zero(t, p.StrokeCount())
	assert.Empty(t, p.CameraView().View, "no camera estimate before the first frame")
}

func TestNewPipeline_FiltersTypedNilSinks(t *testing.T) {
	var sink *recordingSink
	var rejects *recordingRejects
	var cal *recordingCalibration
	p := NewPipeline(PipelineConfig{
		Sinks:       []StrokeSink{sink, nil},
		Rejects:     rejects,
		Calibration: cal,
	})

	// Typed-nil sinks must be resolved away, not invoked.
	joints := testutil.StandingJoints()
	for i := 0; i < kinematics.CalibrationSamples+5; i++ {
		p.ProcessFrame(&joints, int64(1000+i*testutil.FrameIntervalMs))
	}
}

func TestPipeline_CalibrationFiresOnce(t *testing.T) {
	cal := &recordingCalibration{}
	p := NewPipeline(PipelineConfig{Calibration: cal})

	joints := testutil.StandingJoints()
	for i := 0; i < kinematics.CalibrationSamples*2; i++ {
		p.ProcessFrame(&joints, int64(1000+i*testutil.FrameIntervalMs))
	}

	require.Len(t, cal.scales, 1)
	// StandingJoints has a 0.23 torso in image units.
	assert.InDelta(t, 0.23, cal.scales[0], 1e-6)
}

func TestPipeline_DropsNonMonotonicFrames(t *testing.T) {
	p := NewPipeline(PipelineConfig{})
	joints := testutil.StandingJoints()

	assert.Nil(t, p.ProcessFrame(&joints, 1000))
	assert.Nil(t, p.ProcessFrame(&joints, 900))
	assert.Nil(t, p.ProcessFrame(&joints, 1000))
	assert.Nil(t, p.ProcessFrame(&joints, 1033))
	assert.Zero(t, p.StrokeCount())
}

func TestPipeline_NilJointsSkipped(t *testing.T) {
	p := NewPipeline(PipelineConfig{})
	assert.Nil(t, p.ProcessFrame(nil, 1000))
}

func TestPipeline_ResetReArmsCalibration(t *testing.T) {
	cal := &recordingCalibration{}
	p := NewPipeline(PipelineConfig{Calibration: cal})

	joints := testutil.StandingJoints()
	ts := int64(1000)
	for i := 0; i < kinematics.CalibrationSamples; i++ {
		p.ProcessFrame(&joints, ts)
		ts += testutil.FrameIntervalMs
	}
	require.Len(t, cal.scales, 1)

	p.Reset()
	for i := 0; i < kinematics.CalibrationSamples; i++ {
		p.ProcessFrame(&joints, ts)
		ts += testutil.FrameIntervalMs
	}
	assert.Len(t, cal.scales, 2)
}

func TestPipeline_BuildEventForehand(t *testing.T) {
	p := NewPipeline(PipelineConfig{Tuning: testTuning(), SessionID: "sess-1"})

	script := testutil.DefaultStrokeScript()
	frames := script.Build()
	ps, reason := p.segmenter.Segment(frames, script.ContactIndex())
	require.Equal(t, RejectNone, reason)

	ev := p.buildEvent(frames, &ps, config.HandRight)
	require.NotNil(t, ev)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "sess-1", ev.SessionID)
	assert.Equal(t, StrokeForehand, ev.Type)
	assert.Equal(t, frames[ps.Contact.Start].TimestampMs, ev.TimestampMs)
	assert.InDelta(t, 0.06, ev.Velocity, 1e-9)
	assert.InDelta(t, 17.5, ev.Rotation, 0.1)
	assert.True(t, ev.Normalized)
	assert.Greater(t, ev.BallSpeedKPH, 0.0)

	require.NotNil(t, ev.Sequence, "a fully valid stroke carries phase analysis")
	require.NotNil(t, ev.Evaluation)
	assert.Empty(t, ev.Evaluation.Faults, "an extended arm with real coil fires no fault")

	assert.InDelta(t, clampScore(0.6*ev.Quality.Overall+0.4*ev.Evaluation.Overall), ev.FinalScore, 1e-9)
	assert.GreaterOrEqual(t, ev.FinalScore, 0.0)
	assert.LessOrEqual(t, ev.FinalScore, 100.0)

	require.NotNil(t, ev.Stance)
	assert.Nil(t, ev.Serve)
	assert.Greater(t, ev.Contact.X, 0.0)
	assert.Zero(t, ev.ContactVariance, "a single stroke has no spread yet")
}

func TestPipeline_SetReferencesRescoresStrokes(t *testing.T) {
	p := NewPipeline(PipelineConfig{Tuning: testTuning()})

	script := testutil.DefaultStrokeScript()
	frames := script.Build()
	ps, reason := p.segmenter.Segment(frames, script.ContactIndex())
	require.Equal(t, RejectNone, reason)

	before := p.buildEvent(frames, &ps, config.HandRight)
	require.NotNil(t, before)
	assert.Empty(t, before.Evaluation.Faults)

	// A table with far harder kinematic curves and an elbow range the
	// stroke cannot reach.
	harder := config.ReferenceTable{
		"forehand": {
			config.TierIntermediate: config.Reference{
				Velocity:     config.Curve{BelowAverage: 10, Good: 22, Excellent: 36},
				Acceleration: config.Curve{BelowAverage: 50, Good: 140, Excellent: 280},
				RotationDeg:  config.Curve{BelowAverage: 150, Good: 350, Excellent: 600},
				ElbowAngleMin: 178, ElbowAngleMax: 180,
				HipShoulderSepMin: 0, HipShoulderSepMax: 90,
			},
		},
	}
	p.SetReferences(harder)

	after := p.buildEvent(frames, &ps, config.HandRight)
	require.NotNil(t, after)

	// Both the quality assessor and the cached evaluators must pick up
	// the new table.
	assert.Less(t, after.Quality.Overall, before.Quality.Overall)
	assert.Less(t, after.FinalScore, before.FinalScore)
	assert.NotEmpty(t, after.Evaluation.Failed, "the unreachable elbow range must fail its checkpoint")
}

func TestPipeline_SetReferencesIgnoresNil(t *testing.T) {
	p := NewPipeline(PipelineConfig{Tuning: testTuning()})
	p.SetReferences(nil)
	_, ok := p.refs.Lookup("forehand", config.TierIntermediate)
	assert.True(t, ok, "a nil table must not wipe the active references")
}

func TestPipeline_BuildEventCollapsedElbow(t *testing.T) {
	p := NewPipeline(PipelineConfig{Tuning: testTuning()})

	script := testutil.DefaultStrokeScript()
	script.ContactElbow = 90
	frames := script.Build()
	ps, reason := p.segmenter.Segment(frames, script.ContactIndex())
	require.Equal(t, RejectNone, reason)

	ev := p.buildEvent(frames, &ps, config.HandRight)
	require.NotNil(t, ev.Evaluation)
	require.NotEmpty(t, ev.Evaluation.Faults)
	assert.Equal(t, "collapsing_elbow", ev.Evaluation.Faults[0].ID)
	assert.Equal(t, "Keep your hitting arm extended through contact", ev.Evaluation.PrimaryFeedback)
}
