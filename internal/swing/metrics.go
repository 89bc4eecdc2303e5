package swing

import (
	"math"

	"github.com/courtside-data/stroke.report/internal/pose"
)

// ExtractMetrics flattens a segmented stroke into the metric map the
// checkpoint and fault catalogs evaluate. A metric whose joints were not
// visible is omitted, never written as zero.
func (a *analyzer) ExtractMetrics(frames []pose.Frame, ps *PhaseSet) Metrics {
	m := Metrics{}

	// Preparation.
	if n := ps.Preparation.Len(); n > 0 {
		m[MetricPrepFrames] = float64(n)
		window := frames[ps.Preparation.Start:ps.Preparation.End]
		var meanVel float64
		for _, f := range window {
			meanVel += f.VelocityMag
		}
		m[MetricPrepMeanVelocity] = meanVel / float64(n)
		m[MetricSplitStep] = boolMetric(a.detectSplitStep(window))
	}

	// Loading.
	if ps.Loading.Len() > 0 {
		m[MetricLoadingRotGain] = rotationGain(frames, ps.Loading)
		if knee, ok := minKneeBend(frames[ps.Loading.Start:ps.Loading.End]); ok {
			m[MetricKneeBendMin] = knee
		}
	}

	// Acceleration through contact.
	if ps.Acceleration.Len() > 0 {
		window := frames[ps.Acceleration.Start:ps.Acceleration.End]
		var peakAccel, meanJerk, maxSep, peakVel float64
		sepSeen := false
		for _, f := range window {
			if f.AccelMag > peakAccel {
				peakAccel = f.AccelMag
			}
			if f.VelocityMag > peakVel {
				peakVel = f.VelocityMag
			}
			meanJerk += math.Abs(f.Smoothness)
			if f.HipShoulderSep != nil && *f.HipShoulderSep > maxSep {
				sepSeen = true
				maxSep = *f.HipShoulderSep
			}
		}
		m[MetricPeakAcceleration] = peakAccel
		m[MetricPeakVelocity] = peakVel
		m[MetricAccelMeanJerk] = meanJerk / float64(len(window))
		if sepSeen {
			m[MetricMaxHipShoulderSep] = maxSep
		}
	}

	// Contact.
	if ps.Contact.Len() == 1 {
		f := &frames[ps.Contact.Start]
		j := &f.Joints
		if f.ElbowAngle != nil {
			m[MetricContactElbowAngle] = *f.ElbowAngle
		}
		if f.VelocityMag > m[MetricPeakVelocity] {
			m[MetricPeakVelocity] = f.VelocityMag
		}
		if j.AllVisible(a.wrist(), a.shoulder(), pose.LeftHip, pose.RightHip) {
			shoulderY := j[a.shoulder()].Y
			hipY := pose.Midpoint(j[pose.LeftHip], j[pose.RightHip]).Y
			if span := hipY - shoulderY; math.Abs(span) > 1e-9 {
				// 0 = shoulder level, 1 = hip level; outside [0,1] reads
				// above-shoulder or below-hip contact.
				m[MetricContactHeight] = (j[a.wrist()].Y - shoulderY) / span
			}
		}
		if j.AllVisible(a.wrist(), a.shoulder()) {
			dir := sign(f.VelocityX)
			if dir == 0 {
				dir = 1
			}
			m[MetricWristLead] = (j[a.wrist()].X - j[a.shoulder()].X) * dir
		}
	}

	// Follow-through.
	if n := ps.FollowThrough.Len(); n > 0 {
		m[MetricFollowFrames] = float64(n)
		last := &frames[ps.FollowThrough.End-1]
		lj := &last.Joints
		if lj.AllVisible(a.wrist(), a.oppositeShoulder(), pose.LeftShoulder, pose.RightShoulder) {
			if width, ok := pose.ShoulderWidth(lj); ok && width > 1e-9 {
				dist := pose.Distance(lj[a.wrist()], lj[a.oppositeShoulder()])
				m[MetricWrapFinish] = boolMetric(dist <= width*wrapFinishWidthFactor)
			}
		}
		if lj.AllVisible(pose.LeftHip, pose.RightHip, pose.LeftAnkle, pose.RightAnkle) {
			hipMid := pose.Midpoint(lj[pose.LeftHip], lj[pose.RightHip])
			la := lj[pose.LeftAnkle].X
			ra := lj[pose.RightAnkle].X
			lo, hi := math.Min(la, ra), math.Max(la, ra)
			margin := (hi - lo) * balanceCenterTolerance
			m[MetricBalancedFinish] = boolMetric(hipMid.X >= lo-margin && hipMid.X <= hi+margin)
		}
	}

	return m
}

// minKneeBend returns the deepest knee angle seen in the window.
func minKneeBend(window []pose.Frame) (float64, bool) {
	min, seen := math.MaxFloat64, false
	for _, f := range window {
		if f.KneeBend != nil && *f.KneeBend < min {
			min, seen = *f.KneeBend, true
		}
	}
	return min, seen
}

func boolMetric(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
