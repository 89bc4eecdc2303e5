// Package kinematics turns noisy per-joint landmark observations into
// smoothed position, velocity, and acceleration estimates, and owns the
// body-relative length scale used to make those estimates camera
// independent.
package kinematics

import (
	"math"
	"time"

	"github.com/courtside-data/stroke.report/internal/pose"
)

// Filter tuning constants. Process and measurement noise are fixed: the
// landmark detector's noise floor does not vary enough per session to be
// worth exposing as tuning.
const (
	ProcessNoisePos  = 0.001
	ProcessNoiseVel  = 0.01
	MeasurementNoise = 0.005

	// MinDeterminant guards covariance inversion.
	MinDeterminant = 1e-12

	// DefaultFrameDt is assumed for the first observation of a joint.
	DefaultFrameDt = 1.0 / 30.0
)

// Estimate is the per-joint output of one filter update.
type Estimate struct {
	X, Y   float64
	VX, VY float64
	AX, AY float64
}

// Speed returns the estimated velocity magnitude.
func (e Estimate) Speed() float64 {
	return math.Sqrt(e.VX*e.VX + e.VY*e.VY)
}

// AccelMag returns the estimated acceleration magnitude.
func (e Estimate) AccelMag() float64 {
	return math.Sqrt(e.AX*e.AX + e.AY*e.AY)
}

// jointFilter is a constant-velocity Kalman filter for one joint.
// State is [x, y, vx, vy]; P is the 4x4 covariance, row-major.
type jointFilter struct {
	x, y, vx, vy float64
	P            [16]float64
	initialized  bool

	// Previous filtered velocity, for the acceleration finite difference.
	prevVX, prevVY float64
}

func newJointFilter() *jointFilter {
	return &jointFilter{
		P: [16]float64{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 0.1, 0,
			0, 0, 0, 0.1,
		},
	}
}

// predict applies the constant-velocity prediction step.
func (f *jointFilter) predict(dt float64) {
	// x' = F * x
	f.x += f.vx * dt
	f.y += f.vy * dt

	// P' = F * P * F^T + Q, computed directly for the CV model.
	P := f.P
	var FP [16]float64
	for j := 0; j < 4; j++ {
		FP[0*4+j] = P[0*4+j] + dt*P[2*4+j]
		FP[1*4+j] = P[1*4+j] + dt*P[3*4+j]
		FP[2*4+j] = P[2*4+j]
		FP[3*4+j] = P[3*4+j]
	}
	for i := 0; i < 4; i++ {
		f.P[i*4+0] = FP[i*4+0] + dt*FP[i*4+2]
		f.P[i*4+1] = FP[i*4+1] + dt*FP[i*4+3]
		f.P[i*4+2] = FP[i*4+2]
		f.P[i*4+3] = FP[i*4+3]
	}

	f.P[0*4+0] += ProcessNoisePos
	f.P[1*4+1] += ProcessNoisePos
	f.P[2*4+2] += ProcessNoiseVel
	f.P[3*4+3] += ProcessNoiseVel
}

// update applies the measurement update with an observed position.
func (f *jointFilter) update(zx, zy float64) {
	yX := zx - f.x
	yY := zy - f.y

	// Innovation covariance S = H*P*H^T + R, H extracts position only.
	S00 := f.P[0*4+0] + MeasurementNoise
	S01 := f.P[0*4+1]
	S10 := f.P[1*4+0]
	S11 := f.P[1*4+1] + MeasurementNoise

	det := S00*S11 - S01*S10
	if det < MinDeterminant {
		return
	}
	invS00 := S11 / det
	invS01 := -S01 / det
	invS10 := -S10 / det
	invS11 := S00 / det

	// Kalman gain K = P * H^T * S^-1 (4x2).
	var K [8]float64
	for i := 0; i < 4; i++ {
		K[i*2+0] = f.P[i*4+0]*invS00 + f.P[i*4+1]*invS10
		K[i*2+1] = f.P[i*4+0]*invS01 + f.P[i*4+1]*invS11
	}

	f.x += K[0*2+0]*yX + K[0*2+1]*yY
	f.y += K[1*2+0]*yX + K[1*2+1]*yY
	f.vx += K[2*2+0]*yX + K[2*2+1]*yY
	f.vy += K[3*2+0]*yX + K[3*2+1]*yY

	// P' = (I - K*H) * P
	var IKH [16]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			identity := 0.0
			if i == j {
				identity = 1
			}
			var kh float64
			if j == 0 {
				kh = K[i*2+0]
			} else if j == 1 {
				kh = K[i*2+1]
			}
			IKH[i*4+j] = identity - kh
		}
	}
	var newP [16]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += IKH[i*4+k] * f.P[k*4+j]
			}
			newP[i*4+j] = sum
		}
	}
	f.P = newP
}

// Estimator runs one constant-velocity filter per tracked joint and
// derives acceleration from the filtered velocity between frames.
type Estimator struct {
	filters      map[int]*jointFilter
	tracked      []int
	lastUpdateMs int64
}

// DefaultTrackedJoints are the joints the stroke pipeline needs smoothed
// kinematics for.
var DefaultTrackedJoints = []int{
	pose.LeftShoulder, pose.RightShoulder,
	pose.LeftElbow, pose.RightElbow,
	pose.LeftWrist, pose.RightWrist,
	pose.LeftHip, pose.RightHip,
	pose.LeftAnkle, pose.RightAnkle,
}

// NewEstimator creates an Estimator for the given joints. A nil or empty
// list tracks DefaultTrackedJoints.
func NewEstimator(joints []int) *Estimator {
	if len(joints) == 0 {
		joints = DefaultTrackedJoints
	}
	return &Estimator{
		filters: make(map[int]*jointFilter, len(joints)),
		tracked: joints,
	}
}

// Update runs one predict/update cycle for every tracked joint that is
// visible in this frame and returns the per-joint estimates. Joints
// below the visibility threshold are predicted but not corrected, so
// their estimates coast on the constant-velocity model.
func (e *Estimator) Update(joints *pose.Joints, timestampMs int64) map[int]Estimate {
	dt := DefaultFrameDt
	if e.lastUpdateMs > 0 && timestampMs > e.lastUpdateMs {
		dt = float64(timestampMs-e.lastUpdateMs) / float64(time.Second/time.Millisecond)
	}
	e.lastUpdateMs = timestampMs

	out := make(map[int]Estimate, len(e.tracked))
	for _, idx := range e.tracked {
		f := e.filters[idx]
		if f == nil {
			f = newJointFilter()
			e.filters[idx] = f
		}

		if !f.initialized {
			if !joints.Visible(idx) {
				continue
			}
			f.x = joints[idx].X
			f.y = joints[idx].Y
			f.initialized = true
			out[idx] = Estimate{X: f.x, Y: f.y}
			continue
		}

		f.predict(dt)
		if joints.Visible(idx) {
			f.update(joints[idx].X, joints[idx].Y)
		}

		ax := (f.vx - f.prevVX) / dt
		ay := (f.vy - f.prevVY) / dt
		f.prevVX, f.prevVY = f.vx, f.vy

		out[idx] = Estimate{X: f.x, Y: f.y, VX: f.vx, VY: f.vy, AX: ax, AY: ay}
	}
	return out
}

// Reset drops all filter state. Used when a session restarts.
func (e *Estimator) Reset() {
	e.filters = make(map[int]*jointFilter, len(e.tracked))
	e.lastUpdateMs = 0
}
