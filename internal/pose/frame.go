package pose

// Frame is one enriched, immutable per-frame record. The kinematic
// fields are body-relative (torso-lengths per second) once the session
// scale has been calibrated; Normalized is false while outputs are still
// in raw image units.
//
// Derived angle metrics are pointers: nil means the joints required to
// compute the metric were missing in this frame, which downstream
// scoring must distinguish from a genuine zero.
type Frame struct {
	TimestampMs int64
	Joints      Joints

	// Smoothed kinematics for the dominant wrist.
	VelocityMag float64
	VelocityX   float64
	VelocityY   float64
	AccelMag    float64
	AccelX      float64
	AccelY      float64

	// Raw (pre-normalization) copies, kept for fallback scoring when the
	// body scale never became valid.
	RawVelocityMag float64
	RawAccelMag    float64

	// Body signals.
	BodyRotation   float64 // shoulder-line angle, degrees
	VerticalMotion float64 // dominant-wrist vertical speed, up positive
	Smoothness     float64 // local jerk estimate, lower is smoother

	// Optional derived metrics.
	ElbowAngle      *float64 // dominant-arm elbow angle, degrees
	HipShoulderSep  *float64 // hip vs shoulder line separation, degrees
	KneeBend        *float64 // mean knee angle, degrees
	HipHeight       *float64 // hip-midpoint Y
	WristHeight     *float64 // dominant-wrist Y
	HipRotationRate *float64 // hip-line angular speed, deg/s
	ShoulderRate    *float64 // shoulder-line angular speed, deg/s
	ElbowSpeed      *float64 // dominant-elbow linear speed
	WristSpeed      *float64 // dominant-wrist linear speed

	Normalized bool
}

// Float64Ptr returns a pointer to v. Used when building derived metrics.
func Float64Ptr(v float64) *float64 { return &v }
