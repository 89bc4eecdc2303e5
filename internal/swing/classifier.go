package swing

import (
	"math"

	"github.com/courtside-data/stroke.report/internal/config"
	"github.com/courtside-data/stroke.report/internal/pose"
)

// Classification thresholds, body-relative units. Ordered rules: the
// vertical-motion tests run before the rotation tests, so an upward
// smash never misreads as a groundstroke.
const (
	ServeVerticalMin    = 0.9 // strongly upward racket drive
	ServeVelocityMin    = 1.5
	OverheadVerticalMin = 0.5
	OverheadVelocityMin = 1.0
	VolleyVerticalMax   = 0.25
	VolleyVelocityMax   = 1.1
	VolleyVelocityMin   = 0.4
	GroundRotationMin   = 12.0 // degrees; below this the signature is ambiguous
)

// Classifier assigns a stroke-type label from the kinematic signature at
// and around contact. Rule-based; thresholds above are the model.
type Classifier struct {
	leftHanded bool
}

// NewClassifier creates a Classifier for the given handedness.
func NewClassifier(leftHanded bool) *Classifier {
	return &Classifier{leftHanded: leftHanded}
}

// Classify applies the ordered heuristic rules. Rotation sign is
// mirrored for left-handed players before the forehand/backhand split,
// so a mirrored swing classifies identically.
func (c *Classifier) Classify(velocity, accel, rotation, verticalMotion float64) StrokeType {
	_ = accel // reserved: acceleration currently informs quality, not type

	if verticalMotion >= ServeVerticalMin && velocity >= ServeVelocityMin {
		return StrokeServe
	}
	if verticalMotion >= OverheadVerticalMin && velocity >= OverheadVelocityMin {
		return StrokeOverhead
	}
	if verticalMotion <= VolleyVerticalMax && velocity >= VolleyVelocityMin && velocity <= VolleyVelocityMax {
		return StrokeVolley
	}

	if c.leftHanded {
		rotation = -rotation
	}
	if math.Abs(rotation) >= GroundRotationMin {
		if rotation > 0 {
			return StrokeForehand
		}
		return StrokeBackhand
	}
	return StrokeGroundstroke
}

// HandednessVoteFrames is how many comparative wrist-speed observations
// the auto-voter accumulates before locking in a dominant hand.
const HandednessVoteFrames = 30

// HandednessVoter auto-detects the dominant hand by comparing wrist
// speeds over the first seconds of a session. An explicit configuration
// short-circuits voting.
type HandednessVoter struct {
	explicit  string
	leftVotes int
	votes     int
	resolved  string
}

// NewHandednessVoter creates a voter. hand config.HandLeft/HandRight
// resolves immediately; config.HandAuto enables voting.
func NewHandednessVoter(hand string) *HandednessVoter {
	v := &HandednessVoter{explicit: hand}
	if hand == config.HandLeft || hand == config.HandRight {
		v.resolved = hand
	}
	return v
}

// Observe feeds one frame's wrist speeds into the vote. Frames where
// either wrist is effectively still carry no signal and are skipped.
func (v *HandednessVoter) Observe(joints *pose.Joints, leftSpeed, rightSpeed float64) {
	if v.resolved != "" {
		return
	}
	if !joints.AllVisible(pose.LeftWrist, pose.RightWrist) {
		return
	}
	if leftSpeed < 1e-6 && rightSpeed < 1e-6 {
		return
	}
	if leftSpeed > rightSpeed {
		v.leftVotes++
	}
	v.votes++
	if v.votes >= HandednessVoteFrames {
		if v.leftVotes*2 > v.votes {
			v.resolved = config.HandLeft
		} else {
			v.resolved = config.HandRight
		}
	}
}

// Hand returns the resolved handedness; before resolution it reports
// right (the majority default) and false.
func (v *HandednessVoter) Hand() (string, bool) {
	if v.resolved != "" {
		return v.resolved, true
	}
	return config.HandRight, false
}

// Reset re-arms voting for a new session. An explicit hand stays fixed.
func (v *HandednessVoter) Reset() {
	v.leftVotes = 0
	v.votes = 0
	if v.explicit == config.HandLeft || v.explicit == config.HandRight {
		v.resolved = v.explicit
	} else {
		v.resolved = ""
	}
}
