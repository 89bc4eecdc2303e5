package swing

import (
	"github.com/courtside-data/stroke.report/internal/config"
	"github.com/courtside-data/stroke.report/internal/pose"
)

// detectorState is the boundary detector's lifecycle state. The old
// scattered threshold branches are folded into one explicit state
// machine with a hysteresis counter.
type detectorState string

const (
	detectorIdle     detectorState = "idle"     // velocity below floor
	detectorArmed    detectorState = "armed"    // sustained fast motion, scanning for a peak
	detectorCooldown detectorState = "cooldown" // recent commit, detections suppressed
)

// armHysteresis is how many consecutive frames must cross the velocity
// floor before the detector arms; disarmHysteresis is how many settled
// frames end the scan. Single-frame spikes never arm it.
const (
	armHysteresis    = 2
	disarmHysteresis = 3
)

// Detector scans the history buffer's velocity profile for a plausible
// contact-point peak. It guarantees at most one committed detection per
// cooldown interval; overlapping strokes inside the cooldown are
// deliberately dropped.
type Detector struct {
	cfg *config.TuningConfig

	state           detectorState
	hysteresis      int
	lastDetectionMs int64
}

// NewDetector creates a Detector with the given tuning.
func NewDetector(cfg *config.TuningConfig) *Detector {
	return &Detector{cfg: cfg, state: detectorIdle}
}

// State returns the current lifecycle state, for diagnostics.
func (d *Detector) State() string { return string(d.state) }

// Scan runs once per appended frame. It returns the candidate contact
// index into the history's frame slice and true when a plausible
// interior peak survives all rejection rules. A surviving candidate is
// not a detection yet: the phase segmenter must validate it before the
// caller commits.
func (d *Detector) Scan(h *pose.History) (contactIdx int, ok bool) {
	frames := h.Frames()
	n := len(frames)
	if n == 0 {
		return 0, false
	}
	now := frames[n-1].TimestampMs

	d.step(frames[n-1], now)
	if d.state != detectorArmed {
		return 0, false
	}

	if n < d.cfg.GetMinHistoryFrames() {
		return 0, false
	}

	// Peak search over the most recent window.
	window := d.cfg.GetDetectionWindowFrames()
	start := n - window
	if start < 0 {
		start = 0
	}
	peak := start
	for i := start + 1; i < n; i++ {
		if frames[i].VelocityMag > frames[peak].VelocityMag {
			peak = i
		}
	}

	// An edge maximum is a rising or truncated profile, not a contact.
	if peak == start || peak == n-1 {
		return 0, false
	}
	if frames[peak].VelocityMag < d.cfg.GetMinVelocityFloor() {
		return 0, false
	}
	return peak, true
}

// step advances the idle/armed/cooldown state machine for one frame.
func (d *Detector) step(latest pose.Frame, nowMs int64) {
	if d.state == detectorCooldown {
		if nowMs-d.lastDetectionMs >= d.cfg.GetCooldown().Milliseconds() {
			d.state = detectorIdle
			d.hysteresis = 0
		} else {
			return
		}
	}

	switch d.state {
	case detectorIdle:
		if latest.VelocityMag >= d.cfg.GetMinVelocityFloor() {
			d.hysteresis++
			if d.hysteresis >= armHysteresis {
				d.state = detectorArmed
				d.hysteresis = 0
			}
		} else {
			d.hysteresis = 0
		}
	case detectorArmed:
		// Disarm only once the body has settled below the stillness
		// threshold for a few frames. The decay tail after a peak must
		// stay scannable until the follow-through completes and the
		// segmenter can validate the candidate.
		if latest.VelocityMag < d.cfg.GetStillnessThreshold() {
			d.hysteresis++
			if d.hysteresis >= disarmHysteresis {
				d.state = detectorIdle
				d.hysteresis = 0
			}
		} else {
			d.hysteresis = 0
		}
	}
}

// Commit records a validated detection and enters the cooldown window.
func (d *Detector) Commit(timestampMs int64) {
	d.lastDetectionMs = timestampMs
	d.state = detectorCooldown
	d.hysteresis = 0
}

// InCooldown reports whether a detection at nowMs would be suppressed.
func (d *Detector) InCooldown(nowMs int64) bool {
	if d.lastDetectionMs == 0 {
		return false
	}
	return nowMs-d.lastDetectionMs < d.cfg.GetCooldown().Milliseconds()
}

// Reset clears detection state, including cooldown timing.
func (d *Detector) Reset() {
	d.state = detectorIdle
	d.hysteresis = 0
	d.lastDetectionMs = 0
}
