// Package pulse holds the graph clock rules for pulses.
//
// A pulse port stores the graph time at which it last fired. It counts as
// firing only during the tick whose graph time equals that timestamp.
package pulse

import "github.com/specialistvlad/stitchgrid/internal/portvalue"

// StartFrame is the frame on which "when prototype starts" fires. Frame 1
// runs at graph time zero, where no pulse can be observed.
const StartFrame = 2

// ShouldPulse reports whether a pulse stamped at pulseTime fires on the tick
// running at graphTime. Time zero never fires.
func ShouldPulse(pulseTime, graphTime float64) bool {
	if pulseTime == 0 && graphTime == 0 {
		return false
	}
	return pulseTime == graphTime
}

// Fired reads v as a pulse and applies ShouldPulse. Non-pulse values never fire.
func Fired(v portvalue.Value, graphTime float64) bool {
	t, ok := portvalue.AsPulse(v)
	return ok && ShouldPulse(t, graphTime)
}

// AnyFired reports whether any value of the loop fires at graphTime.
func AnyFired(vs portvalue.Values, graphTime float64) bool {
	for _, v := range vs {
		if Fired(v, graphTime) {
			return true
		}
	}
	return false
}

// ShouldRepeat is the repeating pulse rule: fire when at least every seconds
// have passed since the last fire. A non-positive period never fires.
func ShouldRepeat(current, last, every float64) bool {
	return every > 0 && current-last >= every
}

// IsPrototypeStartFrame reports whether frameCount is the start frame.
func IsPrototypeStartFrame(frameCount int) bool {
	return frameCount == StartFrame
}
