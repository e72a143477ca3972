package modem

/*------------------------------------------------------------------
 *
 * Purpose:	Schmitt trigger (hysteresis between a low and a high
 *		threshold) and falling-edge trigger, used by the
 *		Schmidl-Cox correlator to find the sync plateau and its
 *		trailing edge.
 *
 *		Grounded on the teacher's pll_dcd.go hysteresis-based
 *		data-carrier-detect logic (a running score compared
 *		against on/off thresholds), generalized into a standalone
 *		two-threshold trigger instead of being inlined into one
 *		demodulator's DCD state.
 *
 *----------------------------------------------------------------*/

type schmittTrigger struct {
	low, high float32
	state     bool
}

func newSchmittTrigger(low, high float32) *schmittTrigger {
	return &schmittTrigger{low: low, high: high}
}

// update feeds one sample and returns the trigger's new state: once
// high, stays high until the input drops below low; once low, stays
// low until the input rises above high.
func (s *schmittTrigger) update(x float32) bool {
	if s.state {
		if x < s.low {
			s.state = false
		}
	} else {
		if x > s.high {
			s.state = true
		}
	}
	return s.state
}

// fallingEdgeTrigger reports true only on the single sample where the
// input transitions from true to false (prev && !curr).
type fallingEdgeTrigger struct {
	prev bool
}

func (f *fallingEdgeTrigger) update(curr bool) bool {
	edge := f.prev && !curr
	f.prev = curr
	return edge
}
