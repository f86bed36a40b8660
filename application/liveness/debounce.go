package liveness

// ObserveStable feeds one frame observation into a consecutive-detection
// counter and reports whether the counter has reached the stability
// threshold. A single disqualifying frame resets the counter to zero; there
// is no leaky bucket and no decay, a single miss restarts the count. The
// detector output is noisy (a genuine blink can read as a missing face for a
// frame), so no single frame may flip system state.
func ObserveStable(counter *int, qualifies bool, threshold int) bool {
	if !qualifies {
		*counter = 0
		return false
	}
	*counter++
	return *counter >= threshold
}
