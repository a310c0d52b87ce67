// Package tween animates displayed numbers for the rendering layer.
// The analytics engine always reports instantaneous values; clients that
// want a count-up effect interpolate on top of them with this utility.
package tween

import (
	"context"
	"time"
)

// StepInterval is the spacing between emitted values, roughly one display
// frame.
const StepInterval = 16 * time.Millisecond

// Run emits intermediate values rising linearly from zero to target over
// the given duration, ending with exactly target, then closes the channel.
// A non-positive duration (or a zero target) emits the target immediately.
// A consumer that falls behind slows the animation down rather than
// dropping frames; a consumer that abandons the stream cancels ctx and
// the emitter stops instead of blocking forever.
func Run(ctx context.Context, target float64, duration time.Duration) <-chan float64 {
	out := make(chan float64, 1)
	steps := int(duration / StepInterval)
	if steps <= 0 || target == 0 {
		out <- target
		close(out)
		return out
	}

	increment := target / float64(steps)
	go func() {
		defer close(out)
		ticker := time.NewTicker(StepInterval)
		defer ticker.Stop()

		value := 0.0
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			value += increment
			next := value
			if done(value, target) {
				next = target
			}

			select {
			case <-ctx.Done():
				return
			case out <- next:
			}

			if next == target {
				return
			}
		}
	}()
	return out
}

// done reports whether the interpolated value has reached the target,
// regardless of the direction of travel.
func done(value, target float64) bool {
	if target >= 0 {
		return value >= target
	}
	return value <= target
}
