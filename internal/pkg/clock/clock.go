// Package clock provides the evaluation clock handed to time dependent components.
package clock

import "time"

// Func returns the current time.
type Func func() time.Time

// System is the wall clock in UTC.
func System() time.Time {
	return time.Now().UTC()
}

// Fixed returns a clock frozen at t.
func Fixed(t time.Time) Func {
	return func() time.Time { return t }
}
