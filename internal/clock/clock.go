// Package clock abstracts wall-clock reads so rotation can run against
// synthetic time.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// System reads the process clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Func adapts a plain function, typically a fixed time in tests.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// Fixed returns a clock frozen at t.
func Fixed(t time.Time) Func {
	return func() time.Time { return t }
}
