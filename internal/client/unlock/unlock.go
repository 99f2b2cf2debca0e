// Package unlock evaluates a file's time lock. The state is never cached:
// callers evaluate it against the current clock each time they need it, so a
// file flips from locked to unlockable the moment its unlock time passes.
package unlock

import "time"

// State is the lock state of a file at one instant.
type State int

const (
	// Locked means the unlock time is still in the future.
	Locked State = iota

	// Unlockable means the unlock time has passed and a download may proceed.
	Unlockable
)

func (s State) String() string {
	if s == Locked {
		return "locked"
	}
	return "unlockable"
}

// Evaluate returns the state of a file with the given unlock time as of now.
// The boundary belongs to Unlockable: at exactly the unlock time the file is
// open.
func Evaluate(unlockTime, now time.Time) State {
	if now.Before(unlockTime) {
		return Locked
	}
	return Unlockable
}

// RemainingMinutes is how long until the unlock time, in whole minutes,
// rounded up. An active lock always reports at least one minute; an expired
// one reports zero.
func RemainingMinutes(unlockTime, now time.Time) int64 {
	remaining := unlockTime.Sub(now)
	if remaining <= 0 {
		return 0
	}
	minutes := int64(remaining / time.Minute)
	if remaining%time.Minute != 0 {
		minutes++
	}
	return minutes
}
