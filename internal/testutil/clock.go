// SPDX-License-Identifier: MPL-2.0

package testutil

import "time"

// ReferenceTime is the instant FixedClock reports when given the zero time.
var ReferenceTime = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// FixedClock returns a clock function that always reports t, or
// ReferenceTime if t is zero. It fits emit.WithClock and distill.Options.
func FixedClock(t time.Time) func() time.Time {
	if t.IsZero() {
		t = ReferenceTime
	}
	return func() time.Time { return t }
}
