// ir-recorder - record video when motion is seen, with scheduled IR lighting
//  Copyright (C) 2026, The Cacophony Project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package recorder

import (
	"fmt"
	"time"
)

// TerminationPolicy decides when an open session should be closed.
type TerminationPolicy interface {
	ShouldStop(s Session, motion bool, now time.Time) bool
	String() string
}

// FixedDuration stops a session once it has run for Duration. It is only
// checked on ticks without motion, so continuous motion keeps the
// session open past Duration.
type FixedDuration struct {
	Duration time.Duration
}

func (p FixedDuration) ShouldStop(s Session, motion bool, now time.Time) bool {
	if motion {
		return false
	}
	return now.Sub(s.StartedAt) >= p.Duration
}

func (p FixedDuration) String() string {
	return fmt.Sprintf("fixed duration %v", p.Duration)
}

// MotionTimeout stops a session once no motion has been seen for longer
// than Timeout.
type MotionTimeout struct {
	Timeout time.Duration
}

func (p MotionTimeout) ShouldStop(s Session, motion bool, now time.Time) bool {
	return now.Sub(s.LastMotionAt) > p.Timeout
}

func (p MotionTimeout) String() string {
	return fmt.Sprintf("motion timeout %v", p.Timeout)
}
