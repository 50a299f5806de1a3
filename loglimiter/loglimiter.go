// ir-recorder - record video when motion is seen, with scheduled IR lighting
// Copyright (C) 2019, The Cacophony Project
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

package loglimiter

import (
	"fmt"
	"log"
	"time"
)

// Forget old entries once this many distinct messages are tracked.
const maxEntries = 64

// New returns a new LogLimiter with the configured minimum log interval.
func New(interval time.Duration) *LogLimiter {
	return &LogLimiter{
		interval: interval,
		nowFunc:  time.Now,
		entries:  make(map[string]*entry),
	}
}

// LogLimiter will suppress log messages if the same log message is
// seen within some time interval. Each distinct message is limited on
// its own, so two alternating messages don't let each other through.
type LogLimiter struct {
	interval time.Duration
	nowFunc  func() time.Time
	entries  map[string]*entry
}

type entry struct {
	logged     time.Time
	suppressed int
}

func (limiter *LogLimiter) Printf(format string, v ...interface{}) {
	limiter.Print(fmt.Sprintf(format, v...))
}

func (limiter *LogLimiter) Print(s string) {
	now := limiter.nowFunc()
	e, ok := limiter.entries[s]
	if ok && now.Sub(e.logged) < limiter.interval {
		e.suppressed++
		return
	}

	if ok && e.suppressed > 0 {
		log.Printf("%s (repeated %d times)", s, e.suppressed)
	} else {
		log.Print(s)
	}

	if !ok {
		limiter.prune(now)
		e = new(entry)
		limiter.entries[s] = e
	}
	e.logged = now
	e.suppressed = 0
}

func (limiter *LogLimiter) prune(now time.Time) {
	if len(limiter.entries) < maxEntries {
		return
	}
	for s, e := range limiter.entries {
		if now.Sub(e.logged) >= limiter.interval {
			delete(limiter.entries, s)
		}
	}
}
