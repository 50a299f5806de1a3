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

package monitor

import (
	"errors"
	"fmt"
	"time"

	"github.com/TheCacophonyProject/ir-recorder/motion"
)

// FrameSource supplies frames from a camera.
type FrameSource interface {
	Capture() (*motion.Frame, error)
	Close() error
}

// CaptureError wraps a failure to get a frame from the FrameSource.
type CaptureError struct {
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture failed: %v", e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time                         { return time.Now() }
func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

type Config struct {
	TickInterval       time.Duration `yaml:"tick-interval"`
	MaxCaptureFailures int           `yaml:"max-capture-failures"`
}

func DefaultConfig() Config {
	return Config{
		TickInterval:       100 * time.Millisecond,
		MaxCaptureFailures: 10,
	}
}

func (conf *Config) Validate() error {
	if conf.TickInterval <= 0 {
		return errors.New("tick-interval should be greater than 0")
	}
	if conf.MaxCaptureFailures < 1 {
		return errors.New("max-capture-failures should be at least 1")
	}
	return nil
}
