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
	"errors"
	"fmt"
	"time"

	"github.com/TheCacophonyProject/window"
)

const (
	TerminationFixedDuration = "fixed-duration"
	TerminationMotionTimeout = "motion-timeout"
)

type RecorderConfig struct {
	Termination string           `yaml:"termination"`
	Duration    time.Duration    `yaml:"duration"`
	Timeout     time.Duration    `yaml:"timeout"`
	WindowStart window.TimeOfDay `yaml:"window-start"`
	WindowEnd   window.TimeOfDay `yaml:"window-end"`

	// NamePrefix is prepended to recording names, normally the device
	// name.
	NamePrefix string `yaml:"-"`
}

func DefaultConfig() RecorderConfig {
	return RecorderConfig{
		Termination: TerminationMotionTimeout,
		Duration:    180 * time.Second,
		Timeout:     30 * time.Second,
	}
}

func (conf *RecorderConfig) Validate() error {
	if conf.WindowStart.IsZero() && !conf.WindowEnd.IsZero() {
		return errors.New("window-end is set but window-start isn't")
	}
	if !conf.WindowStart.IsZero() && conf.WindowEnd.IsZero() {
		return errors.New("window-start is set but window-end isn't")
	}
	_, err := conf.Policy()
	return err
}

// Policy returns the termination policy named by Termination.
func (conf *RecorderConfig) Policy() (TerminationPolicy, error) {
	switch conf.Termination {
	case TerminationFixedDuration:
		if conf.Duration <= 0 {
			return nil, errors.New("duration should be greater than 0")
		}
		return FixedDuration{Duration: conf.Duration}, nil
	case TerminationMotionTimeout:
		if conf.Timeout <= 0 {
			return nil, errors.New("timeout should be greater than 0")
		}
		return MotionTimeout{Timeout: conf.Timeout}, nil
	}
	return nil, fmt.Errorf("unknown termination policy %q", conf.Termination)
}

// Window returns the recording window, or nil when recording is allowed
// all day.
func (conf *RecorderConfig) Window() *window.Window {
	if conf.WindowStart.IsZero() {
		return nil
	}
	return window.New(conf.WindowStart.Time, conf.WindowEnd.Time)
}
