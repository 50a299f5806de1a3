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

package motion

import (
	"errors"
	"fmt"
)

const (
	FrameDiff  = "frame-diff"
	Background = "background"
)

type Config struct {
	Detector  string  `yaml:"detector"`
	Threshold float64 `yaml:"threshold"`
	BlurSigma float32 `yaml:"blur-sigma"`

	// PixelThresh binarises each pixel difference for the frame-diff
	// detector. Zero leaves the differences as they are.
	PixelThresh uint8 `yaml:"pixel-thresh"`

	// Background detector settings.
	BackgroundAlpha  float64 `yaml:"background-alpha"`
	ForegroundThresh uint8   `yaml:"foreground-thresh"`
	MinArea          int     `yaml:"min-area"`

	Verbose bool `yaml:"-"`
}

func DefaultConfig() Config {
	return Config{
		Detector:         FrameDiff,
		Threshold:        10,
		BackgroundAlpha:  0.05,
		ForegroundThresh: 25,
		MinArea:          1500,
	}
}

func (conf *Config) Validate() error {
	switch conf.Detector {
	case FrameDiff:
		if conf.Threshold <= 0 {
			return errors.New("threshold should be greater than 0")
		}
	case Background:
		if conf.BackgroundAlpha <= 0 || conf.BackgroundAlpha > 1 {
			return errors.New("background-alpha should be in range (0, 1]")
		}
		if conf.MinArea < 0 {
			return errors.New("min-area can't be negative")
		}
	default:
		return fmt.Errorf("unknown motion detector %q", conf.Detector)
	}
	if conf.BlurSigma < 0 {
		return errors.New("blur-sigma can't be negative")
	}
	return nil
}

// NewDetector returns the detector selected by conf.Detector.
func NewDetector(conf Config) (Detector, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	if conf.Detector == Background {
		return NewBackgroundDetector(conf), nil
	}
	return NewFrameDiffDetector(conf), nil
}
