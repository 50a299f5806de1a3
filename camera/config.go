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

package camera

import (
	"errors"
	"fmt"
	"time"

	"github.com/TheCacophonyProject/ir-recorder/monitor"
)

const (
	TypeWebcam = "webcam"
	TypeStill  = "still"
)

type Config struct {
	Type          string        `yaml:"type"`
	Device        string        `yaml:"device"`
	Width         int           `yaml:"width"`
	Height        int           `yaml:"height"`
	Timeout       time.Duration `yaml:"timeout"`
	StillCommands []string      `yaml:"still-commands"`
}

func DefaultConfig() Config {
	return Config{
		Type:          TypeWebcam,
		Device:        "/dev/video0",
		Width:         640,
		Height:        480,
		Timeout:       5 * time.Second,
		StillCommands: []string{"rpicam-jpeg", "libcamera-jpeg"},
	}
}

func (conf *Config) Validate() error {
	switch conf.Type {
	case TypeWebcam:
		if conf.Device == "" {
			return errors.New("device is required for a webcam")
		}
	case TypeStill:
		if len(conf.StillCommands) == 0 {
			return errors.New("still-commands can't be empty")
		}
	default:
		return fmt.Errorf("unknown camera type %q", conf.Type)
	}
	if conf.Width < 0 || conf.Height < 0 {
		return errors.New("width and height can't be negative")
	}
	if conf.Timeout < time.Second {
		return errors.New("timeout should be at least 1s")
	}
	return nil
}

// Open returns the frame source described by conf.
func Open(conf Config) (monitor.FrameSource, error) {
	if conf.Type == TypeStill {
		return NewStillCommand(conf.StillCommands, conf.Width, conf.Height), nil
	}
	cam, err := OpenWebcam(conf.Device, conf.Width, conf.Height, conf.Timeout)
	if err != nil {
		return nil, err
	}
	return cam, nil
}
