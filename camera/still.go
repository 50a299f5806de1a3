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
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"os/exec"
	"strconv"
	"time"

	"github.com/TheCacophonyProject/ir-recorder/motion"
)

type runFunc func(name string, args ...string) ([]byte, error)

// StillCommand captures each frame by running a still capture program
// that writes a JPEG to stdout. The first command that can be found is
// used from then on.
type StillCommand struct {
	commands []string
	width    int
	height   int
	run      runFunc
	now      func() time.Time
}

func NewStillCommand(commands []string, width, height int) *StillCommand {
	return &StillCommand{
		commands: commands,
		width:    width,
		height:   height,
		run:      runCommand,
		now:      time.Now,
	}
}

func (s *StillCommand) Capture() (*motion.Frame, error) {
	var lastErr error
	for i, name := range s.commands {
		out, err := s.run(name, s.args()...)
		if errors.Is(err, exec.ErrNotFound) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		if i > 0 {
			s.commands = s.commands[i:]
		}
		img, err := jpeg.Decode(bytes.NewReader(out))
		if err != nil {
			return nil, fmt.Errorf("%s: bad jpeg: %w", name, err)
		}
		return motion.FromImage(img, s.now()), nil
	}
	return nil, fmt.Errorf("no still capture command available: %w", lastErr)
}

func (s *StillCommand) Close() error {
	return nil
}

func (s *StillCommand) args() []string {
	args := []string{"--nopreview", "--timeout", "1", "--output", "-"}
	if s.width > 0 && s.height > 0 {
		args = append(args,
			"--width", strconv.Itoa(s.width),
			"--height", strconv.Itoa(s.height))
	}
	return args
}

func runCommand(name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%s failed: %w (stderr: %s)", name, err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%s returned empty frame", name)
	}
	return stdout.Bytes(), nil
}
