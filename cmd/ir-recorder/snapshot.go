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

package main

import (
	"errors"
	"image/png"
	"os"
	"path"
	"sync"
	"time"

	"github.com/TheCacophonyProject/ir-recorder/motion"
)

const (
	snapshotName          = "still.png"
	allowedSnapshotPeriod = 500 * time.Millisecond
)

type snapshotter struct {
	dir    string
	recent func() *motion.Frame
	now    func() time.Time

	mu           sync.Mutex
	previousTime time.Time
	previousAt   time.Time
}

func newSnapshotter(dir string, recent func() *motion.Frame) *snapshotter {
	return &snapshotter{
		dir:    dir,
		recent: recent,
		now:    time.Now,
	}
}

func (s *snapshotter) take() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.now().Sub(s.previousTime) < allowedSnapshotPeriod {
		return nil
	}

	f := s.recent()
	if f == nil {
		return errors.New("no frames yet")
	}
	// Check if frame had already been saved
	if !s.previousAt.IsZero() && f.Timestamp.Equal(s.previousAt) {
		return nil
	}

	out, err := os.Create(path.Join(s.dir, snapshotName))
	if err != nil {
		return err
	}
	defer out.Close()

	if err := png.Encode(out, f.Gray()); err != nil {
		return err
	}

	// the time will be changed only if the attempt is successful
	s.previousTime = s.now()
	s.previousAt = f.Timestamp
	return nil
}
