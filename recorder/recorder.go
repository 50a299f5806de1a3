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

import "github.com/TheCacophonyProject/ir-recorder/motion"

// Recorder is the sink that turns a session into a file on disk.
type Recorder interface {
	CheckCanRecord() error
	StartRecording(id, pathHint string) (Handle, error)
	StopRecording(Handle) (string, error)
}

// Handle identifies an open recording.
type Handle interface {
	Name() string
}

// FrameWriter is implemented by recorders that encode the frames the
// monitor captures, so the camera only has one owner.
type FrameWriter interface {
	WriteFrame(h Handle, f *motion.Frame) error
}

type NoWriteRecorder struct{}

type noWriteHandle string

func (h noWriteHandle) Name() string { return string(h) }

func (*NoWriteRecorder) CheckCanRecord() error { return nil }
func (*NoWriteRecorder) StartRecording(id, pathHint string) (Handle, error) {
	return noWriteHandle(pathHint), nil
}
func (*NoWriteRecorder) StopRecording(h Handle) (string, error) { return h.Name(), nil }
