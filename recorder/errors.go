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

import "fmt"

// EncodeInitError is returned when a recording could not be started.
// The controller stays idle. SessionID is empty when the start was
// refused before a session was created.
type EncodeInitError struct {
	SessionID string
	Err       error
}

func (e *EncodeInitError) Error() string {
	return fmt.Sprintf("failed to start recording: %v", e.Err)
}

func (e *EncodeInitError) Unwrap() error { return e.Err }

// EncodeCloseError is returned when a recording could not be finalised.
// The session is discarded regardless.
type EncodeCloseError struct {
	SessionID string
	Err       error
}

func (e *EncodeCloseError) Error() string {
	return fmt.Sprintf("failed to stop recording %s: %v", e.SessionID, e.Err)
}

func (e *EncodeCloseError) Unwrap() error { return e.Err }

// EncodeWriteError is returned when a frame couldn't be passed to the
// open recording. The session stays open.
type EncodeWriteError struct {
	SessionID string
	Err       error
}

func (e *EncodeWriteError) Error() string {
	return fmt.Sprintf("failed to write frame: %v", e.Err)
}

func (e *EncodeWriteError) Unwrap() error { return e.Err }
