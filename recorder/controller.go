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
	"log"
	"time"

	"github.com/TheCacophonyProject/window"
	"github.com/google/uuid"

	"github.com/TheCacophonyProject/ir-recorder/motion"
)

var ErrOutsideWindow = errors.New("motion detected but outside of recording window")

const nameTimeFormat = "20060102.150405.000"

// Session is a single open recording.
type Session struct {
	ID           string
	StartedAt    time.Time
	LastMotionAt time.Time
	StoppedAt    time.Time
	Handle       Handle
}

type RecordingListener interface {
	MotionDetected()
	RecordingStarted(Session)
	RecordingEnded(s Session, filename string)
}

type nullListener struct{}

func (nullListener) MotionDetected()                {}
func (nullListener) RecordingStarted(Session)       {}
func (nullListener) RecordingEnded(Session, string) {}

func NewController(rec Recorder, conf *RecorderConfig, listener RecordingListener) (*Controller, error) {
	policy, err := conf.Policy()
	if err != nil {
		return nil, err
	}
	c := NewControllerWithPolicy(rec, policy, conf.Window(), listener)
	c.namePrefix = conf.NamePrefix
	return c, nil
}

// NewControllerWithPolicy builds a controller from its parts. w may be
// nil, in which case recording is allowed at any time of day.
func NewControllerWithPolicy(
	rec Recorder,
	policy TerminationPolicy,
	w *window.Window,
	listener RecordingListener,
) *Controller {
	if listener == nil {
		listener = nullListener{}
	}
	c := &Controller{
		recorder: rec,
		policy:   policy,
		window:   w,
		listener: listener,
	}
	if w != nil {
		w.Now = func() time.Time { return c.now }
	}
	return c
}

// Controller is the Idle/Recording state machine. It holds at most one
// session; a nil session means Idle.
type Controller struct {
	recorder   Recorder
	policy     TerminationPolicy
	window     *window.Window
	listener   RecordingListener
	namePrefix string
	session    *Session
	now        time.Time
}

// Update feeds one motion decision into the controller. Returned errors
// are session scoped; the controller is always left in a usable state.
func (c *Controller) Update(motion bool, now time.Time) error {
	if motion {
		c.listener.MotionDetected()
	}
	if c.session == nil {
		if motion {
			return c.Start(now)
		}
		return nil
	}

	if motion {
		c.session.LastMotionAt = now
	}
	if c.policy.ShouldStop(*c.session, motion, now) {
		return c.Stop(now)
	}
	return nil
}

// Start opens a new session. It does nothing if one is already open.
func (c *Controller) Start(now time.Time) error {
	if c.session != nil {
		return nil
	}
	c.now = now

	if err := c.canStartWriting(); err != nil {
		return &EncodeInitError{Err: err}
	}
	id := uuid.NewString()
	h, err := c.recorder.StartRecording(id, c.pathHint(now))
	if err != nil {
		return &EncodeInitError{SessionID: id, Err: err}
	}

	c.session = &Session{
		ID:           id,
		StartedAt:    now,
		LastMotionAt: now,
		Handle:       h,
	}
	log.Printf("recording started: %s", h.Name())
	c.listener.RecordingStarted(*c.session)
	return nil
}

// Stop closes the open session. It does nothing when idle.
func (c *Controller) Stop(now time.Time) error {
	if c.session == nil {
		return nil
	}
	s := *c.session
	s.StoppedAt = now
	c.session = nil
	c.now = now

	filename, err := c.recorder.StopRecording(s.Handle)
	c.listener.RecordingEnded(s, filename)
	if err != nil {
		return &EncodeCloseError{SessionID: s.ID, Err: err}
	}
	log.Printf("recording stopped: %s (%v)", filename, now.Sub(s.StartedAt).Round(time.Millisecond))
	return nil
}

// WriteFrame passes a captured frame to the open session when the
// recorder encodes frames itself. It does nothing when idle.
func (c *Controller) WriteFrame(f *motion.Frame) error {
	if c.session == nil {
		return nil
	}
	w, ok := c.recorder.(FrameWriter)
	if !ok {
		return nil
	}
	if err := w.WriteFrame(c.session.Handle, f); err != nil {
		return &EncodeWriteError{SessionID: c.session.ID, Err: err}
	}
	return nil
}

func (c *Controller) IsRecording() bool {
	return c.session != nil
}

// Session returns a copy of the open session.
func (c *Controller) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

func (c *Controller) Policy() TerminationPolicy {
	return c.policy
}

func (c *Controller) canStartWriting() error {
	if c.window != nil && !c.window.Active() {
		return ErrOutsideWindow
	}
	return c.recorder.CheckCanRecord()
}

func (c *Controller) pathHint(now time.Time) string {
	name := now.Format(nameTimeFormat)
	if c.namePrefix == "" {
		return name
	}
	return c.namePrefix + "_" + name
}
