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
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/TheCacophonyProject/ir-recorder/illumination"
	"github.com/TheCacophonyProject/ir-recorder/loglimiter"
	"github.com/TheCacophonyProject/ir-recorder/motion"
	"github.com/TheCacophonyProject/ir-recorder/recorder"
)

var errNoFrame = errors.New("no frame returned")

// Status is a snapshot of the loop taken after each tick.
type Status struct {
	Ticks       uint64
	LastFrameAt time.Time
	LastScore   float64
	Motion      bool
	Recording   bool
	SessionID   string
	Illuminated bool
}

// Observer is told about each tick. Implementations must not block.
type Observer interface {
	TickCompleted(Status)
	CaptureFailed(err error)
	RecordingFailed(err error)
}

func New(
	conf Config,
	source FrameSource,
	detector motion.Detector,
	controller *recorder.Controller,
	lights *illumination.Controller,
	clock Clock,
	observers ...Observer,
) *Monitor {
	if clock == nil {
		clock = RealClock{}
	}
	return &Monitor{
		conf:       conf,
		source:     source,
		detector:   detector,
		controller: controller,
		lights:     lights,
		clock:      clock,
		observers:  observers,
		log:        loglimiter.New(time.Minute),
	}
}

// Monitor runs the capture, detect and record loop. Everything except
// Status and RecentFrame must be called from a single goroutine.
type Monitor struct {
	conf       Config
	source     FrameSource
	detector   motion.Detector
	controller *recorder.Controller
	lights     *illumination.Controller
	clock      Clock
	observers  []Observer
	log        *loglimiter.LogLimiter

	previous *motion.Frame
	failures int
	ticks    uint64
	closed   bool

	mu     sync.Mutex
	status Status
	recent *motion.Frame
}

// Run calls Tick every TickInterval until ctx is cancelled or a tick
// fails. Cancellation is not an error.
func (m *Monitor) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		start := m.clock.Now()
		if err := m.Tick(); err != nil {
			return err
		}
		wait := m.conf.TickInterval - m.clock.Now().Sub(start)
		if wait < 0 {
			wait = 0
		}
		select {
		case <-ctx.Done():
			return nil
		case <-m.clock.After(wait):
		}
	}
}

// Tick runs one pass of the loop. Only fatal conditions are returned.
func (m *Monitor) Tick() error {
	now := m.clock.Now()
	m.ticks++

	if err := m.lights.Update(now); err != nil {
		m.log.Printf("failed to set illumination: %v", err)
	}

	frame, err := m.source.Capture()
	if err == nil && frame == nil {
		err = errNoFrame
	}
	if err != nil {
		return m.captureFailed(err)
	}
	m.failures = 0
	if frame.Timestamp.IsZero() {
		frame.Timestamp = now
	}

	if m.previous == nil || !m.previous.SameSize(frame) {
		m.previous = frame
		m.publish(frame, motion.Result{})
		return nil
	}

	res := m.detector.Compare(m.previous, frame)
	if err := m.controller.Update(res.Motion, now); err != nil {
		m.recordingFailed(err)
	}
	if err := m.controller.WriteFrame(frame); err != nil {
		m.recordingFailed(err)
	}
	m.previous = frame
	m.publish(frame, res)
	return nil
}

func (m *Monitor) captureFailed(err error) error {
	m.failures++
	captureErr := &CaptureError{Err: err}
	m.log.Print(captureErr.Error())
	for _, o := range m.observers {
		o.CaptureFailed(captureErr)
	}
	if m.failures >= m.conf.MaxCaptureFailures {
		return fmt.Errorf("giving up after %d consecutive failures: %w", m.failures, captureErr)
	}
	return nil
}

func (m *Monitor) recordingFailed(err error) {
	m.log.Print(err.Error())
	for _, o := range m.observers {
		o.RecordingFailed(err)
	}
}

func (m *Monitor) publish(frame *motion.Frame, res motion.Result) {
	s := Status{
		Ticks:       m.ticks,
		LastFrameAt: frame.Timestamp,
		LastScore:   res.Score,
		Motion:      res.Motion,
		Recording:   m.controller.IsRecording(),
		Illuminated: m.lights.IsOn(),
	}
	if session, ok := m.controller.Session(); ok {
		s.SessionID = session.ID
	}

	m.mu.Lock()
	m.status = s
	m.recent = frame
	m.mu.Unlock()

	for _, o := range m.observers {
		o.TickCompleted(s)
	}
}

// Status returns the snapshot from the most recent tick. It is safe to
// call from any goroutine.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// RecentFrame returns a copy of the most recently captured frame, or nil
// if there isn't one yet. It is safe to call from any goroutine.
func (m *Monitor) RecentFrame() *motion.Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recent == nil {
		return nil
	}
	return m.recent.CreateCopy()
}

// Close stops any recording, turns off and releases the illumination
// line and closes the frame source. Every step is attempted even if an
// earlier one fails.
func (m *Monitor) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	var err error
	err = multierr.Append(err, m.controller.Stop(m.clock.Now()))
	err = multierr.Append(err, m.lights.Off())
	err = multierr.Append(err, m.lights.Release())
	err = multierr.Append(err, m.source.Close())
	if err != nil {
		log.Printf("cleanup complete with errors: %v", err)
	} else {
		log.Print("cleanup complete")
	}
	return err
}
