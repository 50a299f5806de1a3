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
	"fmt"
	"path/filepath"
	"time"

	"github.com/TheCacophonyProject/event-reporter/eventclient"
	"github.com/coreos/go-systemd/daemon"
	yaml "gopkg.in/yaml.v2"

	"github.com/TheCacophonyProject/ir-recorder/loglimiter"
	"github.com/TheCacophonyProject/ir-recorder/monitor"
	"github.com/TheCacophonyProject/ir-recorder/motion"
	"github.com/TheCacophonyProject/ir-recorder/recorder"
)

const watchdogInterval = 5 * time.Second

// recordingListeners passes each callback on to every listener.
type recordingListeners []recorder.RecordingListener

func (ls recordingListeners) MotionDetected() {
	for _, l := range ls {
		l.MotionDetected()
	}
}

func (ls recordingListeners) RecordingStarted(s recorder.Session) {
	for _, l := range ls {
		l.RecordingStarted(s)
	}
}

func (ls recordingListeners) RecordingEnded(s recorder.Session, filename string) {
	for _, l := range ls {
		l.RecordingEnded(s, filename)
	}
}

// eventListener queues recording events with the event reporter.
type eventListener struct {
	log     *loglimiter.LogLimiter
	addFunc func(eventclient.Event) error
}

func (e *eventListener) MotionDetected() {}

func (e *eventListener) RecordingStarted(s recorder.Session) {
	e.add(eventclient.Event{
		Timestamp: s.StartedAt,
		Type:      "irRecordingStarted",
		Details: map[string]interface{}{
			"id": s.ID,
		},
	})
}

func (e *eventListener) RecordingEnded(s recorder.Session, filename string) {
	e.add(eventclient.Event{
		Timestamp: s.StoppedAt,
		Type:      "irRecordingEnded",
		Details: map[string]interface{}{
			"id":          s.ID,
			"file":        filepath.Base(filename),
			"lastMotion":  s.LastMotionAt.Format(time.RFC3339),
			"durationSec": s.StoppedAt.Sub(s.StartedAt).Seconds(),
		},
	})
}

func (e *eventListener) add(event eventclient.Event) {
	if e.log == nil {
		e.log = loglimiter.New(time.Minute)
	}
	add := e.addFunc
	if add == nil {
		add = eventclient.AddEvent
	}
	if err := add(event); err != nil {
		e.log.Printf("failed to queue %s event: %v", event.Type, err)
	}
}

// watchdog pets the systemd watchdog while ticks keep completing.
type watchdog struct {
	every  int
	count  int
	notify func(state string)
}

func newWatchdog(tick time.Duration) *watchdog {
	every := int(watchdogInterval / tick)
	if every < 1 {
		every = 1
	}
	return &watchdog{
		every: every,
		notify: func(state string) {
			daemon.SdNotify(false, state)
		},
	}
}

func (w *watchdog) TickCompleted(monitor.Status) {
	if w.count++; w.count >= w.every {
		w.notify("WATCHDOG=1")
		w.count = 0
	}
}

func (w *watchdog) CaptureFailed(error)   {}
func (w *watchdog) RecordingFailed(error) {}

func motionConfigYAML(conf motion.Config) string {
	buf, err := yaml.Marshal(conf)
	if err != nil {
		panic(fmt.Sprintf("failed to convert motion config to YAML: %v", err))
	}
	return string(buf)
}
