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

package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TheCacophonyProject/ir-recorder/monitor"
	"github.com/TheCacophonyProject/ir-recorder/recorder"
)

// Metrics holds Prometheus counters and gauges for the recorder. It
// observes the monitor loop and the recording controller.
type Metrics struct {
	registry          *prometheus.Registry
	ticksTotal        prometheus.Counter
	motionTotal       prometheus.Counter
	captureErrors     prometheus.Counter
	recordingsStarted prometheus.Counter
	recordingsStopped prometheus.Counter
	recordingErrors   *prometheus.CounterVec
	motionScore       prometheus.Gauge
	recording         prometheus.Gauge
	illuminated       prometheus.Gauge
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "irrecorder_ticks_total",
			Help: "Total number of frames processed",
		}),
		motionTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "irrecorder_motion_frames_total",
			Help: "Total number of frames where motion was detected",
		}),
		captureErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "irrecorder_capture_errors_total",
			Help: "Total number of failed frame captures",
		}),
		recordingsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "irrecorder_recordings_started_total",
			Help: "Total number of recordings started",
		}),
		recordingsStopped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "irrecorder_recordings_stopped_total",
			Help: "Total number of recordings stopped",
		}),
		recordingErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "irrecorder_recording_errors_total",
			Help: "Total number of recording failures by stage",
		}, []string{"stage"}),
		motionScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "irrecorder_motion_score",
			Help: "Motion score of the most recent frame",
		}),
		recording: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "irrecorder_recording",
			Help: "1 while a recording is in progress",
		}),
		illuminated: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "irrecorder_illumination_on",
			Help: "1 while the illumination is on",
		}),
	}

	registry.MustRegister(
		m.ticksTotal,
		m.motionTotal,
		m.captureErrors,
		m.recordingsStarted,
		m.recordingsStopped,
		m.recordingErrors,
		m.motionScore,
		m.recording,
		m.illuminated,
	)
	return m
}

func (m *Metrics) TickCompleted(s monitor.Status) {
	m.ticksTotal.Inc()
	if s.Motion {
		m.motionTotal.Inc()
	}
	m.motionScore.Set(s.LastScore)
	m.recording.Set(boolValue(s.Recording))
	m.illuminated.Set(boolValue(s.Illuminated))
}

func (m *Metrics) CaptureFailed(error) {
	m.captureErrors.Inc()
}

func (m *Metrics) RecordingFailed(err error) {
	var initErr *recorder.EncodeInitError
	var writeErr *recorder.EncodeWriteError
	switch {
	case errors.As(err, &initErr):
		m.recordingErrors.WithLabelValues("start").Inc()
	case errors.As(err, &writeErr):
		m.recordingErrors.WithLabelValues("write").Inc()
	default:
		m.recordingErrors.WithLabelValues("stop").Inc()
	}
}

func (m *Metrics) MotionDetected() {}

func (m *Metrics) RecordingStarted(recorder.Session) {
	m.recordingsStarted.Inc()
}

func (m *Metrics) RecordingEnded(recorder.Session, string) {
	m.recordingsStopped.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
