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
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/ir-recorder/illumination"
	"github.com/TheCacophonyProject/ir-recorder/motion"
	"github.com/TheCacophonyProject/ir-recorder/recorder"
)

// Noon, so the default schedule keeps the light off.
var start = time.Date(2026, 5, 6, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

// frameSource returns uniform frames with the given intensities.
type frameSource struct {
	values   []uint8
	errs     map[int]error
	captures int
	closed   bool
	closeErr error
	onEmpty  func()
}

func (s *frameSource) Capture() (*motion.Frame, error) {
	i := s.captures
	s.captures++
	if err, ok := s.errs[i]; ok {
		return nil, err
	}
	if len(s.values) == 0 {
		if s.onEmpty != nil {
			s.onEmpty()
		}
		return nil, errors.New("no more frames")
	}
	f := motion.NewFrame(8, 8)
	f.Fill(s.values[0])
	s.values = s.values[1:]
	return f, nil
}

func (s *frameSource) Close() error {
	s.closed = true
	return s.closeErr
}

type sink struct {
	recorder.NoWriteRecorder
	starts    []time.Time
	stops     int
	stopErr   error
	canRecord error
	frames    []*motion.Frame
	clock     Clock
}

func (s *sink) CheckCanRecord() error {
	return s.canRecord
}

func (s *sink) WriteFrame(h recorder.Handle, f *motion.Frame) error {
	s.frames = append(s.frames, f)
	return nil
}

func (s *sink) StartRecording(id, hint string) (recorder.Handle, error) {
	s.starts = append(s.starts, s.clock.Now())
	return s.NoWriteRecorder.StartRecording(id, hint)
}

func (s *sink) StopRecording(h recorder.Handle) (string, error) {
	s.stops++
	return h.Name(), s.stopErr
}

type line struct {
	writes   []bool
	released bool
	err      error
}

func (l *line) Set(on bool) error {
	l.writes = append(l.writes, on)
	return l.err
}

func (l *line) Release() error {
	l.released = true
	return nil
}

type observer struct {
	ticks         []Status
	captureErrs   int
	recordingErrs int
}

func (o *observer) TickCompleted(s Status) { o.ticks = append(o.ticks, s) }
func (o *observer) CaptureFailed(error)    { o.captureErrs++ }
func (o *observer) RecordingFailed(error)  { o.recordingErrs++ }

type fixture struct {
	m      *Monitor
	clock  *fakeClock
	source *frameSource
	sink   *sink
	line   *line
	obs    *observer
	ctrl   *recorder.Controller
}

func newFixture(values []uint8, policy recorder.TerminationPolicy) *fixture {
	clock := &fakeClock{now: start}
	source := &frameSource{values: values}
	s := &sink{clock: clock}
	l := new(line)
	obs := new(observer)
	ctrl := recorder.NewControllerWithPolicy(s, policy, nil, nil)
	lights := illumination.NewController(l, illumination.DefaultSchedule())
	conf := DefaultConfig()
	conf.TickInterval = time.Second
	conf.MaxCaptureFailures = 3
	detector := motion.NewFrameDiffDetector(motion.DefaultConfig())
	return &fixture{
		m:      New(conf, source, detector, ctrl, lights, clock, obs),
		clock:  clock,
		source: source,
		sink:   s,
		line:   l,
		obs:    obs,
		ctrl:   ctrl,
	}
}

func TestScenarioStartsAndStopsRecording(t *testing.T) {
	// Differences between consecutive frames: 2, 15, 15, 3, 3, 3, 3, 3, 3.
	values := []uint8{0, 2, 17, 2, 5, 2, 5, 2, 5, 2}
	f := newFixture(values, recorder.MotionTimeout{Timeout: 5 * time.Second})

	startedAt, stoppedAt := -1, -1
	for tick := 0; tick < len(values); tick++ {
		f.clock.now = start.Add(time.Duration(tick) * time.Second)
		wasRecording := f.ctrl.IsRecording()
		require.NoError(t, f.m.Tick())
		if !wasRecording && f.ctrl.IsRecording() {
			startedAt = tick
		}
		if wasRecording && !f.ctrl.IsRecording() {
			stoppedAt = tick
		}
	}

	assert.Equal(t, 2, startedAt)
	assert.Equal(t, 9, stoppedAt)
	assert.Equal(t, []time.Time{start.Add(2 * time.Second)}, f.sink.starts)
	assert.Equal(t, 1, f.sink.stops)

	scores := []float64{}
	for _, s := range f.obs.ticks[1:] {
		scores = append(scores, s.LastScore)
	}
	assert.Equal(t, []float64{2, 15, 15, 3, 3, 3, 3, 3, 3}, scores)
}

func TestFirstFrameIsOnlyStored(t *testing.T) {
	f := newFixture([]uint8{0, 200}, recorder.MotionTimeout{Timeout: time.Second})

	require.NoError(t, f.m.Tick())
	assert.False(t, f.ctrl.IsRecording())
	assert.Equal(t, 0.0, f.m.Status().LastScore)
	assert.NotNil(t, f.m.RecentFrame())

	require.NoError(t, f.m.Tick())
	assert.True(t, f.ctrl.IsRecording())
	status := f.m.Status()
	assert.True(t, status.Recording)
	assert.NotEmpty(t, status.SessionID)
	assert.Equal(t, 200.0, status.LastScore)
}

func TestIlluminationIsWrittenEveryTick(t *testing.T) {
	f := newFixture([]uint8{1, 1, 1}, recorder.MotionTimeout{Timeout: time.Second})

	require.NoError(t, f.m.Tick())
	f.clock.now = time.Date(2026, 5, 6, 18, 0, 0, 0, time.UTC)
	require.NoError(t, f.m.Tick())
	require.NoError(t, f.m.Tick())
	assert.Equal(t, []bool{false, true, true}, f.line.writes)
	assert.True(t, f.m.Status().Illuminated)
}

func TestCaptureFailuresAreSkipped(t *testing.T) {
	f := newFixture([]uint8{0, 0, 0}, recorder.MotionTimeout{Timeout: time.Second})
	f.source.errs = map[int]error{1: errors.New("timeout"), 2: errors.New("timeout")}

	for i := 0; i < 5; i++ {
		require.NoError(t, f.m.Tick())
	}
	assert.Equal(t, 2, f.obs.captureErrs)
	assert.Len(t, f.obs.ticks, 3)
}

func TestConsecutiveCaptureFailuresAreFatal(t *testing.T) {
	f := newFixture(nil, recorder.MotionTimeout{Timeout: time.Second})

	require.NoError(t, f.m.Tick())
	require.NoError(t, f.m.Tick())
	err := f.m.Tick()
	var captureErr *CaptureError
	require.True(t, errors.As(err, &captureErr))
	assert.EqualError(t, captureErr.Err, "no more frames")
}

func TestRecordingFailuresDontStopTheLoop(t *testing.T) {
	f := newFixture([]uint8{0, 100, 100}, recorder.MotionTimeout{Timeout: time.Second})
	f.sink.stopErr = errors.New("encoder crashed")

	require.NoError(t, f.m.Tick())
	require.NoError(t, f.m.Tick())
	f.clock.now = f.clock.now.Add(5 * time.Second)
	require.NoError(t, f.m.Tick())
	assert.False(t, f.ctrl.IsRecording())
	assert.Equal(t, 1, f.obs.recordingErrs)
}

func TestRunStopsWhenContextIsCancelled(t *testing.T) {
	f := newFixture([]uint8{0, 0, 0, 0}, recorder.MotionTimeout{Timeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	f.source.onEmpty = cancel
	f.m.conf.MaxCaptureFailures = 10

	require.NoError(t, f.m.Run(ctx))
	assert.Equal(t, 5, f.source.captures)
	assert.Equal(t, start.Add(3*time.Second), f.obs.ticks[3].LastFrameAt)
}

func TestRunReturnsFatalError(t *testing.T) {
	f := newFixture(nil, recorder.MotionTimeout{Timeout: time.Second})
	err := f.m.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 3, f.source.captures)
}

func TestCloseRunsEveryStep(t *testing.T) {
	f := newFixture([]uint8{0, 100}, recorder.MotionTimeout{Timeout: time.Minute})
	require.NoError(t, f.m.Tick())
	require.NoError(t, f.m.Tick())
	require.True(t, f.ctrl.IsRecording())

	f.sink.stopErr = errors.New("encoder crashed")
	f.line.err = errors.New("gpio gone")
	f.source.closeErr = errors.New("device busy")

	err := f.m.Close()
	assert.Contains(t, err.Error(), "encoder crashed")
	assert.Contains(t, err.Error(), "gpio gone")
	assert.Contains(t, err.Error(), "device busy")
	assert.False(t, f.ctrl.IsRecording())
	assert.True(t, f.line.released)
	assert.True(t, f.source.closed)

	assert.NoError(t, f.m.Close())
}

func TestCloseWhenIdle(t *testing.T) {
	f := newFixture([]uint8{0}, recorder.MotionTimeout{Timeout: time.Minute})
	require.NoError(t, f.m.Tick())

	require.NoError(t, f.m.Close())
	assert.Equal(t, 0, f.sink.stops)
	assert.Equal(t, false, f.line.writes[len(f.line.writes)-1])
}

func TestConfigValidate(t *testing.T) {
	conf := DefaultConfig()
	assert.NoError(t, conf.Validate())
	conf.TickInterval = 0
	assert.EqualError(t, conf.Validate(), "tick-interval should be greater than 0")
}

// nilSource reports success without a frame.
type nilSource struct{}

func (nilSource) Capture() (*motion.Frame, error) { return nil, nil }
func (nilSource) Close() error                    { return nil }

func TestMissingFrameIsACaptureError(t *testing.T) {
	f := newFixture(nil, recorder.MotionTimeout{Timeout: time.Second})
	f.m.source = nilSource{}

	require.NoError(t, f.m.Tick())
	assert.Equal(t, 1, f.obs.captureErrs)
	assert.Empty(t, f.obs.ticks)
}

func TestRecordingUsesCapturedFrames(t *testing.T) {
	f := newFixture([]uint8{0, 100, 0, 0, 0, 0}, recorder.MotionTimeout{Timeout: 2 * time.Second})

	var captured []*motion.Frame
	for tick := 0; tick < 6; tick++ {
		f.clock.now = start.Add(time.Duration(tick) * time.Second)
		require.NoError(t, f.m.Tick())
		if f.ctrl.IsRecording() {
			captured = append(captured, f.m.previous)
		}
	}

	// Motion at ticks 1 and 2, timeout at tick 5: frames 1 to 4 are encoded.
	assert.Equal(t, 1, f.sink.stops)
	require.Len(t, f.sink.frames, 4)
	assert.Equal(t, captured, f.sink.frames)
	assert.Equal(t, 6, f.source.captures)
}

func TestRefusedStartIsLoggedOnce(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	values := []uint8{0, 100, 0, 100, 0, 100, 0, 100, 0, 100}
	f := newFixture(values, recorder.MotionTimeout{Timeout: time.Second})
	f.sink.canRecord = errors.New("not enough disk space")

	for range values {
		require.NoError(t, f.m.Tick())
	}
	assert.False(t, f.ctrl.IsRecording())
	assert.Equal(t, 9, f.obs.recordingErrs)
	assert.Equal(t, 1, strings.Count(logs.String(), "failed to start recording: not enough disk space"))
}
