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

package throttle

import (
	"errors"
	"time"

	"github.com/juju/ratelimit"

	"github.com/TheCacophonyProject/ir-recorder/loglimiter"
	"github.com/TheCacophonyProject/ir-recorder/motion"
	"github.com/TheCacophonyProject/ir-recorder/recorder"
)

var ErrThrottled = errors.New("recording throttled")

func NewThrottledRecorder(
	baseRecorder recorder.Recorder,
	config *ThrottlerConfig,
	listener ThrottledEventListener,
) *ThrottledRecorder {
	return NewThrottledRecorderWithClock(baseRecorder, config, listener, new(realClock))
}

func NewThrottledRecorderWithClock(
	baseRecorder recorder.Recorder,
	config *ThrottlerConfig,
	listener ThrottledEventListener,
	clock ratelimit.Clock,
) *ThrottledRecorder {
	// One token per recording session. The bucket starts full.
	bucket := ratelimit.NewBucketWithClock(config.RefillInterval, config.BucketSize, clock)

	if listener == nil {
		listener = new(nullListener)
	}

	return &ThrottledRecorder{
		recorder: baseRecorder,
		listener: listener,
		bucket:   bucket,
		log:      loglimiter.New(time.Minute),
	}
}

// ThrottledRecorder wraps a standard recorder so that it refuses to
// start new recordings (ie gets throttled) if asked to record too often.
// This is desirable as the extra recordings are likely to be highly
// similar to the earlier recordings and contain no new information.
// It can happen when an animal is stuck in front of the camera or it is
// very windy.
type ThrottledRecorder struct {
	recorder recorder.Recorder
	listener ThrottledEventListener
	bucket   *ratelimit.Bucket
	log      *loglimiter.LogLimiter
}

type ThrottledEventListener interface {
	WhenThrottled()
}

type nullListener struct{}

func (lis *nullListener) WhenThrottled() {}

func (throttler *ThrottledRecorder) CheckCanRecord() error {
	return throttler.recorder.CheckCanRecord()
}

// StartRecording only uses up a token when the wrapped recorder starts.
func (throttler *ThrottledRecorder) StartRecording(id, pathHint string) (recorder.Handle, error) {
	if throttler.bucket.Available() < 1 {
		throttler.log.Print("recording not started due to throttling")
		throttler.listener.WhenThrottled()
		return nil, ErrThrottled
	}
	h, err := throttler.recorder.StartRecording(id, pathHint)
	if err != nil {
		return nil, err
	}
	throttler.bucket.TakeAvailable(1)
	return h, nil
}

// WriteFrame passes frames through when the wrapped recorder encodes them.
func (throttler *ThrottledRecorder) WriteFrame(h recorder.Handle, f *motion.Frame) error {
	if w, ok := throttler.recorder.(recorder.FrameWriter); ok {
		return w.WriteFrame(h, f)
	}
	return nil
}

func (throttler *ThrottledRecorder) StopRecording(h recorder.Handle) (string, error) {
	return throttler.recorder.StopRecording(h)
}

// Available returns the number of recordings that can be started before
// throttling kicks in.
func (throttler *ThrottledRecorder) Available() int64 {
	return throttler.bucket.Available()
}

// realClock implements ratelimit.Clock in terms of standard time functions.
type realClock struct{}

// Now implements Clock.Now by calling time.Now.
func (realClock) Now() time.Time {
	return time.Now()
}

// Now implements Clock.Sleep by calling time.Sleep.
func (realClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
