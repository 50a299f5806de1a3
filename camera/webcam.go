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
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/blackjack/webcam"
	"go.uber.org/multierr"

	"github.com/TheCacophonyProject/ir-recorder/motion"
)

// V4L2_PIX_FMT_YUYV
const pixFmtYUYV webcam.PixelFormat = 'Y' | 'U'<<8 | 'Y'<<16 | 'V'<<24

// Webcam captures frames from a V4L2 device streaming YUYV. Only the
// luma samples are kept.
type Webcam struct {
	cam     *webcam.Webcam
	width   int
	height  int
	timeout uint32
}

// OpenWebcam opens device and starts streaming. A zero width or height
// selects the largest size the device supports.
func OpenWebcam(device string, width, height int, timeout time.Duration) (*Webcam, error) {
	cam, err := webcam.Open(device)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", device, err)
	}
	w, err := startWebcam(cam, width, height)
	if err != nil {
		cam.Close()
		return nil, fmt.Errorf("failed to start %s: %w", device, err)
	}
	w.timeout = uint32(timeout / time.Second)
	log.Printf("webcam %s streaming at %dx%d", device, w.width, w.height)
	return w, nil
}

func startWebcam(cam *webcam.Webcam, width, height int) (*Webcam, error) {
	format, ok := findYUYV(cam.GetSupportedFormats())
	if !ok {
		return nil, errors.New("YUYV format not supported")
	}

	if width == 0 || height == 0 {
		sizes := cam.GetSupportedFrameSizes(format)
		if len(sizes) == 0 {
			return nil, errors.New("no frame sizes reported")
		}
		width, height = largestSize(sizes)
	}

	_, w, h, err := cam.SetImageFormat(format, uint32(width), uint32(height))
	if err != nil {
		return nil, err
	}
	if err := cam.StartStreaming(); err != nil {
		return nil, err
	}
	return &Webcam{
		cam:    cam,
		width:  int(w),
		height: int(h),
	}, nil
}

func findYUYV(formats map[webcam.PixelFormat]string) (webcam.PixelFormat, bool) {
	for f, desc := range formats {
		if f == pixFmtYUYV || strings.HasPrefix(desc, "YUYV") {
			return f, true
		}
	}
	return 0, false
}

func largestSize(sizes []webcam.FrameSize) (int, int) {
	var best webcam.FrameSize
	for _, s := range sizes {
		if s.MaxWidth*s.MaxHeight > best.MaxWidth*best.MaxHeight {
			best = s
		}
	}
	return int(best.MaxWidth), int(best.MaxHeight)
}

func (w *Webcam) Capture() (*motion.Frame, error) {
	err := w.cam.WaitForFrame(w.timeout)
	switch err.(type) {
	case nil:
	case *webcam.Timeout:
		return nil, errors.New("timed out waiting for frame")
	default:
		return nil, err
	}

	buf, err := w.cam.ReadFrame()
	if err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		return nil, errors.New("empty frame")
	}
	return lumaFromYUYV(buf, w.width, w.height, time.Now())
}

func (w *Webcam) Close() error {
	return multierr.Append(w.cam.StopStreaming(), w.cam.Close())
}

// lumaFromYUYV takes the Y samples (every second byte) from a packed
// YUYV buffer.
func lumaFromYUYV(buf []byte, width, height int, ts time.Time) (*motion.Frame, error) {
	n := width * height
	if len(buf) < 2*n {
		return nil, fmt.Errorf("short frame: got %d bytes, want %d", len(buf), 2*n)
	}
	f := motion.NewFrame(width, height)
	f.Timestamp = ts
	for i := range f.Pix {
		f.Pix[i] = buf[2*i]
	}
	return f, nil
}
