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

package output

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	outputPlaceholder = "{output}"
	inputPlaceholder  = "{input}"
	widthPlaceholder  = "{width}"
	heightPlaceholder = "{height}"
	ratePlaceholder   = "{rate}"
)

type Config struct {
	Dir          string `yaml:"dir"`
	MinDiskSpace uint64 `yaml:"min-disk-space"`

	// Encoder is run for each recording and reads raw 8-bit gray frames
	// on stdin. "{output}" is replaced with the file to write, "{width}"
	// and "{height}" with the frame size and "{rate}" with FrameRate.
	Encoder   []string `yaml:"encoder"`
	Extension string   `yaml:"extension"`
	FrameRate int      `yaml:"frame-rate"`

	// Transcode optionally converts the finished recording. "{input}"
	// and "{output}" are replaced with the file names.
	Transcode          []string      `yaml:"transcode"`
	TranscodeExtension string        `yaml:"transcode-extension"`
	StopTimeout        time.Duration `yaml:"stop-timeout"`
}

func DefaultConfig() Config {
	return Config{
		Dir:          "/var/spool/ir-recorder",
		MinDiskSpace: 200,
		Encoder: []string{
			"ffmpeg", "-y", "-loglevel", "error",
			"-f", "rawvideo", "-pix_fmt", "gray",
			"-video_size", widthPlaceholder + "x" + heightPlaceholder,
			"-framerate", ratePlaceholder, "-i", "-",
			"-c:v", "libx264", "-preset", "ultrafast", "-pix_fmt", "yuv420p",
			"-f", "mp4", outputPlaceholder,
		},
		Extension:   "mp4",
		FrameRate:   10,
		StopTimeout: 5 * time.Second,
	}
}

func (conf *Config) Validate() error {
	if conf.Dir == "" {
		return errors.New("dir is required")
	}
	if !hasPlaceholder(conf.Encoder, outputPlaceholder) {
		return errors.New("encoder must include {output}")
	}
	if conf.Extension == "" {
		return errors.New("extension is required")
	}
	if conf.FrameRate <= 0 {
		return errors.New("frame-rate should be greater than 0")
	}
	if len(conf.Transcode) > 0 {
		if !hasPlaceholder(conf.Transcode, inputPlaceholder) || !hasPlaceholder(conf.Transcode, outputPlaceholder) {
			return errors.New("transcode must include {input} and {output}")
		}
		if conf.TranscodeExtension == "" || conf.TranscodeExtension == conf.Extension {
			return errors.New("transcode-extension must be set and differ from extension")
		}
	}
	if conf.StopTimeout <= 0 {
		return errors.New("stop-timeout should be greater than 0")
	}
	return nil
}

func hasPlaceholder(args []string, placeholder string) bool {
	for _, arg := range args {
		if strings.Contains(arg, placeholder) {
			return true
		}
	}
	return false
}

type placeholders struct {
	input, output string
	width, height int
	rate          int
}

func expand(args []string, p placeholders) []string {
	r := strings.NewReplacer(
		inputPlaceholder, p.input,
		outputPlaceholder, p.output,
		widthPlaceholder, strconv.Itoa(p.width),
		heightPlaceholder, strconv.Itoa(p.height),
		ratePlaceholder, strconv.Itoa(p.rate),
	)
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = r.Replace(arg)
	}
	return out
}
