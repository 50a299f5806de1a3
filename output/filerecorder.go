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
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v2"

	"github.com/TheCacophonyProject/ir-recorder/motion"
	"github.com/TheCacophonyProject/ir-recorder/recorder"
)

// Metadata is written next to each finished recording.
type Metadata struct {
	ID           string        `yaml:"id"`
	DeviceName   string        `yaml:"device-name,omitempty"`
	DeviceID     int           `yaml:"device-id,omitempty"`
	Start        time.Time     `yaml:"start"`
	End          time.Time     `yaml:"end"`
	Duration     time.Duration `yaml:"duration"`
	Frames       int           `yaml:"frames"`
	File         string        `yaml:"file"`
	MotionConfig string        `yaml:"motion-config,omitempty"`
}

// NewFileRecorder returns a recorder that runs an encoder process for
// each recording and feeds it the captured frames. header provides the
// device and motion fields of the metadata written alongside each file.
// The output directory is created if it doesn't exist.
func NewFileRecorder(conf *Config, header Metadata) (*FileRecorder, error) {
	if err := os.MkdirAll(conf.Dir, 0755); err != nil {
		return nil, err
	}
	return &FileRecorder{
		conf:   *conf,
		header: header,
		now:    time.Now,
	}, nil
}

type FileRecorder struct {
	conf   Config
	header Metadata
	now    func() time.Time
}

// recording is an open session. The encoder is started by the first
// frame, as that fixes the video size.
type recording struct {
	id        string
	tempName  string
	startedAt time.Time
	width     int
	height    int
	frames    int
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	done      chan error
}

func (r *recording) Name() string {
	return recordingFinalName(r.tempName)
}

func (fr *FileRecorder) CheckCanRecord() error {
	enoughSpace, err := checkDiskSpace(fr.conf.MinDiskSpace, fr.conf.Dir)
	if err != nil {
		return fmt.Errorf("Problem with checking disk space: %v", err)
	} else if !enoughSpace {
		return errors.New("Motion detected but not enough free disk space to start recording")
	}
	return nil
}

// DeleteTempFiles removes recordings left unfinished by a previous run.
func (fr *FileRecorder) DeleteTempFiles() error {
	return deleteTempFiles(fr.conf.Dir)
}

func (fr *FileRecorder) StartRecording(id, pathHint string) (recorder.Handle, error) {
	if _, err := exec.LookPath(fr.conf.Encoder[0]); err != nil {
		return nil, err
	}
	return &recording{
		id:        id,
		tempName:  tempName(fr.conf.Dir, pathHint, fr.conf.Extension),
		startedAt: fr.now(),
	}, nil
}

// WriteFrame sends the frame's pixels to the encoder as raw 8-bit gray
// video. Every frame of a recording must be the same size.
func (fr *FileRecorder) WriteFrame(h recorder.Handle, f *motion.Frame) error {
	rec, ok := h.(*recording)
	if !ok {
		return fmt.Errorf("not a file recording: %v", h)
	}
	if rec.cmd == nil {
		if err := fr.startEncoder(rec, f.Width, f.Height); err != nil {
			return err
		}
	} else if f.Width != rec.width || f.Height != rec.height {
		return fmt.Errorf("frame size changed from %dx%d to %dx%d",
			rec.width, rec.height, f.Width, f.Height)
	}
	if _, err := rec.stdin.Write(f.Pix); err != nil {
		return err
	}
	rec.frames++
	return nil
}

func (fr *FileRecorder) startEncoder(rec *recording, width, height int) error {
	args := expand(fr.conf.Encoder, placeholders{
		output: rec.tempName,
		width:  width,
		height: height,
		rate:   fr.conf.FrameRate,
	})
	cmd := exec.Command(args[0], args[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	cmd.Stderr = &logWriter{prefix: filepath.Base(args[0])}
	if err := cmd.Start(); err != nil {
		return err
	}

	rec.cmd = cmd
	rec.stdin = stdin
	rec.width = width
	rec.height = height
	rec.done = make(chan error, 1)
	go func() {
		rec.done <- cmd.Wait()
	}()
	return nil
}

func (fr *FileRecorder) StopRecording(h recorder.Handle) (string, error) {
	rec, ok := h.(*recording)
	if !ok {
		return "", fmt.Errorf("not a file recording: %v", h)
	}
	if rec.cmd == nil {
		return "", fmt.Errorf("no frames were written to %s", rec.Name())
	}

	if err := rec.stop(fr.conf.StopTimeout); err != nil {
		log.Printf("encoder for %s: %v", rec.Name(), err)
	}
	if !fileExists(rec.tempName) {
		os.Remove(rec.tempName)
		return "", fmt.Errorf("encoder didn't write %s", rec.tempName)
	}

	finalName, err := renameTempRecording(rec.tempName)
	if err != nil {
		return "", err
	}
	endedAt := fr.now()

	if len(fr.conf.Transcode) > 0 {
		converted, err := fr.transcode(finalName)
		if err != nil {
			return finalName, err
		}
		finalName = converted
	}

	if err := fr.writeMetadata(rec, finalName, endedAt); err != nil {
		return finalName, err
	}
	return finalName, nil
}

func (fr *FileRecorder) transcode(input string) (string, error) {
	base := strings.TrimSuffix(input, "."+fr.conf.Extension)
	temp := base + "." + fr.conf.TranscodeExtension + "." + tempExt
	args := expand(fr.conf.Transcode, placeholders{
		input:  input,
		output: temp,
		rate:   fr.conf.FrameRate,
	})

	out, err := exec.Command(args[0], args[1:]...).CombinedOutput()
	if err != nil {
		os.Remove(temp)
		return "", fmt.Errorf("transcode of %s failed: %v: %s", input, err, strings.TrimSpace(string(out)))
	}
	final, err := renameTempRecording(temp)
	if err != nil {
		return "", err
	}
	if err := os.Remove(input); err != nil {
		log.Printf("failed to remove %s: %v", input, err)
	}
	return final, nil
}

func (fr *FileRecorder) writeMetadata(rec *recording, filename string, endedAt time.Time) error {
	md := fr.header
	md.ID = rec.id
	md.Start = rec.startedAt
	md.End = endedAt
	md.Duration = endedAt.Sub(rec.startedAt)
	md.Frames = rec.frames
	md.File = filepath.Base(filename)

	data, err := yaml.Marshal(&md)
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filename, filepath.Ext(filename)) + ".yaml"
	return os.WriteFile(name, data, 0644)
}

// stop closes the encoder's input so it can finish the file, then
// interrupts and finally kills it, waiting grace between each.
func (rec *recording) stop(grace time.Duration) error {
	rec.stdin.Close()
	select {
	case err := <-rec.done:
		return err
	case <-time.After(grace):
	}

	rec.cmd.Process.Signal(os.Interrupt)
	select {
	case err := <-rec.done:
		return err
	case <-time.After(grace):
	}

	rec.cmd.Process.Kill()
	<-rec.done
	return errors.New("killed after not stopping")
}

// logWriter sends encoder output to the log a line at a time.
type logWriter struct {
	prefix string
	buf    []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		if line := strings.TrimSpace(string(w.buf[:i])); line != "" {
			log.Printf("%s: %s", w.prefix, line)
		}
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}
