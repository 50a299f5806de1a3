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
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	arg "github.com/alexflint/go-arg"
	"github.com/coreos/go-systemd/daemon"
	"go.uber.org/multierr"
	"periph.io/x/periph/host"

	goconfig "github.com/TheCacophonyProject/go-config"
	"github.com/TheCacophonyProject/ir-recorder/camera"
	"github.com/TheCacophonyProject/ir-recorder/illumination"
	"github.com/TheCacophonyProject/ir-recorder/metrics"
	"github.com/TheCacophonyProject/ir-recorder/monitor"
	"github.com/TheCacophonyProject/ir-recorder/motion"
	"github.com/TheCacophonyProject/ir-recorder/output"
	"github.com/TheCacophonyProject/ir-recorder/recorder"
	"github.com/TheCacophonyProject/ir-recorder/throttle"
)

var version = "<not set>"

type Args struct {
	ConfigFile      string `arg:"-c,--config" help:"path to configuration file"`
	DeviceConfigDir string `arg:"-d,--device-config" help:"path to device configuration directory"`
	Timestamps      bool   `arg:"-t,--timestamps" help:"include timestamps in log output"`
	Verbose         bool   `arg:"-v,--verbose" help:"Make logging more verbose"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	var args Args
	args.ConfigFile = "/etc/ir-recorder.yaml"
	args.DeviceConfigDir = goconfig.DefaultConfigDir
	arg.MustParse(&args)
	return args
}

func main() {
	err := runMain()
	if err != nil {
		log.Fatal(err)
	}
}

func runMain() (err error) {
	args := procArgs()

	if !args.Timestamps {
		log.SetFlags(0) // Removes default timestamp flag
	}

	log.Printf("running version: %s", version)
	conf, err := ParseConfigFiles(args.ConfigFile, args.DeviceConfigDir)
	if err != nil {
		return err
	}
	conf.Motion.Verbose = args.Verbose
	logConfig(conf)

	log.Println("host initialisation")
	if _, err := host.Init(); err != nil {
		return err
	}

	line, err := illumination.OpenGPIO(conf.Illumination.Pin, conf.Illumination.ActiveLow)
	if err != nil {
		return err
	}
	lights := illumination.NewController(line, conf.Illumination.Schedule)

	source, err := camera.Open(conf.Camera)
	if err != nil {
		return multierr.Combine(err, lights.Off(), lights.Release())
	}

	fileRecorder, err := output.NewFileRecorder(&conf.Output, output.Metadata{
		DeviceName:   conf.DeviceName,
		DeviceID:     conf.DeviceID,
		MotionConfig: motionConfigYAML(conf.Motion),
	})
	if err != nil {
		return multierr.Combine(err, lights.Off(), lights.Release(), source.Close())
	}
	log.Println("deleting temp files")
	if err := fileRecorder.DeleteTempFiles(); err != nil {
		log.Printf("failed to delete temp files: %v", err)
	}

	var rec recorder.Recorder = fileRecorder
	if conf.Throttler.ApplyThrottling {
		rec = throttle.NewThrottledRecorder(fileRecorder, &conf.Throttler, new(throttle.ThrottledEventRecorder))
	}

	met := metrics.New()
	listeners := recordingListeners{met, new(eventListener)}
	controller, err := recorder.NewController(rec, &conf.Recorder, listeners)
	if err != nil {
		return multierr.Combine(err, lights.Off(), lights.Release(), source.Close())
	}
	detector, err := motion.NewDetector(conf.Motion)
	if err != nil {
		return multierr.Combine(err, lights.Off(), lights.Release(), source.Close())
	}

	mon := monitor.New(
		conf.Monitor, source, detector, controller, lights, monitor.RealClock{},
		met, newWatchdog(conf.Monitor.TickInterval),
	)
	defer func() {
		err = multierr.Append(err, mon.Close())
	}()

	log.Println("starting d-bus service")
	if err := startService(conf.Output.Dir, mon); err != nil {
		return err
	}

	if conf.MetricsAddress != "" {
		go serveMetrics(conf.MetricsAddress, met)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	daemon.SdNotify(false, "READY=1")
	log.Print("watching for motion")
	if err := mon.Run(ctx); err != nil {
		return err
	}
	log.Print("shutting down")
	return nil
}

func serveMetrics(addr string, met *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", met.Handler())
	log.Printf("serving metrics on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("metrics server failed: %v", err)
	}
}

func logConfig(conf *Config) {
	log.Printf("device name: %s", conf.DeviceName)
	log.Printf("camera: %s %s", conf.Camera.Type, conf.Camera.Device)
	log.Printf("tick interval: %v", conf.Monitor.TickInterval)
	log.Printf("output dir: %s", conf.Output.Dir)
	log.Printf("minimum disk space: %d", conf.Output.MinDiskSpace)
	log.Printf("motion: %+v", conf.Motion)
	log.Printf("termination: %s", conf.Recorder.Termination)
	log.Printf("illumination: %s on %s", conf.Illumination.Schedule, conf.Illumination.Pin)
	log.Printf("throttler: %+v", conf.Throttler)
	if !conf.Recorder.WindowStart.IsZero() {
		log.Printf("recording window: %02d:%02d to %02d:%02d",
			conf.Recorder.WindowStart.Hour(), conf.Recorder.WindowStart.Minute(),
			conf.Recorder.WindowEnd.Hour(), conf.Recorder.WindowEnd.Minute())
	}
}
