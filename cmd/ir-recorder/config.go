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
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	goconfig "github.com/TheCacophonyProject/go-config"
	yaml "gopkg.in/yaml.v2"

	"github.com/TheCacophonyProject/ir-recorder/camera"
	"github.com/TheCacophonyProject/ir-recorder/illumination"
	"github.com/TheCacophonyProject/ir-recorder/monitor"
	"github.com/TheCacophonyProject/ir-recorder/motion"
	"github.com/TheCacophonyProject/ir-recorder/output"
	"github.com/TheCacophonyProject/ir-recorder/recorder"
	"github.com/TheCacophonyProject/ir-recorder/throttle"
)

type Config struct {
	DeviceName     string                   `yaml:"-"`
	DeviceID       int                      `yaml:"-"`
	Monitor        monitor.Config           `yaml:",inline"`
	MetricsAddress string                   `yaml:"metrics-address"`
	Camera         camera.Config            `yaml:"camera"`
	Motion         motion.Config            `yaml:"motion"`
	Recorder       recorder.RecorderConfig  `yaml:"recorder"`
	Illumination   illumination.Config      `yaml:"illumination"`
	Output         output.Config            `yaml:"output"`
	Throttler      throttle.ThrottlerConfig `yaml:"throttler"`
}

func (conf *Config) Validate() error {
	if err := conf.Monitor.Validate(); err != nil {
		return err
	}
	if err := conf.Camera.Validate(); err != nil {
		return fmt.Errorf("camera: %v", err)
	}
	if err := conf.Motion.Validate(); err != nil {
		return fmt.Errorf("motion: %v", err)
	}
	if err := conf.Recorder.Validate(); err != nil {
		return fmt.Errorf("recorder: %v", err)
	}
	if err := conf.Illumination.Validate(); err != nil {
		return fmt.Errorf("illumination: %v", err)
	}
	if err := conf.Output.Validate(); err != nil {
		return fmt.Errorf("output: %v", err)
	}
	if err := conf.Throttler.Validate(); err != nil {
		return fmt.Errorf("throttler: %v", err)
	}
	return nil
}

var defaultConfig = Config{
	Monitor:      monitor.DefaultConfig(),
	Camera:       camera.DefaultConfig(),
	Motion:       motion.DefaultConfig(),
	Recorder:     recorder.DefaultConfig(),
	Illumination: illumination.DefaultConfig(),
	Output:       output.DefaultConfig(),
	Throttler:    throttle.DefaultThrottlerConfig(),
}

func ParseConfigFiles(configFile, deviceConfigDir string) (*Config, error) {
	buf, err := ioutil.ReadFile(configFile)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if os.IsNotExist(err) {
		log.Printf("%s not found, using defaults", configFile)
	}

	conf, err := ParseConfig(buf)
	if err != nil {
		return nil, err
	}

	device, err := readDevice(deviceConfigDir)
	if err != nil {
		log.Printf("device identity unavailable: %v", err)
	} else {
		conf.DeviceID = device.ID
		conf.DeviceName = device.Name
		conf.Recorder.NamePrefix = device.Name
	}
	return conf, nil
}

func ParseConfig(buf []byte) (*Config, error) {
	conf := defaultConfig
	if err := yaml.Unmarshal(buf, &conf); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

func readDevice(dir string) (*goconfig.Device, error) {
	if dir == "" {
		return nil, errors.New("no config directory")
	}
	configRW, err := goconfig.New(dir)
	if err != nil {
		return nil, err
	}
	var device goconfig.Device
	if err := configRW.Unmarshal(goconfig.DeviceKey, &device); err != nil {
		return nil, err
	}
	return &device, nil
}
