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

package illumination

import (
	"fmt"
	"log"
	"time"
)

// Line is an output that switches the illumination. Set takes the
// logical state; polarity is the implementation's concern.
type Line interface {
	Set(on bool) error
	Release() error
}

// HardwareError is returned when the illumination line can't be
// acquired.
type HardwareError struct {
	Line string
	Err  error
}

func (e *HardwareError) Error() string {
	return fmt.Sprintf("illumination line %s: %v", e.Line, e.Err)
}

func (e *HardwareError) Unwrap() error { return e.Err }

func NewController(line Line, schedule Schedule) *Controller {
	return &Controller{
		line:     line,
		schedule: schedule,
	}
}

// Controller drives a Line from a Schedule.
type Controller struct {
	line     Line
	schedule Schedule
	known    bool
	on       bool
}

// Update writes the state the schedule wants for now to the line. The
// line is written on every call; only changes are logged.
func (c *Controller) Update(now time.Time) error {
	return c.set(c.schedule.DesiredState(now.Hour()))
}

// Off turns the line off regardless of the schedule.
func (c *Controller) Off() error {
	return c.set(false)
}

func (c *Controller) IsOn() bool {
	return c.on
}

func (c *Controller) Release() error {
	return c.line.Release()
}

func (c *Controller) set(on bool) error {
	if err := c.line.Set(on); err != nil {
		return err
	}
	if !c.known || c.on != on {
		log.Printf("illumination %s", onOff(on))
	}
	c.known = true
	c.on = on
	return nil
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
