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
	"errors"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
)

// GPIOLine switches the illumination with a GPIO pin. host.Init must
// have been called first.
type GPIOLine struct {
	pin       gpio.PinIO
	activeLow bool
}

// OpenGPIO finds the named pin. An IR LED board driven through a
// transistor with a pull-up is usually active low.
func OpenGPIO(name string, activeLow bool) (*GPIOLine, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, &HardwareError{Line: name, Err: errors.New("unable to load pin")}
	}
	return NewGPIOLine(pin, activeLow), nil
}

func NewGPIOLine(pin gpio.PinIO, activeLow bool) *GPIOLine {
	return &GPIOLine{pin: pin, activeLow: activeLow}
}

func (l *GPIOLine) Set(on bool) error {
	level := gpio.Level(on)
	if l.activeLow {
		level = !level
	}
	if err := l.pin.Out(level); err != nil {
		return &HardwareError{Line: l.pin.Name(), Err: err}
	}
	return nil
}

// Release stops driving the pin. For an active low line the pin is left
// as an input with a pull-up so the light stays off.
func (l *GPIOLine) Release() error {
	if l.activeLow {
		if err := l.pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return &HardwareError{Line: l.pin.Name(), Err: err}
		}
		return nil
	}
	if err := l.pin.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return &HardwareError{Line: l.pin.Name(), Err: err}
	}
	return nil
}
