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

import "errors"

type Config struct {
	Pin       string `yaml:"pin"`
	ActiveLow bool   `yaml:"active-low"`
	Schedule  `yaml:",inline"`
}

// DefaultConfig drives an active low IR LED board on GPIO16 from 17:00
// until 05:59.
func DefaultConfig() Config {
	return Config{
		Pin:       "GPIO16",
		ActiveLow: true,
		Schedule:  DefaultSchedule(),
	}
}

func (conf *Config) Validate() error {
	if conf.Pin == "" {
		return errors.New("pin is required")
	}
	return conf.Schedule.Validate()
}
