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

import "fmt"

// Schedule is the range of hours, inclusive at both ends, during which
// the illumination should be on. When StartHour is after EndHour the
// range wraps past midnight.
type Schedule struct {
	StartHour int `yaml:"start-hour"`
	EndHour   int `yaml:"end-hour"`
}

func DefaultSchedule() Schedule {
	return Schedule{StartHour: 17, EndHour: 5}
}

func (s Schedule) Validate() error {
	if s.StartHour < 0 || s.StartHour > 23 {
		return fmt.Errorf("start-hour %d is not in range 0-23", s.StartHour)
	}
	if s.EndHour < 0 || s.EndHour > 23 {
		return fmt.Errorf("end-hour %d is not in range 0-23", s.EndHour)
	}
	return nil
}

// DesiredState reports whether the illumination should be on at hour.
func (s Schedule) DesiredState(hour int) bool {
	if s.StartHour > s.EndHour {
		return hour >= s.StartHour || hour <= s.EndHour
	}
	return s.StartHour <= hour && hour <= s.EndHour
}

func (s Schedule) String() string {
	return fmt.Sprintf("%02d:00 to %02d:59", s.StartHour, s.EndHour)
}
