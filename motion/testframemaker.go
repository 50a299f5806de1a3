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

package motion

// TestFrameMaker builds synthetic frames: a flat background with an
// optional bright square that moves diagonally each time it is drawn.
type TestFrameMaker struct {
	Width         int
	Height        int
	BackgroundVal uint8
	SpotVal       uint8
	SpotSize      int
	spotPosition  int
}

func NewTestFrameMaker(width, height int) *TestFrameMaker {
	return &TestFrameMaker{
		Width:         width,
		Height:        height,
		BackgroundVal: 40,
		SpotVal:       220,
		SpotSize:      3,
	}
}

// Background returns a frame containing only the background value.
func (tfm *TestFrameMaker) Background() *Frame {
	f := NewFrame(tfm.Width, tfm.Height)
	f.Fill(tfm.BackgroundVal)
	return f
}

// MovingSpot returns a background frame with the spot moved on by
// SpotSize pixels, wrapping back to the corner at the frame edge.
func (tfm *TestFrameMaker) MovingSpot() *Frame {
	tfm.spotPosition += tfm.SpotSize
	if tfm.spotPosition+tfm.SpotSize > tfm.Width || tfm.spotPosition+tfm.SpotSize > tfm.Height {
		tfm.spotPosition = 0
	}
	f := tfm.Background()
	for y := tfm.spotPosition; y < tfm.spotPosition+tfm.SpotSize; y++ {
		for x := tfm.spotPosition; x < tfm.spotPosition+tfm.SpotSize; x++ {
			f.Set(x, y, tfm.SpotVal)
		}
	}
	return f
}

// Uniform returns a frame with every pixel set to v.
func (tfm *TestFrameMaker) Uniform(v uint8) *Frame {
	f := NewFrame(tfm.Width, tfm.Height)
	f.Fill(v)
	return f
}
