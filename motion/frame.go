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

import (
	"image"
	"time"
)

// Frame is a single channel intensity image taken from the camera. Pix
// holds Width*Height values in row major order.
type Frame struct {
	Width     int
	Height    int
	Pix       []uint8
	Timestamp time.Time
}

func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// FromImage reduces img to intensity. Colour pixels become the mean of
// their red, green and blue channels; gray and YCbCr images use their
// luma plane directly.
func FromImage(img image.Image, ts time.Time) *Frame {
	b := img.Bounds()
	f := NewFrame(b.Dx(), b.Dy())
	f.Timestamp = ts

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < f.Height; y++ {
			row := src.Pix[(y+b.Min.Y-src.Rect.Min.Y)*src.Stride+(b.Min.X-src.Rect.Min.X):]
			copy(f.Pix[y*f.Width:(y+1)*f.Width], row[:f.Width])
		}
	case *image.YCbCr:
		for y := 0; y < f.Height; y++ {
			row := src.Y[(y+b.Min.Y-src.Rect.Min.Y)*src.YStride+(b.Min.X-src.Rect.Min.X):]
			copy(f.Pix[y*f.Width:(y+1)*f.Width], row[:f.Width])
		}
	default:
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r, g, bl, _ := img.At(x, y).RGBA()
				f.Pix[i] = uint8(((r >> 8) + (g >> 8) + (bl >> 8)) / 3)
				i++
			}
		}
	}
	return f
}

// Gray returns a copy of the frame as an image.Gray.
func (f *Frame) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	copy(g.Pix, f.Pix)
	return g
}

func (f *Frame) At(x, y int) uint8 {
	return f.Pix[y*f.Width+x]
}

func (f *Frame) Set(x, y int, v uint8) {
	f.Pix[y*f.Width+x] = v
}

// Fill sets every pixel to v.
func (f *Frame) Fill(v uint8) {
	for i := range f.Pix {
		f.Pix[i] = v
	}
}

// SameSize reports whether both frames have identical dimensions.
func (f *Frame) SameSize(other *Frame) bool {
	return f.Width == other.Width && f.Height == other.Height
}

// Copy overwrites f with the contents of src.
func (f *Frame) Copy(src *Frame) {
	if len(f.Pix) != len(src.Pix) {
		f.Pix = make([]uint8, len(src.Pix))
	}
	copy(f.Pix, src.Pix)
	f.Width = src.Width
	f.Height = src.Height
	f.Timestamp = src.Timestamp
}

func (f *Frame) CreateCopy() *Frame {
	out := new(Frame)
	out.Copy(f)
	return out
}
