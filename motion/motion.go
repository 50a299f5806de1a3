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
	"fmt"
	"image"
	"log"

	"github.com/disintegration/gift"
)

// Result is the outcome of comparing two frames.
type Result struct {
	Score  float64
	Motion bool
}

// Detector turns a pair of frames into a motion decision. Both frames
// must have the same dimensions; Compare panics otherwise.
type Detector interface {
	Compare(previous, current *Frame) Result
}

func NewFrameDiffDetector(conf Config) *FrameDiffDetector {
	return &FrameDiffDetector{
		threshold:   conf.Threshold,
		pixelThresh: conf.PixelThresh,
		blur:        newBlur(conf.BlurSigma),
		verbose:     conf.Verbose,
	}
}

// FrameDiffDetector scores a pair of frames by their mean absolute
// pixel difference.
type FrameDiffDetector struct {
	threshold   float64
	pixelThresh uint8
	blur        *gift.GIFT
	verbose     bool
}

func (d *FrameDiffDetector) Compare(previous, current *Frame) Result {
	mustMatch(previous, current)
	if len(current.Pix) == 0 {
		return Result{}
	}

	a := prepare(d.blur, previous)
	b := prepare(d.blur, current)

	var total uint64
	for i := range a {
		diff := absDiff(a[i], b[i])
		if d.pixelThresh > 0 {
			diff = binarise(diff, d.pixelThresh)
		}
		total += uint64(diff)
	}
	score := float64(total) / float64(len(a))
	if d.verbose {
		log.Printf("motion score %.2f", score)
	}
	return Result{
		Score:  score,
		Motion: score > d.threshold,
	}
}

func mustMatch(a, b *Frame) {
	if !a.SameSize(b) || len(a.Pix) != len(b.Pix) {
		panic(fmt.Sprintf("motion: frame size mismatch %dx%d vs %dx%d",
			a.Width, a.Height, b.Width, b.Height))
	}
}

func newBlur(sigma float32) *gift.GIFT {
	if sigma <= 0 {
		return nil
	}
	return gift.New(gift.GaussianBlur(sigma))
}

// prepare returns the pixels to compare, blurred when a filter is set.
func prepare(g *gift.GIFT, f *Frame) []uint8 {
	if g == nil {
		return f.Pix
	}
	src := f.Gray()
	dst := image.NewGray(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst.Pix
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

func binarise(v, thresh uint8) uint8 {
	if v > thresh {
		return 255
	}
	return 0
}
