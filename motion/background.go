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
	"log"

	"github.com/disintegration/gift"
)

func NewBackgroundDetector(conf Config) *BackgroundDetector {
	return &BackgroundDetector{
		alpha:    conf.BackgroundAlpha,
		fgThresh: conf.ForegroundThresh,
		minArea:  conf.MinArea,
		blur:     newBlur(conf.BlurSigma),
		dilate:   gift.New(gift.Maximum(3, false)),
		verbose:  conf.Verbose,
	}
}

// BackgroundDetector keeps a running average of the scene and reports
// motion when the largest blob of pixels differing from it is bigger
// than minArea. The score is the area of that blob in pixels.
//
// Unlike FrameDiffDetector it is stateful: the background model is
// seeded from the first previous frame it sees.
type BackgroundDetector struct {
	alpha      float64
	fgThresh   uint8
	minArea    int
	blur       *gift.GIFT
	dilate     *gift.GIFT
	verbose    bool
	background []float64
	width      int
	height     int
}

func (d *BackgroundDetector) Compare(previous, current *Frame) Result {
	mustMatch(previous, current)
	if len(current.Pix) == 0 {
		return Result{}
	}

	if d.background == nil || d.width != current.Width || d.height != current.Height {
		d.seed(previous)
	}

	pix := prepare(d.blur, current)
	mask := image.NewGray(image.Rect(0, 0, current.Width, current.Height))
	for i, v := range pix {
		bg := d.background[i]
		if absDiff(v, uint8(bg+0.5)) > d.fgThresh {
			mask.Pix[i] = 255
		}
		d.background[i] = bg + d.alpha*(float64(v)-bg)
	}

	dilated := image.NewGray(d.dilate.Bounds(mask.Bounds()))
	d.dilate.Draw(dilated, mask)

	b := largestBlob(dilated.Pix, current.Width, current.Height)
	area := b.Box.Dx() * b.Box.Dy()
	if d.verbose && area > 0 {
		log.Printf("largest foreground blob %d pixels, bounds %v", b.Pixels, b.Box)
	}
	return Result{
		Score:  float64(area),
		Motion: area > d.minArea,
	}
}

// Reset drops the background model.
func (d *BackgroundDetector) Reset() {
	d.background = nil
}

func (d *BackgroundDetector) seed(f *Frame) {
	pix := prepare(d.blur, f)
	d.background = make([]float64, len(pix))
	for i, v := range pix {
		d.background[i] = float64(v)
	}
	d.width = f.Width
	d.height = f.Height
}

type blob struct {
	Pixels int
	Box    image.Rectangle
}

// largestBlob finds the 8-connected group of non-zero pixels with the
// most pixels and returns it with its bounding box.
func largestBlob(pix []uint8, width, height int) blob {
	seen := make([]bool, len(pix))
	stack := make([]int, 0, 64)
	var largest blob
	for start, v := range pix {
		if v == 0 || seen[start] {
			continue
		}
		seen[start] = true
		stack = append(stack[:0], start)
		cur := blob{Box: image.Rect(start%width, start/width, start%width+1, start/width+1)}
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%width, i/width
			cur.Pixels++
			cur.Box = cur.Box.Union(image.Rect(x, y, x+1, y+1))
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= width || ny >= height {
						continue
					}
					n := ny*width + nx
					if pix[n] != 0 && !seen[n] {
						seen[n] = true
						stack = append(stack, n)
					}
				}
			}
		}
		if cur.Pixels > largest.Pixels {
			largest = cur
		}
	}
	return largest
}
