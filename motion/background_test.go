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
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backgroundTestConfig() Config {
	conf := DefaultConfig()
	conf.Detector = Background
	conf.MinArea = 100
	conf.BackgroundAlpha = 0.1
	return conf
}

func addBlock(f *Frame, x0, y0, size int, v uint8) {
	for y := y0; y < y0+size; y++ {
		for x := x0; x < x0+size; x++ {
			f.Set(x, y, v)
		}
	}
}

func TestStaticSceneHasNoForeground(t *testing.T) {
	d := NewBackgroundDetector(backgroundTestConfig())
	tfm := NewTestFrameMaker(64, 48)

	prev := tfm.Background()
	for i := 0; i < 5; i++ {
		cur := tfm.Background()
		res := d.Compare(prev, cur)
		assert.Equal(t, 0.0, res.Score)
		assert.False(t, res.Motion)
		prev = cur
	}
}

func TestLargeBlockIsMotion(t *testing.T) {
	d := NewBackgroundDetector(backgroundTestConfig())
	tfm := NewTestFrameMaker(64, 48)

	cur := tfm.Background()
	addBlock(cur, 10, 10, 20, 200)

	res := d.Compare(tfm.Background(), cur)
	// The 20x20 block grows by one pixel each side when dilated.
	assert.Equal(t, 22.0*22.0, res.Score)
	assert.True(t, res.Motion)
}

func TestScatteredNoiseIsNotMotion(t *testing.T) {
	d := NewBackgroundDetector(backgroundTestConfig())
	tfm := NewTestFrameMaker(64, 48)

	cur := tfm.Background()
	for i := 0; i < 6; i++ {
		cur.Set(5+i*9, 5+i*6, 250)
	}

	res := d.Compare(tfm.Background(), cur)
	assert.Equal(t, 9.0, res.Score)
	assert.False(t, res.Motion)
}

func TestBackgroundAdaptsToPermanentChange(t *testing.T) {
	conf := backgroundTestConfig()
	conf.BackgroundAlpha = 0.5
	d := NewBackgroundDetector(conf)
	tfm := NewTestFrameMaker(32, 32)

	prev := tfm.Uniform(40)
	var res Result
	for i := 0; i < 10; i++ {
		cur := tfm.Uniform(140)
		res = d.Compare(prev, cur)
		prev = cur
	}
	assert.False(t, res.Motion)
	assert.Equal(t, 0.0, res.Score)
}

func TestResetReseedsFromPreviousFrame(t *testing.T) {
	d := NewBackgroundDetector(backgroundTestConfig())
	tfm := NewTestFrameMaker(32, 32)

	assert.True(t, d.Compare(tfm.Uniform(0), tfm.Uniform(200)).Motion)

	d.Reset()
	assert.False(t, d.Compare(tfm.Uniform(200), tfm.Uniform(200)).Motion)
}

func TestLargestBlobUsesEightNeighbours(t *testing.T) {
	pix := []uint8{
		1, 0, 0, 0,
		0, 1, 0, 1,
		0, 0, 1, 1,
		1, 0, 0, 0,
	}
	b := largestBlob(pix, 4, 4)
	assert.Equal(t, 5, b.Pixels)
	assert.Equal(t, image.Rect(0, 0, 4, 3), b.Box)

	b = largestBlob(make([]uint8, 16), 4, 4)
	assert.Equal(t, 0, b.Pixels)
	assert.True(t, b.Box.Empty())
}

func TestOutlineIsScoredByBoundingBox(t *testing.T) {
	conf := backgroundTestConfig()
	conf.MinArea = 500
	d := NewBackgroundDetector(conf)
	tfm := NewTestFrameMaker(64, 48)

	// A hollow 30x30 square, one pixel wide. Dilated it spans 32x32
	// with only 348 pixels set.
	cur := tfm.Background()
	for i := 0; i < 30; i++ {
		cur.Set(10+i, 10, 200)
		cur.Set(10+i, 39, 200)
		cur.Set(10, 10+i, 200)
		cur.Set(39, 10+i, 200)
	}

	res := d.Compare(tfm.Background(), cur)
	assert.Equal(t, 32.0*32.0, res.Score)
	assert.True(t, res.Motion)
}

func TestNewDetectorSelectsStrategy(t *testing.T) {
	d, err := NewDetector(DefaultConfig())
	require.NoError(t, err)
	assert.IsType(t, &FrameDiffDetector{}, d)

	d, err = NewDetector(backgroundTestConfig())
	require.NoError(t, err)
	assert.IsType(t, &BackgroundDetector{}, d)

	conf := DefaultConfig()
	conf.Detector = "optical-flow"
	_, err = NewDetector(conf)
	assert.EqualError(t, err, `unknown motion detector "optical-flow"`)
}

func TestConfigValidation(t *testing.T) {
	conf := DefaultConfig()
	conf.Threshold = 0
	assert.EqualError(t, conf.Validate(), "threshold should be greater than 0")

	conf = backgroundTestConfig()
	conf.BackgroundAlpha = 1.5
	assert.EqualError(t, conf.Validate(), "background-alpha should be in range (0, 1]")

	conf = DefaultConfig()
	conf.BlurSigma = -1
	assert.EqualError(t, conf.Validate(), "blur-sigma can't be negative")
}

func TestFromImageAveragesColourChannels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 30, G: 60, B: 90, A: 255})
	img.Set(1, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f := FromImage(img, ts)
	assert.Equal(t, 2, f.Width)
	assert.Equal(t, 1, f.Height)
	assert.Equal(t, []uint8{60, 255}, f.Pix)
	assert.Equal(t, ts, f.Timestamp)
}

func TestFromImageCopiesGrayPixels(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 3, 2))
	copy(g.Pix, []uint8{1, 2, 3, 4, 5, 6})

	f := FromImage(g, time.Time{})
	assert.Equal(t, []uint8{1, 2, 3, 4, 5, 6}, f.Pix)

	g.Pix[0] = 99
	assert.Equal(t, uint8(1), f.At(0, 0))
}

func TestFrameCopy(t *testing.T) {
	tfm := NewTestFrameMaker(8, 8)
	src := tfm.MovingSpot()
	dst := src.CreateCopy()
	assert.Equal(t, src, dst)

	dst.Pix[0] = 1
	assert.NotEqual(t, src.Pix[0], dst.Pix[0])
}
