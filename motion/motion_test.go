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
	"testing"

	"github.com/stretchr/testify/assert"
)

func defaultTestConfig() Config {
	conf := DefaultConfig()
	conf.Threshold = 10
	return conf
}

func TestIdenticalFramesScoreZero(t *testing.T) {
	tfm := NewTestFrameMaker(32, 24)
	d := NewFrameDiffDetector(defaultTestConfig())

	res := d.Compare(tfm.Background(), tfm.Background())
	assert.Equal(t, 0.0, res.Score)
	assert.False(t, res.Motion)
}

func TestScoreIsMeanAbsoluteDifference(t *testing.T) {
	tfm := NewTestFrameMaker(10, 10)
	d := NewFrameDiffDetector(defaultTestConfig())

	// Brighter and darker changes count the same.
	res := d.Compare(tfm.Uniform(100), tfm.Uniform(120))
	assert.Equal(t, 20.0, res.Score)
	assert.True(t, res.Motion)

	res = d.Compare(tfm.Uniform(120), tfm.Uniform(100))
	assert.Equal(t, 20.0, res.Score)

	// Half the frame changes by 30: mean is 15.
	prev := tfm.Uniform(50)
	cur := tfm.Uniform(50)
	for i := 0; i < len(cur.Pix)/2; i++ {
		cur.Pix[i] = 80
	}
	res = d.Compare(prev, cur)
	assert.Equal(t, 15.0, res.Score)
	assert.True(t, res.Motion)
}

func TestScoreEqualToThresholdIsNotMotion(t *testing.T) {
	tfm := NewTestFrameMaker(4, 4)
	d := NewFrameDiffDetector(defaultTestConfig())

	res := d.Compare(tfm.Uniform(0), tfm.Uniform(10))
	assert.Equal(t, 10.0, res.Score)
	assert.False(t, res.Motion)

	res = d.Compare(tfm.Uniform(0), tfm.Uniform(11))
	assert.True(t, res.Motion)
}

func TestSmallMovingSpotIsBelowThreshold(t *testing.T) {
	tfm := NewTestFrameMaker(40, 40)
	d := NewFrameDiffDetector(defaultTestConfig())

	res := d.Compare(tfm.Background(), tfm.MovingSpot())
	// 9 pixels out of 1600 change by 180.
	assert.InDelta(t, 9*180.0/1600, res.Score, 1e-9)
	assert.False(t, res.Motion)
}

func TestPixelThreshBinarisesDifferences(t *testing.T) {
	conf := defaultTestConfig()
	conf.PixelThresh = 25
	d := NewFrameDiffDetector(conf)

	prev := NewFrame(10, 1)
	cur := NewFrame(10, 1)
	cur.Pix[0] = 30 // over the pixel threshold, counts as 255
	cur.Pix[1] = 25 // not over, counts as 0

	res := d.Compare(prev, cur)
	assert.Equal(t, 25.5, res.Score)
	assert.True(t, res.Motion)
}

func TestBlurKeepsUniformDifference(t *testing.T) {
	conf := defaultTestConfig()
	conf.BlurSigma = 2
	d := NewFrameDiffDetector(conf)
	tfm := NewTestFrameMaker(20, 20)

	res := d.Compare(tfm.Uniform(60), tfm.Uniform(90))
	assert.InDelta(t, 30, res.Score, 1)
	assert.True(t, res.Motion)
}

func TestMismatchedFramesPanic(t *testing.T) {
	d := NewFrameDiffDetector(defaultTestConfig())
	assert.Panics(t, func() {
		d.Compare(NewFrame(10, 10), NewFrame(10, 11))
	})
}

func TestEmptyFramesHaveNoMotion(t *testing.T) {
	d := NewFrameDiffDetector(defaultTestConfig())
	assert.Equal(t, Result{}, d.Compare(NewFrame(0, 0), NewFrame(0, 0)))
}
