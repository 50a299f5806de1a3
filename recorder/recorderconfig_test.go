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

package recorder

import (
	"testing"
	"time"

	"github.com/TheCacophonyProject/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowStartWithoutEndDoesntValidate(t *testing.T) {
	conf := DefaultConfig()
	conf.WindowStart = *window.NewTimeOfDay("09:10")
	assert.EqualError(t, conf.Validate(), "window-start is set but window-end isn't")
}

func TestWindowEndWithoutStartDoesntValidate(t *testing.T) {
	conf := DefaultConfig()
	conf.WindowEnd = *window.NewTimeOfDay("09:10")
	assert.EqualError(t, conf.Validate(), "window-end is set but window-start isn't")
}

func TestUnknownTerminationDoesntValidate(t *testing.T) {
	conf := DefaultConfig()
	conf.Termination = "forever"
	assert.EqualError(t, conf.Validate(), `unknown termination policy "forever"`)
}

func TestPolicyNeedsPositiveLength(t *testing.T) {
	conf := DefaultConfig()
	conf.Timeout = 0
	assert.EqualError(t, conf.Validate(), "timeout should be greater than 0")

	conf = DefaultConfig()
	conf.Termination = TerminationFixedDuration
	conf.Duration = -time.Second
	assert.EqualError(t, conf.Validate(), "duration should be greater than 0")
}

func TestPolicyFromConfig(t *testing.T) {
	conf := DefaultConfig()
	conf.Termination = TerminationFixedDuration
	p, err := conf.Policy()
	require.NoError(t, err)
	assert.Equal(t, FixedDuration{180 * time.Second}, p)
	assert.Equal(t, "fixed duration 3m0s", p.String())
}

func TestNoWindowByDefault(t *testing.T) {
	conf := DefaultConfig()
	assert.Nil(t, conf.Window())

	conf.WindowStart = *window.NewTimeOfDay("20:00")
	conf.WindowEnd = *window.NewTimeOfDay("06:30")
	require.NoError(t, conf.Validate())
	w := conf.Window()
	require.NotNil(t, w)
	assert.Equal(t, 20, w.Start.Hour())
}
