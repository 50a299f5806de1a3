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

package main

import (
	"errors"

	"github.com/godbus/dbus"
	"github.com/godbus/dbus/introspect"

	"github.com/TheCacophonyProject/ir-recorder/monitor"
)

const (
	dbusName = "org.cacophony.irrecorder"
	dbusPath = "/org/cacophony/irrecorder"
)

type service struct {
	mon      *monitor.Monitor
	snapshot *snapshotter
}

func startService(dir string, mon *monitor.Monitor) error {
	conn, err := dbus.SystemBus()
	if err != nil {
		return err
	}
	reply, err := conn.RequestName(dbusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return err
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return errors.New("name already taken")
	}

	s := &service{
		mon:      mon,
		snapshot: newSnapshotter(dir, mon.RecentFrame),
	}
	conn.Export(s, dbusPath, dbusName)
	conn.Export(genIntrospectable(s), dbusPath, "org.freedesktop.DBus.Introspectable")

	return nil
}

func genIntrospectable(v interface{}) introspect.Introspectable {
	node := &introspect.Node{
		Interfaces: []introspect.Interface{{
			Name:    dbusName,
			Methods: introspect.Methods(v),
		}},
	}
	return introspect.NewIntrospectable(node)
}

// Status returns whether a recording is in progress, whether the
// illumination is on, the latest motion score and the current session
// id.
func (s *service) Status() (bool, bool, float64, string, *dbus.Error) {
	st := s.mon.Status()
	return st.Recording, st.Illuminated, st.LastScore, st.SessionID, nil
}

// TakeSnapshot will save the most recent frame as a still
func (s *service) TakeSnapshot() *dbus.Error {
	err := s.snapshot.take()
	if err != nil {
		return &dbus.Error{
			Name: dbusName + ".TakeSnapshot",
			Body: []interface{}{err.Error()},
		}
	}
	return nil
}
