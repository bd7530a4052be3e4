// Package systemd reads unit state over D-Bus.
package systemd

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-systemd/v22/dbus"
)

// UnitState is the load and activity state of one unit.
type UnitState struct {
	Name        string
	LoadState   string
	ActiveState string
	SubState    string
	MainPID     int
}

// Loaded reports whether systemd knows the unit.
func (s UnitState) Loaded() bool { return s.LoadState == "loaded" }

// Active reports whether the unit is running or starting.
func (s UnitState) Active() bool {
	return s.ActiveState == "active" || s.ActiveState == "activating" || s.ActiveState == "reloading"
}

func (s UnitState) String() string {
	return fmt.Sprintf("%s %s/%s/%s", s.Name, s.LoadState, s.ActiveState, s.SubState)
}

// conn is the subset of *dbus.Conn used here.
type conn interface {
	ListUnitsByNamesContext(ctx context.Context, units []string) ([]dbus.UnitStatus, error)
	GetUnitTypePropertiesContext(ctx context.Context, unit, unitType string) (map[string]interface{}, error)
	Close()
}

// UnitName appends ".service" when unit has no type suffix, as journalctl -u does.
func UnitName(unit string) string {
	if unit == "" || strings.Contains(unit, ".") {
		return unit
	}
	return unit + ".service"
}

// Lookup returns the state of unit from the system manager.
func Lookup(ctx context.Context, unit string) (UnitState, error) {
	c, err := dbus.NewWithContext(ctx)
	if err != nil {
		return UnitState{}, fmt.Errorf("dbus connect: %w", err)
	}
	return lookup(ctx, c, unit)
}

func lookup(ctx context.Context, c conn, unit string) (UnitState, error) {
	defer c.Close()

	name := UnitName(unit)
	units, err := c.ListUnitsByNamesContext(ctx, []string{name})
	if err != nil {
		return UnitState{}, fmt.Errorf("list units: %w", err)
	}
	if len(units) == 0 {
		return UnitState{Name: name, LoadState: "not-found", ActiveState: "inactive", SubState: "dead"}, nil
	}

	u := units[0]
	state := UnitState{Name: u.Name, LoadState: u.LoadState, ActiveState: u.ActiveState, SubState: u.SubState}
	if state.Active() && strings.HasSuffix(u.Name, ".service") {
		props, err := c.GetUnitTypePropertiesContext(ctx, u.Name, "Service")
		if err == nil {
			if pid, ok := props["MainPID"].(uint32); ok && pid > 0 {
				state.MainPID = int(pid)
			}
		}
	}
	return state, nil
}
