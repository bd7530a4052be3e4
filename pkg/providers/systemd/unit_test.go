package systemd

import (
	"context"
	"errors"
	"testing"

	"github.com/coreos/go-systemd/v22/dbus"
)

type fakeConn struct {
	units  []dbus.UnitStatus
	props  map[string]interface{}
	err    error
	asked  []string
	closed bool
}

func (f *fakeConn) ListUnitsByNamesContext(_ context.Context, units []string) ([]dbus.UnitStatus, error) {
	f.asked = units
	return f.units, f.err
}

func (f *fakeConn) GetUnitTypePropertiesContext(context.Context, string, string) (map[string]interface{}, error) {
	return f.props, nil
}

func (f *fakeConn) Close() { f.closed = true }

func TestUnitName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"nginx", "nginx.service"},
		{"nginx.service", "nginx.service"},
		{"backup.timer", "backup.timer"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := UnitName(tt.in); got != tt.want {
			t.Errorf("UnitName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLookupActive(t *testing.T) {
	c := &fakeConn{
		units: []dbus.UnitStatus{{Name: "api.service", LoadState: "loaded", ActiveState: "active", SubState: "running"}},
		props: map[string]interface{}{"MainPID": uint32(4242)},
	}
	s, err := lookup(context.Background(), c, "api")
	if err != nil {
		t.Fatal(err)
	}
	if len(c.asked) != 1 || c.asked[0] != "api.service" {
		t.Errorf("asked for %v", c.asked)
	}
	if !s.Loaded() || !s.Active() || s.MainPID != 4242 {
		t.Errorf("unexpected state %+v", s)
	}
	if !c.closed {
		t.Error("connection not closed")
	}
}

func TestLookupMissing(t *testing.T) {
	s, err := lookup(context.Background(), &fakeConn{}, "ghost")
	if err != nil {
		t.Fatal(err)
	}
	if s.Loaded() || s.Active() {
		t.Errorf("unexpected state %+v", s)
	}
	if s.String() != "ghost.service not-found/inactive/dead" {
		t.Errorf("String() = %q", s.String())
	}
}

func TestLookupError(t *testing.T) {
	c := &fakeConn{err: errors.New("bus gone")}
	if _, err := lookup(context.Background(), c, "api"); err == nil {
		t.Fatal("expected error")
	}
	if !c.closed {
		t.Error("connection not closed")
	}
}
