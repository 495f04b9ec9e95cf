// Package kinds provides the concrete variable kinds used by estimation
// graphs: planar and spatial points and orientations, each identified by the
// timestamp (and optional device) it was observed at.
//
// All kinds register a factory with the variable package at init, so they
// can be rebuilt by type name from their attributes.
package kinds

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/tailored-agentic-units/fuse/identity"
	"github.com/tailored-agentic-units/fuse/variable"
)

// Attribute keys reported by every stamped kind.
const (
	AttrStamp    = "stamp"
	AttrDeviceID = "device_id"
)

// Stamp is the defining metadata of a stamped variable: the time the
// unknown refers to and, optionally, the device that observed it.
type Stamp struct {
	Time   time.Time
	Device identity.Key
}

// At returns a Stamp for t without a device.
func At(t time.Time) Stamp {
	return Stamp{Time: t}
}

func (s Stamp) validate() error {
	if s.Time.IsZero() {
		return ErrMissingStamp
	}
	return nil
}

// stamped carries the storage and identity shared by every kind here.
type stamped struct {
	variable.Storage
	stamp Stamp
	id    identity.Key
}

func newStamped(typeName string, stamp Stamp, values ...float64) (stamped, error) {
	if err := stamp.validate(); err != nil {
		return stamped{}, fmt.Errorf("%s: %w", typeName, err)
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return stamped{}, fmt.Errorf("%s: %w: value %d is %v", typeName, ErrNonFinite, i, v)
		}
	}

	return stamped{
		Storage: variable.NewStorage(values...),
		stamp:   stamp,
		id:      identity.FromStamp(typeName, stamp.Time, stamp.Device),
	}, nil
}

func (s *stamped) ID() identity.Key {
	return s.id
}

// Stamp returns the metadata the variable's identity is derived from.
func (s *stamped) Stamp() Stamp {
	return s.stamp
}

func (s *stamped) Attributes() map[string]any {
	attrs := map[string]any{
		AttrStamp: s.stamp.Time.UTC().Format(time.RFC3339Nano),
	}
	if !s.stamp.Device.IsNil() {
		attrs[AttrDeviceID] = s.stamp.Device.String()
	}
	return attrs
}

func (s *stamped) clone() stamped {
	return stamped{
		Storage: s.CloneStorage(),
		stamp:   s.stamp,
		id:      s.id,
	}
}

func (s *stamped) print(w io.Writer, typeName string, labels ...string) {
	fmt.Fprintf(w, "%s:\n", typeName)
	fmt.Fprintf(w, "  uuid: %s\n", s.id)
	fmt.Fprintf(w, "  stamp: %s\n", s.stamp.Time.UTC().Format(time.RFC3339Nano))
	if !s.stamp.Device.IsNil() {
		fmt.Fprintf(w, "  device_id: %s\n", s.stamp.Device)
	}
	fmt.Fprintf(w, "  size: %d\n", s.Size())
	fmt.Fprintf(w, "  data:\n")
	for i, v := range s.Values().All() {
		fmt.Fprintf(w, "  - %s: %g\n", labels[i], v)
	}
}

// stampFromAttributes parses the attributes produced by stamped.Attributes.
func stampFromAttributes(attrs map[string]any) (Stamp, error) {
	raw, ok := attrs[AttrStamp].(string)
	if !ok || raw == "" {
		return Stamp{}, ErrMissingStamp
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return Stamp{}, fmt.Errorf("%w: %v", ErrInvalidAttribute, err)
	}

	stamp := Stamp{Time: t}
	if dev, ok := attrs[AttrDeviceID]; ok {
		s, ok := dev.(string)
		if !ok {
			return Stamp{}, fmt.Errorf("%w: %s is %T", ErrInvalidAttribute, AttrDeviceID, dev)
		}
		stamp.Device, err = identity.Parse(s)
		if err != nil {
			return Stamp{}, fmt.Errorf("%w: %v", ErrInvalidAttribute, err)
		}
	}

	return stamp, nil
}

func wantValues(typeName string, values []float64, n int) error {
	if len(values) != n {
		return fmt.Errorf("%s: %w: got %d values, want %d", typeName, ErrValueCount, len(values), n)
	}
	return nil
}
