package wire_test

import (
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/fuse/graph"
	"github.com/tailored-agentic-units/fuse/identity"
	"github.com/tailored-agentic-units/fuse/kinds"
	"github.com/tailored-agentic-units/fuse/manifold"
	"github.com/tailored-agentic-units/fuse/variable"
	"github.com/tailored-agentic-units/fuse/wire"
)

var base = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

var device = identity.Generate("wire_test.Device", []byte("lidar"))

func stampAt(i int) kinds.Stamp {
	return kinds.Stamp{Time: base.Add(time.Duration(i) * time.Millisecond), Device: device}
}

func mustVar(t *testing.T, v variable.Variable, err error) variable.Variable {
	t.Helper()
	if err != nil {
		t.Fatalf("construct failed: %v", err)
	}
	return v
}

func fixtures(t *testing.T) []variable.Variable {
	t.Helper()
	p2, err := kinds.NewPoint2D(stampAt(1), 1, -2)
	v1 := mustVar(t, p2, err)
	p3, err := kinds.NewPoint3D(stampAt(2), 1, 2, 3)
	v2 := mustVar(t, p3, err)
	o2, err := kinds.NewOrientation2D(stampAt(3), 0.25)
	v3 := mustVar(t, o2, err)
	o3, err := kinds.NewOrientation3DFromRPY(stampAt(4), 0.1, 0.2, 0.3)
	v4 := mustVar(t, o3, err)
	return []variable.Variable{v1, v2, v3, v4}
}

func closeValues(a, b variable.View) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.Len() {
		if math.Abs(a.At(i)-b.At(i)) > 1e-15 {
			return false
		}
	}
	return true
}

type bare struct {
	variable.Storage
}

func (b *bare) Type() string                { return "wire_test.Bare" }
func (b *bare) ID() identity.Key            { return identity.Generate("wire_test.Bare") }
func (b *bare) Print(io.Writer)             {}
func (b *bare) Clone() variable.Variable    { return &bare{Storage: b.CloneStorage()} }
func (b *bare) Manifold() manifold.Manifold { return nil }

func TestEncodeDecode(t *testing.T) {
	for _, v := range fixtures(t) {
		t.Run(v.Type(), func(t *testing.T) {
			s, err := wire.Encode(v)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			if got := s.GetFields()[wire.FieldType].GetStringValue(); got != v.Type() {
				t.Errorf("type field = %q, want %q", got, v.Type())
			}
			if got := s.GetFields()[wire.FieldID].GetStringValue(); got != v.ID().String() {
				t.Errorf("id field = %q, want %q", got, v.ID())
			}

			decoded, err := wire.Decode(s)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if decoded.ID() != v.ID() || !variable.SameKind(decoded, v) {
				t.Errorf("decoded %s %s, want %s %s", decoded.Type(), decoded.ID(), v.Type(), v.ID())
			}
			if !closeValues(decoded.Values(), v.Values()) {
				t.Errorf("decoded values %v, want %v", decoded.Values().Copy(), v.Values().Copy())
			}
		})
	}
}

func TestEncode_NotDescribable(t *testing.T) {
	v := &bare{Storage: variable.NewStorage(1)}
	if _, err := wire.Encode(v); !errors.Is(err, wire.ErrNotDescribable) {
		t.Errorf("Encode error = %v, want ErrNotDescribable", err)
	}
}

func TestDecode_Rejects(t *testing.T) {
	p, err := kinds.NewPoint2D(stampAt(1), 1, 2)
	if err != nil {
		t.Fatalf("NewPoint2D failed: %v", err)
	}
	other := identity.Generate("wire_test.Other")

	tests := []struct {
		name   string
		mutate func(fields map[string]*structpb.Value)
		want   error
	}{
		{
			name:   "missing type",
			mutate: func(f map[string]*structpb.Value) { delete(f, wire.FieldType) },
			want:   wire.ErrMalformed,
		},
		{
			name:   "bad id",
			mutate: func(f map[string]*structpb.Value) { f[wire.FieldID] = structpb.NewStringValue("not-a-key") },
			want:   wire.ErrMalformed,
		},
		{
			name:   "missing values",
			mutate: func(f map[string]*structpb.Value) { delete(f, wire.FieldValues) },
			want:   wire.ErrMalformed,
		},
		{
			name: "non-numeric value",
			mutate: func(f map[string]*structpb.Value) {
				f[wire.FieldValues].GetListValue().Values[0] = structpb.NewStringValue("one")
			},
			want: wire.ErrMalformed,
		},
		{
			name:   "unknown type",
			mutate: func(f map[string]*structpb.Value) { f[wire.FieldType] = structpb.NewStringValue("wire_test.Unknown") },
			want:   variable.ErrUnknownType,
		},
		{
			name:   "identity mismatch",
			mutate: func(f map[string]*structpb.Value) { f[wire.FieldID] = structpb.NewStringValue(other.String()) },
			want:   wire.ErrIdentityMismatch,
		},
		{
			name: "tampered stamp",
			mutate: func(f map[string]*structpb.Value) {
				attrs := f[wire.FieldAttributes].GetStructValue().GetFields()
				attrs[kinds.AttrStamp] = structpb.NewStringValue(base.Add(time.Hour).Format(time.RFC3339Nano))
			},
			want: wire.ErrIdentityMismatch,
		},
		{
			name:   "wrong value count",
			mutate: func(f map[string]*structpb.Value) { f[wire.FieldValues].GetListValue().Values = nil },
			want:   kinds.ErrValueCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := wire.Encode(p)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			tt.mutate(s.GetFields())

			if _, err := wire.Decode(s); !errors.Is(err, tt.want) {
				t.Errorf("Decode error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncodeGraph_DecodeInto(t *testing.T) {
	src := graph.NewWithDeps("src", nil, nil)
	for _, v := range fixtures(t) {
		if _, err := src.Add(v); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	list, err := wire.EncodeGraph(src)
	if err != nil {
		t.Fatalf("EncodeGraph failed: %v", err)
	}
	if len(list.GetValues()) != src.Len() {
		t.Fatalf("encoded %d variables, want %d", len(list.GetValues()), src.Len())
	}

	dst := graph.NewWithDeps("dst", nil, nil)
	inserted, err := wire.DecodeInto(dst, list)
	if err != nil {
		t.Fatalf("DecodeInto failed: %v", err)
	}
	if inserted != src.Len() {
		t.Errorf("inserted = %d, want %d", inserted, src.Len())
	}

	inserted, err = wire.DecodeInto(dst, list)
	if err != nil {
		t.Fatalf("second DecodeInto failed: %v", err)
	}
	if inserted != 0 {
		t.Errorf("second DecodeInto inserted %d, want 0", inserted)
	}

	for v := range src.All() {
		got, ok := dst.Get(v.ID())
		if !ok {
			t.Errorf("%s missing after decode", v.ID())
			continue
		}
		if !closeValues(got.Values(), v.Values()) {
			t.Errorf("%s values %v, want %v", v.ID(), got.Values().Copy(), v.Values().Copy())
		}
	}
}

func TestDecodeList_NotObject(t *testing.T) {
	list := &structpb.ListValue{Values: []*structpb.Value{structpb.NewNumberValue(1)}}
	if _, err := wire.DecodeList(list); !errors.Is(err, wire.ErrMalformed) {
		t.Errorf("DecodeList error = %v, want ErrMalformed", err)
	}
}

func TestMarshalBinary(t *testing.T) {
	v := fixtures(t)[3]

	data, err := wire.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	decoded, err := wire.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.ID() != v.ID() || !closeValues(decoded.Values(), v.Values()) {
		t.Errorf("binary round trip changed %s", v.ID())
	}

	if _, err := wire.Unmarshal([]byte{0xff, 0xff}); !errors.Is(err, wire.ErrMalformed) {
		t.Errorf("Unmarshal(garbage) error = %v, want ErrMalformed", err)
	}
}

func TestMarshalJSON(t *testing.T) {
	g := graph.NewWithDeps("json", nil, nil)
	for _, v := range fixtures(t) {
		if _, err := g.Add(v); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	data, err := wire.MarshalJSON(g)
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}

	vars, err := wire.UnmarshalJSON(data)
	if err != nil {
		t.Fatalf("UnmarshalJSON failed: %v", err)
	}
	if len(vars) != g.Len() {
		t.Fatalf("decoded %d variables, want %d", len(vars), g.Len())
	}
	for i, key := range g.Keys() {
		if vars[i].ID() != key {
			t.Errorf("vars[%d] = %s, want %s", i, vars[i].ID(), key)
		}
	}

	if _, err := wire.UnmarshalJSON([]byte("{")); !errors.Is(err, wire.ErrMalformed) {
		t.Errorf("UnmarshalJSON(garbage) error = %v, want ErrMalformed", err)
	}
}
