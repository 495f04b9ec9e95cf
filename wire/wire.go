// Package wire encodes variables as protobuf Struct messages.
//
// A message carries the type name, the identity key, the stored values and
// the attributes the identity is derived from:
//
//	{
//	  "type": "fuse.Point2D",
//	  "id": "4b0f3c1e-...",
//	  "values": [1, 2],
//	  "attributes": {"stamp": "2024-05-01T00:00:01Z"}
//	}
//
// Decoding rebuilds the variable through the kind registry and recomputes its
// identity, so a message whose attributes no longer produce the encoded id is
// rejected. Only kinds implementing variable.Describer can be encoded.
package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/fuse/graph"
	"github.com/tailored-agentic-units/fuse/identity"
	"github.com/tailored-agentic-units/fuse/variable"
)

// Field names of an encoded variable.
const (
	FieldType       = "type"
	FieldID         = "id"
	FieldValues     = "values"
	FieldAttributes = "attributes"
)

// Encode converts v into a Struct message.
func Encode(v variable.Variable) (*structpb.Struct, error) {
	d, ok := v.(variable.Describer)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotDescribable, v.Type())
	}

	values := make([]any, 0, v.Size())
	for _, x := range v.Values().All() {
		values = append(values, x)
	}

	attrs := d.Attributes()
	if attrs == nil {
		attrs = map[string]any{}
	}

	s, err := structpb.NewStruct(map[string]any{
		FieldType:       v.Type(),
		FieldID:         v.ID().String(),
		FieldValues:     values,
		FieldAttributes: attrs,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", v.ID(), err)
	}
	return s, nil
}

// Decode rebuilds a variable from a message produced by Encode.
func Decode(s *structpb.Struct) (variable.Variable, error) {
	fields := s.GetFields()

	typeName := fields[FieldType].GetStringValue()
	if typeName == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformed, FieldType)
	}

	id, err := identity.Parse(fields[FieldID].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, FieldID, err)
	}

	list := fields[FieldValues].GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformed, FieldValues)
	}
	values := make([]float64, 0, len(list.GetValues()))
	for i, x := range list.GetValues() {
		if _, ok := x.GetKind().(*structpb.Value_NumberValue); !ok {
			return nil, fmt.Errorf("%w: %s[%d] is not a number", ErrMalformed, FieldValues, i)
		}
		values = append(values, x.GetNumberValue())
	}

	attrs := fields[FieldAttributes].GetStructValue().AsMap()

	v, err := variable.Build(typeName, attrs, values)
	if err != nil {
		return nil, err
	}
	if v.ID() != id {
		return nil, fmt.Errorf("%w: encoded %s, rebuilt %s", ErrIdentityMismatch, id, v.ID())
	}
	return v, nil
}

// EncodeGraph encodes every variable of g in ascending key order, holding
// the graph's storage read lock.
func EncodeGraph(g *graph.Graph) (*structpb.ListValue, error) {
	list := &structpb.ListValue{}
	var err error
	g.Read(func() {
		for v := range g.All() {
			var s *structpb.Struct
			if s, err = Encode(v); err != nil {
				return
			}
			list.Values = append(list.Values, structpb.NewStructValue(s))
		}
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// DecodeList decodes every element of a list produced by EncodeGraph.
func DecodeList(list *structpb.ListValue) ([]variable.Variable, error) {
	vars := make([]variable.Variable, 0, len(list.GetValues()))
	for i, item := range list.GetValues() {
		s := item.GetStructValue()
		if s == nil {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrMalformed, i)
		}
		v, err := Decode(s)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		vars = append(vars, v)
	}
	return vars, nil
}

// DecodeInto decodes list and adds every variable to g, merging by key. It
// returns the number of variables actually inserted.
func DecodeInto(g *graph.Graph, list *structpb.ListValue) (int, error) {
	vars, err := DecodeList(list)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, v := range vars {
		ok, err := g.Add(v)
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

// Marshal encodes v in protobuf binary form.
func Marshal(v variable.Variable) ([]byte, error) {
	s, err := Encode(v)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

// Unmarshal decodes a variable from protobuf binary form.
func Unmarshal(data []byte) (variable.Variable, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Decode(&s)
}

// MarshalJSON encodes every variable of g as a JSON array.
func MarshalJSON(g *graph.Graph) ([]byte, error) {
	list, err := EncodeGraph(g)
	if err != nil {
		return nil, err
	}
	return protojson.MarshalOptions{Multiline: true}.Marshal(list)
}

// UnmarshalJSON decodes a JSON array produced by MarshalJSON.
func UnmarshalJSON(data []byte) ([]variable.Variable, error) {
	var list structpb.ListValue
	if err := protojson.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return DecodeList(&list)
}
