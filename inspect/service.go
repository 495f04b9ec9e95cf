// Package inspect serves read-only views of a graph over connect-rpc.
//
// The service has no generated stubs: requests and responses are protobuf
// Struct messages, so any connect, gRPC or gRPC-Web client can call it with
// the procedures below.
//
//	ListVariables  {"type": "fuse.Point2D"}        -> {"variables": [...]}
//	GetVariable    {"id": "4b0f3c1e-..."}          -> {"variable": {...}, "text": "..."}
//
// Variables are encoded with the wire package under the graph's storage read
// lock, so a response never mixes values from before and after an engine
// update. The text field carries the variable's Print output.
package inspect

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/fuse/graph"
	"github.com/tailored-agentic-units/fuse/identity"
	"github.com/tailored-agentic-units/fuse/observability"
	"github.com/tailored-agentic-units/fuse/variable"
	"github.com/tailored-agentic-units/fuse/wire"
)

const (
	ServiceName = "fuse.inspect.v1.InspectService"

	ListVariablesProcedure = "/" + ServiceName + "/ListVariables"
	GetVariableProcedure   = "/" + ServiceName + "/GetVariable"
)

// Request and response field names.
const (
	FieldType      = "type"
	FieldID        = "id"
	FieldVariables = "variables"
	FieldVariable  = "variable"
	FieldText      = "text"
)

// Option configures the service handler.
type Option func(*service)

// WithObserver sets the observer receiving inspect events.
func WithObserver(o observability.Observer) Option {
	return func(s *service) { s.observer = o }
}

// WithHandlerOptions passes options to the underlying connect handlers.
func WithHandlerOptions(opts ...connect.HandlerOption) Option {
	return func(s *service) { s.handlerOpts = append(s.handlerOpts, opts...) }
}

type service struct {
	graph       *graph.Graph
	observer    observability.Observer
	handlerOpts []connect.HandlerOption
}

// NewHandler builds an HTTP handler serving g. It returns the path prefix to
// mount the handler on.
func NewHandler(g *graph.Graph, opts ...Option) (string, http.Handler) {
	s := &service{
		graph:    g,
		observer: observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.observer == nil {
		s.observer = observability.NoOpObserver{}
	}

	mux := http.NewServeMux()
	mux.Handle(ListVariablesProcedure, connect.NewUnaryHandler(
		ListVariablesProcedure, s.listVariables, s.handlerOpts...,
	))
	mux.Handle(GetVariableProcedure, connect.NewUnaryHandler(
		GetVariableProcedure, s.getVariable, s.handlerOpts...,
	))

	return "/" + ServiceName + "/", mux
}

func (s *service) listVariables(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	typeName := req.Msg.GetFields()[FieldType].GetStringValue()

	list := &structpb.ListValue{}
	var err error
	s.graph.Read(func() {
		for v := range s.graph.All() {
			if typeName != "" && v.Type() != typeName {
				continue
			}
			var encoded *structpb.Struct
			if encoded, err = wire.Encode(v); err != nil {
				return
			}
			list.Values = append(list.Values, structpb.NewStructValue(encoded))
		}
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	observability.Emit(ctx, s.observer, EventList, observability.LevelVerbose, map[string]any{
		"graph":     s.graph.Name(),
		"type":      typeName,
		"variables": len(list.Values),
	})

	return connect.NewResponse(&structpb.Struct{
		Fields: map[string]*structpb.Value{
			FieldVariables: structpb.NewListValue(list),
		},
	}), nil
}

func (s *service) getVariable(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	raw := req.Msg.GetFields()[FieldID].GetStringValue()
	key, err := identity.Parse(raw)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %q", ErrInvalidKey, raw))
	}

	v, exists := s.graph.Get(key)
	if !exists {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("%w: %s", ErrNotFound, key))
	}

	var (
		encoded *structpb.Struct
		text    string
	)
	s.graph.Read(func() {
		encoded, err = wire.Encode(v)
		text = variable.Sprint(v)
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	observability.Emit(ctx, s.observer, EventGet, observability.LevelVerbose, map[string]any{
		"graph": s.graph.Name(),
		"id":    key.String(),
		"type":  v.Type(),
	})

	return connect.NewResponse(&structpb.Struct{
		Fields: map[string]*structpb.Value{
			FieldVariable: structpb.NewStructValue(encoded),
			FieldText:     structpb.NewStringValue(text),
		},
	}), nil
}
