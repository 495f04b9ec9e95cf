package inspect

import (
	"context"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/fuse/identity"
	"github.com/tailored-agentic-units/fuse/variable"
	"github.com/tailored-agentic-units/fuse/wire"
)

// Client calls an inspect service. Errors returned by the server carry a
// connect code; use connect.CodeOf to inspect it.
type Client struct {
	list *connect.Client[structpb.Struct, structpb.Struct]
	get  *connect.Client[structpb.Struct, structpb.Struct]
}

// NewClient creates a Client for the service at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		list: connect.NewClient[structpb.Struct, structpb.Struct](
			httpClient, baseURL+ListVariablesProcedure, opts...,
		),
		get: connect.NewClient[structpb.Struct, structpb.Struct](
			httpClient, baseURL+GetVariableProcedure, opts...,
		),
	}
}

// ListVariables returns the variables of the served graph in ascending key
// order. A non-empty typeName restricts the result to one kind.
func (c *Client) ListVariables(ctx context.Context, typeName string) ([]variable.Variable, error) {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{}}
	if typeName != "" {
		req.Fields[FieldType] = structpb.NewStringValue(typeName)
	}

	resp, err := c.list.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}

	list := resp.Msg.GetFields()[FieldVariables].GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%w: response has no %s", wire.ErrMalformed, FieldVariables)
	}
	return wire.DecodeList(list)
}

// GetVariable returns one variable and its printed description.
func (c *Client) GetVariable(ctx context.Context, key identity.Key) (variable.Variable, string, error) {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldID: structpb.NewStringValue(key.String()),
	}}

	resp, err := c.get.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, "", err
	}

	fields := resp.Msg.GetFields()
	encoded := fields[FieldVariable].GetStructValue()
	if encoded == nil {
		return nil, "", fmt.Errorf("%w: response has no %s", wire.ErrMalformed, FieldVariable)
	}

	v, err := wire.Decode(encoded)
	if err != nil {
		return nil, "", err
	}
	return v, fields[FieldText].GetStringValue(), nil
}
