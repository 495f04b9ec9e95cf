package inspect_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/tailored-agentic-units/fuse/graph"
	"github.com/tailored-agentic-units/fuse/identity"
	"github.com/tailored-agentic-units/fuse/inspect"
	"github.com/tailored-agentic-units/fuse/kinds"
	"github.com/tailored-agentic-units/fuse/observability"
)

var base = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	graph   *graph.Graph
	point   *kinds.Point2D
	heading *kinds.Orientation2D
	capture *observability.CaptureObserver
	server  *httptest.Server
	client  *inspect.Client
}

func setup(t *testing.T, clientOpts ...connect.ClientOption) *fixture {
	t.Helper()

	g := graph.NewWithDeps("inspect", nil, nil)
	p, err := kinds.NewPoint2D(kinds.At(base), 3, 4)
	if err != nil {
		t.Fatalf("NewPoint2D failed: %v", err)
	}
	o, err := kinds.NewOrientation2D(kinds.At(base), 0.5)
	if err != nil {
		t.Fatalf("NewOrientation2D failed: %v", err)
	}
	if _, err := g.Add(p); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := g.Add(o); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	capture := observability.NewCaptureObserver()
	path, handler := inspect.NewHandler(g, inspect.WithObserver(capture))

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &fixture{
		graph:   g,
		point:   p,
		heading: o,
		capture: capture,
		server:  server,
		client:  inspect.NewClient(server.Client(), server.URL, clientOpts...),
	}
}

func TestNewHandler_Path(t *testing.T) {
	path, _ := inspect.NewHandler(graph.NewWithDeps("x", nil, nil))
	if path != "/fuse.inspect.v1.InspectService/" {
		t.Errorf("path = %q", path)
	}
}

func TestListVariables(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		typeName string
		want     int
	}{
		{"all", "", 2},
		{"points", kinds.Point2DType, 1},
		{"headings", kinds.Orientation2DType, 1},
		{"absent kind", kinds.Point3DType, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars, err := f.client.ListVariables(ctx, tt.typeName)
			if err != nil {
				t.Fatalf("ListVariables failed: %v", err)
			}
			if len(vars) != tt.want {
				t.Fatalf("len = %d, want %d", len(vars), tt.want)
			}
			for _, v := range vars {
				if tt.typeName != "" && v.Type() != tt.typeName {
					t.Errorf("got %s in %s listing", v.Type(), tt.typeName)
				}
				if !f.graph.Has(v.ID()) {
					t.Errorf("listed %s not in graph", v.ID())
				}
			}
		})
	}

	if n := f.capture.Count(inspect.EventList); n != len(tests) {
		t.Errorf("list events = %d, want %d", n, len(tests))
	}
}

func TestGetVariable(t *testing.T) {
	f := setup(t)

	v, text, err := f.client.GetVariable(context.Background(), f.point.ID())
	if err != nil {
		t.Fatalf("GetVariable failed: %v", err)
	}
	if v.ID() != f.point.ID() || v.Type() != kinds.Point2DType {
		t.Errorf("got %s %s", v.Type(), v.ID())
	}
	if !v.Values().Equal(f.point.Values()) {
		t.Errorf("values = %v, want %v", v.Values().Copy(), f.point.Values().Copy())
	}
	if !strings.Contains(text, f.point.ID().String()) || !strings.HasPrefix(text, kinds.Point2DType) {
		t.Errorf("text = %q", text)
	}
	if n := f.capture.Count(inspect.EventGet); n != 1 {
		t.Errorf("get events = %d, want 1", n)
	}
}

func TestGetVariable_NotFound(t *testing.T) {
	f := setup(t)

	missing := identity.Generate("inspect_test.Missing")
	_, _, err := f.client.GetVariable(context.Background(), missing)
	if code := connect.CodeOf(err); code != connect.CodeNotFound {
		t.Errorf("code = %v, want %v (err %v)", code, connect.CodeNotFound, err)
	}
}

func TestGetVariable_InvalidID(t *testing.T) {
	f := setup(t)

	// Key.String never produces an invalid id, so post raw JSON.
	resp, err := f.server.Client().Post(
		f.server.URL+inspect.GetVariableProcedure,
		"application/json",
		strings.NewReader(`{"id": "not-a-key"}`),
	)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestClient_JSON(t *testing.T) {
	f := setup(t, connect.WithProtoJSON())

	vars, err := f.client.ListVariables(context.Background(), "")
	if err != nil {
		t.Fatalf("ListVariables over JSON failed: %v", err)
	}
	if len(vars) != f.graph.Len() {
		t.Errorf("len = %d, want %d", len(vars), f.graph.Len())
	}
}

func TestConfig(t *testing.T) {
	cfg := inspect.DefaultConfig()
	if cfg.Enabled() {
		t.Error("default config is enabled")
	}
	cfg.Merge(&inspect.Config{Addr: ":8086"})
	if !cfg.Enabled() || cfg.Addr != ":8086" {
		t.Errorf("Addr = %q after merge", cfg.Addr)
	}
	cfg.Merge(&inspect.Config{})
	if cfg.Addr != ":8086" {
		t.Errorf("empty merge changed Addr to %q", cfg.Addr)
	}
}
