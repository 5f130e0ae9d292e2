package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tonyliqx/nightreign-relic-manager/internal/catalog"
	"github.com/tonyliqx/nightreign-relic-manager/internal/relic"
)

func testInventory(t *testing.T) InventorySource {
	t.Helper()
	red, err := relic.NewSimple(relic.Red, "生命力＋１", "集中力＋１")
	if err != nil {
		t.Fatalf("new relic: %v", err)
	}
	dual, err := relic.NewDual(relic.Blue, relic.Pair{Positive: "强韧度＋４", Negative: "降低生命力"})
	if err != nil {
		t.Fatalf("new relic: %v", err)
	}
	return func(context.Context) ([]relic.Relic, error) {
		return []relic.Relic{red, dual}, nil
	}
}

// connect starts the server on an in-memory transport and returns a client
// session for it.
func connect(t *testing.T, cfg Config) *mcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server := New(cfg)
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.serveWithTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	clientCtx, clientCancel := context.WithTimeout(context.Background(), time.Second)
	defer clientCancel()
	session, err := client.Connect(clientCtx, clientTransport, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func callTool[T any](t *testing.T, session *mcp.ClientSession, name string, args any) T {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("call %s: %v", name, err)
	}
	if result.IsError {
		t.Fatalf("call %s: tool error: %+v", name, result.Content)
	}
	return decodeStructuredContent[T](t, result.StructuredContent)
}

func decodeStructuredContent[T any](t *testing.T, value any) T {
	t.Helper()

	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var output T
	if err := json.Unmarshal(data, &output); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
	return output
}

func TestToolsAreListed(t *testing.T) {
	session := connect(t, Config{})
	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	got := make(map[string]bool)
	for _, tool := range res.Tools {
		got[tool.Name] = true
	}
	for _, want := range []string{"search_builds", "list_nightfarers", "list_vessels", "list_effects"} {
		if !got[want] {
			t.Errorf("tool %s not registered", want)
		}
	}
}

func TestSearchBuildsOverTransport(t *testing.T) {
	session := connect(t, Config{Inventory: testInventory(t)})

	out := callTool[SearchBuildsResult](t, session, "search_builds", map[string]any{
		"nightfarer": "wylder",
		"required":   []string{"生命力+1"},
		"avoided":    []string{"降低生命力"},
	})
	if out.Nightfarer != "追踪者" {
		t.Fatalf("nightfarer = %q", out.Nightfarer)
	}
	if !strings.HasPrefix(out.Query, "nightfarer=wylder&required=") {
		t.Fatalf("query = %q", out.Query)
	}
	if len(out.Builds) == 0 {
		t.Fatal("expected builds")
	}
	for _, b := range out.Builds {
		if len(b.RequiredFound) != 1 || b.RequiredFound[0] != "生命力＋１" {
			t.Fatalf("%s: required found = %v", b.VesselID, b.RequiredFound)
		}
		for _, r := range b.Relics {
			if r.Kind == "dual" {
				t.Fatalf("%s: avoided dual relic used: %s", b.VesselID, r.Text)
			}
			if r.Slot < 1 || r.Slot > relic.SlotsPerVessel {
				t.Fatalf("%s: slot %d out of range", b.VesselID, r.Slot)
			}
		}
	}
}

func TestSearchBuildsInfeasible(t *testing.T) {
	handler := SearchBuildsHandler(Config{Catalog: catalog.Default(), Inventory: testInventory(t)})
	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, SearchBuildsInput{
		Nightfarer: "wylder",
		Required:   []string{"生命力＋１*2"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !out.Infeasible || len(out.Builds) != 0 {
		t.Fatalf("expected an infeasible empty result, got %+v", out)
	}
}

func TestSearchBuildsErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name  string
		cfg   Config
		input SearchBuildsInput
	}{
		{name: "bad requirement", input: SearchBuildsInput{Nightfarer: "wylder", Required: []string{"x*0"}}},
		{name: "unknown nightfarer", input: SearchBuildsInput{Nightfarer: "nobody"}},
		{
			name:  "inventory failure",
			cfg:   Config{Inventory: func(context.Context) ([]relic.Relic, error) { return nil, boom }},
			input: SearchBuildsInput{Nightfarer: "wylder"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.Catalog = catalog.Default()
			if cfg.Inventory == nil {
				cfg.Inventory = testInventory(t)
			}
			result, _, err := SearchBuildsHandler(cfg)(context.Background(), &mcp.CallToolRequest{}, tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			if result != nil {
				t.Fatal("expected nil result on error")
			}
		})
	}
}

func TestListNightfarersAndVessels(t *testing.T) {
	session := connect(t, Config{})

	nfs := callTool[ListNightfarersResult](t, session, "list_nightfarers", map[string]any{})
	if len(nfs.Nightfarers) != 8 {
		t.Fatalf("nightfarers = %d, want 8", len(nfs.Nightfarers))
	}
	if nfs.Nightfarers[0].Alias != "wylder" || nfs.Nightfarers[0].Vessels != catalog.VesselsPerNightfarer {
		t.Fatalf("first nightfarer = %+v", nfs.Nightfarers[0])
	}

	vessels := callTool[ListVesselsResult](t, session, "list_vessels", map[string]any{"nightfarer": "Wylder"})
	if len(vessels.Vessels) != catalog.VesselsPerNightfarer {
		t.Fatalf("vessels = %d", len(vessels.Vessels))
	}
	if got := vessels.Vessels[0].Slots; len(got) != 6 || got[0] != "红/simple" || got[3] != "红/dual" {
		t.Fatalf("slots = %v", got)
	}
}

func TestListVesselsUnknownNightfarer(t *testing.T) {
	handler := ListVesselsHandler(catalog.Default())
	_, _, err := handler(context.Background(), &mcp.CallToolRequest{}, ListVesselsInput{Nightfarer: "nobody"})
	if !errors.Is(err, catalog.ErrUnknownNightfarer) {
		t.Fatalf("err = %v", err)
	}
}

func TestListEffects(t *testing.T) {
	session := connect(t, Config{})

	all := callTool[ListEffectsResult](t, session, "list_effects", map[string]any{"kind": "negative"})
	if all.Kind != "negative" || len(all.Effects) == 0 {
		t.Fatalf("negative effects = %+v", all)
	}

	found := callTool[ListEffectsResult](t, session, "list_effects", map[string]any{"search": "生命力+", "limit": 2})
	if len(found.Effects) != 2 || found.Effects[0] != "生命力＋１" {
		t.Fatalf("search = %v", found.Effects)
	}

	handler := ListEffectsHandler(catalog.Default())
	if _, _, err := handler(context.Background(), &mcp.CallToolRequest{}, ListEffectsInput{Kind: "sideways"}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestServeRequiresConfiguredServer(t *testing.T) {
	var s *Server
	if err := s.Serve(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
