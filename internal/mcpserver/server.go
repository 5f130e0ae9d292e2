// Package mcpserver exposes the loadout search and the game catalog as Model
// Context Protocol tools.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tonyliqx/nightreign-relic-manager/internal/catalog"
	"github.com/tonyliqx/nightreign-relic-manager/internal/relic"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "Nightreign Relic Manager"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// InventorySource loads the relics a search draws from. It is called once per
// search so a backing store can change between calls.
type InventorySource func(ctx context.Context) ([]relic.Relic, error)

// Config wires the server to its data.
type Config struct {
	Catalog   *catalog.Catalog
	Inventory InventorySource
	// CheckpointEvery is passed through to every search.
	CheckpointEvery int
	// Log receives search [tag] lines. Nil is silent. Never stdout: stdio
	// transport owns it.
	Log io.Writer
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
}

// New creates a server with every tool registered. A nil catalog means the
// embedded one; a nil inventory source searches an empty inventory.
func New(cfg Config) *Server {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.Inventory == nil {
		cfg.Inventory = func(context.Context) ([]relic.Relic, error) { return nil, nil }
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerTools(mcpServer, cfg)
	return &Server{mcpServer: mcpServer}
}

// Serve runs the server on stdio until the client disconnects or ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

func registerTools(s *mcp.Server, cfg Config) {
	mcp.AddTool(s, SearchBuildsTool(), SearchBuildsHandler(cfg))
	mcp.AddTool(s, ListNightfarersTool(), ListNightfarersHandler(cfg.Catalog))
	mcp.AddTool(s, ListVesselsTool(), ListVesselsHandler(cfg.Catalog))
	mcp.AddTool(s, ListEffectsTool(), ListEffectsHandler(cfg.Catalog))
}
