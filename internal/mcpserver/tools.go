package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tonyliqx/nightreign-relic-manager/internal/catalog"
	"github.com/tonyliqx/nightreign-relic-manager/internal/finder"
	"github.com/tonyliqx/nightreign-relic-manager/internal/relic"
)

const defaultSuggestLimit = 20

// ── search_builds ───────────────────────────────────────────────────

// SearchBuildsInput represents the MCP tool input for a loadout search.
type SearchBuildsInput struct {
	Nightfarer string   `json:"nightfarer" jsonschema:"nightfarer name or English alias, e.g. wylder"`
	Required   []string `json:"required,omitempty" jsonschema:"effects every build must carry; append *N to require N copies"`
	Avoided    []string `json:"avoided,omitempty" jsonschema:"effects no build may carry"`
	MaxResults int      `json:"max_results,omitempty" jsonschema:"result cap (default 100)"`
}

// RelicOutput is one assigned relic.
type RelicOutput struct {
	Slot    int      `json:"slot" jsonschema:"vessel slot, 1-6"`
	Kind    string   `json:"kind" jsonschema:"simple or dual"`
	Color   string   `json:"color" jsonschema:"relic color"`
	Effects []string `json:"effects" jsonschema:"effect fields in order; dual relics alternate positive and negative"`
	Text    string   `json:"text" jsonschema:"one-line rendering"`
}

// BuildOutput is one loadout.
type BuildOutput struct {
	VesselID      string        `json:"vessel_id" jsonschema:"vessel identifier"`
	VesselName    string        `json:"vessel_name" jsonschema:"vessel display name"`
	Relics        []RelicOutput `json:"relics" jsonschema:"assigned relics in slot order"`
	RequiredFound []string      `json:"required_found" jsonschema:"requirements this build meets"`
	ExtraPositive []string      `json:"extra_positive" jsonschema:"beneficial effects beyond the requirements"`
	ExtraNegative []string      `json:"extra_negative" jsonschema:"drawbacks carried by the dual relics"`
}

// SearchBuildsResult represents the MCP tool output for a loadout search.
type SearchBuildsResult struct {
	Nightfarer string        `json:"nightfarer" jsonschema:"resolved nightfarer name"`
	Query      string        `json:"query" jsonschema:"shareable query string for this search"`
	Infeasible bool          `json:"infeasible" jsonschema:"true when the inventory cannot satisfy the requirements on any vessel"`
	Visits     int64         `json:"visits" jsonschema:"search branches explored"`
	Unknown    []string      `json:"unknown" jsonschema:"query names missing from the effect catalog"`
	Builds     []BuildOutput `json:"builds" jsonschema:"matching loadouts"`
}

// SearchBuildsTool defines the MCP tool schema for a loadout search.
func SearchBuildsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "search_builds",
		Description: "Finds relic loadouts over a nightfarer's vessels that carry the required effects and none of the avoided ones",
	}
}

// SearchBuildsHandler runs a search against the configured inventory.
func SearchBuildsHandler(cfg Config) mcp.ToolHandlerFor[SearchBuildsInput, SearchBuildsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SearchBuildsInput) (*mcp.CallToolResult, SearchBuildsResult, error) {
		q := finder.Query{Nightfarer: input.Nightfarer, Avoided: input.Avoided, MaxResults: input.MaxResults}
		for _, item := range input.Required {
			req, err := finder.ParseRequirement(item)
			if err != nil {
				return nil, SearchBuildsResult{}, err
			}
			q.Required = append(q.Required, req)
		}

		inv, err := cfg.Inventory(ctx)
		if err != nil {
			return nil, SearchBuildsResult{}, fmt.Errorf("load inventory: %w", err)
		}
		out, err := finder.Run(ctx, cfg.Catalog, inv, q, finder.Options{
			CheckpointEvery: cfg.CheckpointEvery,
			Log:             cfg.Log,
		})
		if err != nil {
			return nil, SearchBuildsResult{}, err
		}

		result := SearchBuildsResult{
			Nightfarer: out.Nightfarer.Name,
			Query:      out.Query.Encode(),
			Infeasible: out.Report.Infeasible,
			Visits:     out.Report.Visits,
			Unknown:    nonNil(out.Unknown),
			Builds:     make([]BuildOutput, 0, len(out.Report.Results)),
		}
		for _, res := range out.Report.Results {
			result.Builds = append(result.Builds, buildOutput(res))
		}
		return nil, result, nil
	}
}

func buildOutput(res relic.Result) BuildOutput {
	b := BuildOutput{
		VesselID:      res.Vessel.ID,
		VesselName:    res.Vessel.Name,
		Relics:        make([]RelicOutput, 0, len(res.Relics)),
		RequiredFound: nonNil(res.RequiredFound),
		ExtraPositive: nonNil(res.ExtraPositive),
		ExtraNegative: nonNil(res.ExtraNegative),
	}
	for i, r := range res.Relics {
		b.Relics = append(b.Relics, RelicOutput{
			Slot:    res.SlotIndex[i] + 1,
			Kind:    r.Kind.String(),
			Color:   r.Color.String(),
			Effects: nonNil(r.Fields()),
			Text:    r.String(),
		})
	}
	return b
}

// ── list_nightfarers / list_vessels ─────────────────────────────────

// ListNightfarersInput represents the MCP tool input for listing nightfarers.
type ListNightfarersInput struct{}

// NightfarerOutput names one nightfarer.
type NightfarerOutput struct {
	Name    string `json:"name" jsonschema:"in-game name"`
	Alias   string `json:"alias" jsonschema:"English alias accepted wherever a nightfarer is named"`
	Vessels int    `json:"vessels" jsonschema:"number of vessels"`
}

// ListNightfarersResult represents the MCP tool output for listing nightfarers.
type ListNightfarersResult struct {
	Nightfarers []NightfarerOutput `json:"nightfarers" jsonschema:"every nightfarer in catalog order"`
}

// ListNightfarersTool defines the MCP tool schema for listing nightfarers.
func ListNightfarersTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_nightfarers",
		Description: "Lists the nightfarers a search can target",
	}
}

// ListNightfarersHandler lists the catalog's nightfarers.
func ListNightfarersHandler(cat *catalog.Catalog) mcp.ToolHandlerFor[ListNightfarersInput, ListNightfarersResult] {
	return func(context.Context, *mcp.CallToolRequest, ListNightfarersInput) (*mcp.CallToolResult, ListNightfarersResult, error) {
		nfs := cat.Nightfarers()
		out := ListNightfarersResult{Nightfarers: make([]NightfarerOutput, 0, len(nfs))}
		for _, nf := range nfs {
			out.Nightfarers = append(out.Nightfarers, NightfarerOutput{Name: nf.Name, Alias: nf.Alias, Vessels: len(nf.Vessels)})
		}
		return nil, out, nil
	}
}

// ListVesselsInput represents the MCP tool input for listing vessels.
type ListVesselsInput struct {
	Nightfarer string `json:"nightfarer" jsonschema:"nightfarer name or English alias"`
}

// VesselOutput is one vessel layout.
type VesselOutput struct {
	ID    string   `json:"id" jsonschema:"vessel identifier"`
	Name  string   `json:"name" jsonschema:"vessel display name"`
	Slots []string `json:"slots" jsonschema:"six slots as color/kind, e.g. 红/simple; 全 accepts any color"`
}

// ListVesselsResult represents the MCP tool output for listing vessels.
type ListVesselsResult struct {
	Nightfarer string         `json:"nightfarer" jsonschema:"resolved nightfarer name"`
	Vessels    []VesselOutput `json:"vessels" jsonschema:"vessels in search order"`
}

// ListVesselsTool defines the MCP tool schema for listing vessels.
func ListVesselsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_vessels",
		Description: "Lists a nightfarer's vessels and their slot colors",
	}
}

// ListVesselsHandler lists one nightfarer's vessels.
func ListVesselsHandler(cat *catalog.Catalog) mcp.ToolHandlerFor[ListVesselsInput, ListVesselsResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ListVesselsInput) (*mcp.CallToolResult, ListVesselsResult, error) {
		nf, err := cat.Nightfarer(input.Nightfarer)
		if err != nil {
			return nil, ListVesselsResult{}, err
		}
		out := ListVesselsResult{Nightfarer: nf.Name, Vessels: make([]VesselOutput, 0, len(nf.Vessels))}
		for _, v := range nf.Vessels {
			vo := VesselOutput{ID: v.ID, Name: v.Name, Slots: make([]string, 0, len(v.Slots))}
			for _, slot := range v.Slots {
				vo.Slots = append(vo.Slots, slot.Color.String()+"/"+slot.Kind.String())
			}
			out.Vessels = append(out.Vessels, vo)
		}
		return nil, out, nil
	}
}

// ── list_effects ────────────────────────────────────────────────────

// ListEffectsInput represents the MCP tool input for effect lookup.
type ListEffectsInput struct {
	Kind   string `json:"kind,omitempty" jsonschema:"simple, positive (default) or negative"`
	Search string `json:"search,omitempty" jsonschema:"optional text to match; prefix matches come first"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum names returned when searching (default 20)"`
}

// ListEffectsResult represents the MCP tool output for effect lookup.
type ListEffectsResult struct {
	Kind    string   `json:"kind" jsonschema:"effect list searched"`
	Effects []string `json:"effects" jsonschema:"catalog effect names"`
}

// ListEffectsTool defines the MCP tool schema for effect lookup.
func ListEffectsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_effects",
		Description: "Lists or searches the effect names the catalog knows, so queries can use exact spellings",
	}
}

// ListEffectsHandler lists or searches one effect vocabulary.
func ListEffectsHandler(cat *catalog.Catalog) mcp.ToolHandlerFor[ListEffectsInput, ListEffectsResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ListEffectsInput) (*mcp.CallToolResult, ListEffectsResult, error) {
		kind, ok := catalog.ParseEffectKind(input.Kind)
		if !ok {
			return nil, ListEffectsResult{}, fmt.Errorf("unknown effect kind %q", input.Kind)
		}
		vocab := cat.Vocabulary()
		var names []string
		if input.Search == "" {
			names = vocab.Names(kind)
		} else {
			limit := input.Limit
			if limit <= 0 {
				limit = defaultSuggestLimit
			}
			names = vocab.Suggest(input.Search, kind, limit)
		}
		return nil, ListEffectsResult{Kind: kindName(kind), Effects: nonNil(names)}, nil
	}
}

func kindName(k catalog.EffectKind) string {
	switch k {
	case catalog.SimpleEffects:
		return "simple"
	case catalog.NegativeEffects:
		return "negative"
	}
	return "positive"
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
