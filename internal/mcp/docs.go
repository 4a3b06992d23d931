package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `cannonplot stores Minecraft cannon trajectory measurements and renders them as range-vs-trajectories charts.

Core concepts:
- Cannon: author, name, optional #RRGGBB color, per-range band counts (trajectoryData) and an optional offset histogram (offsetData).
- Bands mode: one point per range, the largest positive low/medium/high count at that range.
- Offsets mode: one point per distance, the sum of horizontal and vertical counts inside a window pair (preset or custom).

Typical workflow:
1) Browse: list_cannons or list_authors.
2) Inspect: get_cannon, then derive_series or filter_offsets for a single cannon.
3) Plot: render_chart with mode "bands" or "offsets" (see list_presets for windows).
4) Write: add_cannon / delete_cannon. Filenames are unique when set.

Docs:
- cannonplot://docs/data-format
- cannonplot://docs/chart-modes
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "cannonplot://docs/data-format",
		Name:        "docs_data_format",
		Title:       "Cannon data format",
		Description: "Fields of a cannon record, the import/export file and catalog entries.",
		Content: `# Cannon data format

A cannon record:

` + "```json" + `
{
  "id": "6f1c...",
  "author": "Steve",
  "name": "MK1",
  "params": "tnt=12",
  "color": "#3366cc",
  "filename": "steve-mk1.json",
  "trajectoryData": [{"range": 100, "low": 12, "medium": 25, "high": 18, "total": 55}],
  "offsetData": {"300": {"horizontal": {"-50": 10}, "vertical": {"20": 4}}},
  "createdAt": "2024-01-01T00:00:00Z"
}
` + "```" + `

- ` + "`total`" + ` is always recomputed as low+medium+high.
- Samples with a negative or fractional range are dropped.
- Offset histogram keys are decimal integers; non-integer keys are ignored.
- Catalog files may name the axes ` + "`水平偏移`" + ` (horizontal) and ` + "`垂直偏移`" + ` (vertical).

## Import / export

Export writes a JSON array of records. Import accepts that array or an object
with a ` + "`cannons`" + ` array. Records without an author or name are skipped, and an
import replaces the whole store.
`,
	},
	{
		URI:         "cannonplot://docs/chart-modes",
		Name:        "docs_chart_modes",
		Title:       "Chart modes",
		Description: "How bands and offsets series are derived and how axes are sized.",
		Content: `# Chart modes

## bands

For each range, every positive low/medium/high count is a candidate; the
largest candidate becomes the point. Points are sorted by range.

## offsets

For each distance, sum the horizontal counts whose offset is inside the
horizontal window plus the vertical counts inside the vertical window.
Distances with a zero total are omitted. Windows are inclusive.

Presets: comprehensive (default), flat, high, antiair, halfaxis. Passing both
` + "`horizontal`" + ` and ` + "`vertical`" + ` builds a custom preset.

## Axis bounds

- range max = max(1450, largest x + 200), step = max(200, round(max/10))
- count max = max(400, largest y + 100), step = max(50, round(max/10))

Minimums are zero. Series colors fall back to a 15-color palette indexed by
the cannon's position in the full list.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
