package secondorder

import (
	"sort"

	"github.com/sawpanic/techrun/internal/models"
)

// Edge is a primary → supplier dependency. An edge keys on either a primary
// company id or a primary sector; company edges override sector edges for
// the same supplier. Within one key a supplier appears once: a later edge
// replaces an earlier one.
type Edge struct {
	PrimaryID    string        `yaml:"primary_id,omitempty" json:"primary_id,omitempty"`
	Sector       models.Sector `yaml:"sector,omitempty" json:"sector,omitempty"`
	SupplierID   string        `yaml:"supplier_id" json:"supplier_id" validate:"required"`
	SupplierName string        `yaml:"supplier_name" json:"supplier_name"`
	Ticker       string        `yaml:"ticker,omitempty" json:"ticker,omitempty"`
	Category     string        `yaml:"category" json:"category"`
	Dependency   float64       `yaml:"dependency" json:"dependency" validate:"gte=0,lte=1"`
	Correlation  float64       `yaml:"correlation" json:"correlation" validate:"gte=-1,lte=1"`
	Thesis       string        `yaml:"thesis" json:"thesis"`
}

// GraphFile is the on-disk layout of additional edges
type GraphFile struct {
	Edges []Edge `yaml:"edges" validate:"dive"`
}

// Graph is an immutable-after-build dependency graph
type Graph struct {
	byPrimary map[string][]Edge
	bySector  map[models.Sector][]Edge
}

// NewGraph builds a graph from edges. Edges with neither a primary id nor a
// sector are ignored.
func NewGraph(edges ...Edge) *Graph {
	g := &Graph{
		byPrimary: make(map[string][]Edge),
		bySector:  make(map[models.Sector][]Edge),
	}
	for _, e := range edges {
		g.add(e)
	}
	return g
}

func (g *Graph) add(e Edge) {
	switch {
	case e.PrimaryID != "":
		g.byPrimary[e.PrimaryID] = upsert(g.byPrimary[e.PrimaryID], e)
	case e.Sector != "":
		g.bySector[e.Sector] = upsert(g.bySector[e.Sector], e)
	}
}

func upsert(edges []Edge, e Edge) []Edge {
	for i := range edges {
		if edges[i].SupplierID == e.SupplierID {
			edges[i] = e
			return edges
		}
	}
	return append(edges, e)
}

// Merge returns a new graph holding the edges of g followed by extra; extra
// edges replace edges of g with the same key and supplier
func (g *Graph) Merge(extra ...Edge) *Graph {
	return NewGraph(append(g.Edges(), extra...)...)
}

// EdgesFor returns the supplier edges of one primary: its own edges plus its
// sector's edges for suppliers it does not override
func (g *Graph) EdgesFor(primaryID string, sector models.Sector) []Edge {
	if g == nil {
		return nil
	}
	own := g.byPrimary[primaryID]
	seen := make(map[string]bool, len(own))
	out := make([]Edge, 0, len(own)+len(g.bySector[sector]))
	for _, e := range own {
		seen[e.SupplierID] = true
		out = append(out, e)
	}
	for _, e := range g.bySector[sector] {
		if !seen[e.SupplierID] {
			out = append(out, e)
		}
	}
	return out
}

// Edges lists every edge, company edges first, each group sorted
func (g *Graph) Edges() []Edge {
	if g == nil {
		return nil
	}
	var primaries []string
	for id := range g.byPrimary {
		primaries = append(primaries, id)
	}
	sort.Strings(primaries)

	var sectors []string
	for s := range g.bySector {
		sectors = append(sectors, string(s))
	}
	sort.Strings(sectors)

	var out []Edge
	for _, id := range primaries {
		out = append(out, g.byPrimary[id]...)
	}
	for _, s := range sectors {
		out = append(out, g.bySector[models.Sector(s)]...)
	}
	return out
}

// Len is the total edge count
func (g *Graph) Len() int {
	n := 0
	for _, es := range g.byPrimary {
		n += len(es)
	}
	for _, es := range g.bySector {
		n += len(es)
	}
	return n
}
