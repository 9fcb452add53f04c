package bot

import "github.com/freeeve/hexraider/api/pkg/hexmap"

// Category is the kind of objective a candidate route leads to.
type Category string

const (
	CategoryArmy          Category = "army"
	CategoryDwelling      Category = "dwelling"
	CategoryMine          Category = "mine"
	CategoryFog           Category = "fog"
	CategoryResourceBunch Category = "resource_bunch"
)

// PathCandidate is a scored route. Bunch is set only for resource bunch
// candidates.
type PathCandidate struct {
	Category    Category
	Route       hexmap.SearchResult
	Rationality float64
	Bunch       *hexmap.ResourceBunch
}

// Better reports whether c should be preferred over other. Equal scores keep
// the earlier candidate.
func (c *PathCandidate) Better(other *PathCandidate) bool {
	if other == nil {
		return true
	}
	return c.Rationality > other.Rationality
}

// bestCandidate returns the highest rated candidate, the first one seen on
// ties, or nil for an empty list.
func bestCandidate(cands []*PathCandidate) *PathCandidate {
	var best *PathCandidate
	for _, c := range cands {
		if c != nil && c.Better(best) {
			best = c
		}
	}
	return best
}
