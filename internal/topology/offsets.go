package topology

import (
	"sort"

	"peermap/internal/model"
)

// AssignOffsets distributes curvature offsets among edges sharing an endpoint
// pair so parallel edges render apart instead of stacking. Edges are ranked
// by ID within each pair and edge i of n receives (i - (n-1)/2) * spacing:
// the offsets are symmetric about zero, all distinct, and a solitary edge
// stays at zero. The stored value is relative to the pair's lexicographic
// orientation; Edge.RenderOffset mirrors it for edges stored the other way.
func AssignOffsets(edges []model.Edge, spacing float64) {
	groups := map[string][]int{}
	for i, e := range edges {
		key := e.PairKey()
		groups[key] = append(groups[key], i)
	}

	for _, idx := range groups {
		sort.Slice(idx, func(a, b int) bool {
			return edges[idx[a]].ID < edges[idx[b]].ID
		})
		n := float64(len(idx))
		for rank, i := range idx {
			edges[i].Offset = (float64(rank) - (n-1)/2) * spacing
		}
	}
}
