package topology

import (
	"fmt"

	"peermap/internal/addrutil"
	"peermap/internal/model"
)

// report is one peer's claim about a single connection it holds.
type report struct {
	source string
	conn   model.Connection
}

// Build canonicalizes a snapshot into a topology graph. Connections sharing a
// connection ID collapse into one logical edge (both directions reported by
// the two endpoints of the same link); the rest become standalone directed
// edges. Build never fails: malformed entries degrade field by field.
func Build(snap model.Snapshot) *model.Graph {
	g := &model.Graph{}

	known := map[string]bool{}
	for _, peer := range snap.Peers {
		if peer.ID == "" || known[peer.ID] {
			continue
		}
		known[peer.ID] = true
		kind := model.KindPeer
		if peer.ID == snap.SelfID {
			kind = model.KindSelf
		}
		g.Nodes = append(g.Nodes, model.Node{
			ID:    peer.ID,
			Kind:  kind,
			Addrs: addrutil.Hosts(peer.Addresses),
		})
	}

	grouped := map[string][]report{}
	var order []string
	var standalone []report
	for _, peer := range snap.Peers {
		for _, conn := range peer.Connections {
			if conn.Target == "" || conn.Target == peer.ID {
				// Self-loops and empty targets are never drawn.
				continue
			}
			if conn.ConnectionID == "" {
				standalone = append(standalone, report{peer.ID, conn})
				continue
			}
			if _, ok := grouped[conn.ConnectionID]; !ok {
				order = append(order, conn.ConnectionID)
			}
			grouped[conn.ConnectionID] = append(grouped[conn.ConnectionID], report{peer.ID, conn})
		}
	}

	for _, id := range order {
		g.Edges = append(g.Edges, mergeEdge(id, grouped[id]))
	}

	// Standalone edges get IDs synthesized from the endpoint pair plus a
	// per-pair ordinal, stable within one snapshot.
	ordinals := map[string]int{}
	for _, r := range standalone {
		key := r.source + "|" + r.conn.Target
		n := ordinals[key]
		ordinals[key]++
		edge := mergeEdge(fmt.Sprintf("%s-%s-%d", r.source, r.conn.Target, n), []report{r})
		g.Edges = append(g.Edges, edge)
	}

	g.Stats = buildStats(g)
	return g
}

// mergeEdge folds one or more reports of the same underlying link into a
// logical edge. The first report fixes the canonical direction; bandwidth is
// summed and latency averaged across members.
func mergeEdge(id string, members []report) model.Edge {
	first := members[0]
	edge := model.Edge{
		ID:            id,
		Source:        first.source,
		Target:        first.conn.Target,
		Bidirectional: len(members) > 1,
	}

	var latency float64
	for _, m := range members {
		edge.BandwidthMbps += m.conn.BandwidthMbps
		latency += m.conn.EffectiveLatency()
	}
	edge.LatencyMs = latency / float64(len(members))

	edge.Ports = portDescriptors(members)
	if len(edge.Ports) > 0 {
		edge.Protocol = addrutil.Canonical(edge.Ports[0].Protocol)
	} else {
		edge.Protocol = "other"
	}
	return edge
}

// portDescriptors returns the union of distinct explicit port entries across
// members, or a single descriptor derived from the first member's addresses
// when nobody carries explicit entries.
func portDescriptors(members []report) []model.PortInfo {
	var out []model.PortInfo
	seen := map[model.PortInfo]bool{}
	for _, m := range members {
		for _, p := range m.conn.Ports {
			if seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	if out != nil {
		return out
	}
	return derivedPorts(members[0].conn)
}

func derivedPorts(conn model.Connection) []model.PortInfo {
	remote := addrutil.Parse(conn.RemoteAddr)
	local := addrutil.Parse(conn.LocalAddr)
	info := model.PortInfo{
		Protocol: addrutil.Canonical(remote.Protocol),
		SrcPort:  local.Port,
		DstPort:  remote.Port,
	}
	if info.SrcPort == "" && info.DstPort == "" && info.Protocol == "other" {
		return nil
	}
	return []model.PortInfo{info}
}

func buildStats(g *model.Graph) model.Stats {
	s := model.Stats{
		Nodes:      len(g.Nodes),
		Edges:      len(g.Edges),
		ByProtocol: map[string]int{},
	}
	var latency float64
	for _, e := range g.Edges {
		if e.Bidirectional {
			s.Bidirectional++
		}
		s.TotalBandwidthMbps += e.BandwidthMbps
		latency += e.LatencyMs
		s.ByProtocol[e.Protocol]++
	}
	if len(g.Edges) > 0 {
		s.MeanLatencyMs = latency / float64(len(g.Edges))
	}
	return s
}
