package model

// NodeKind distinguishes the local node from its peers.
type NodeKind string

const (
	KindSelf NodeKind = "self"
	KindPeer NodeKind = "peer"
)

// Snapshot is one complete report of the network as seen from a single node.
type Snapshot struct {
	SelfID string `json:"self_id"`
	Peers  []Peer `json:"peers"`
}

// Peer is one reported participant with its transport addresses and the
// connections it holds.
type Peer struct {
	ID          string       `json:"id"`
	Addresses   []string     `json:"addresses,omitempty"`
	Connections []Connection `json:"connections,omitempty"`
}

// Connection is a single directed link report owned by one peer. Two peers
// reporting the same connection ID describe the same underlying link.
type Connection struct {
	Target         string     `json:"target"`
	ConnectionID   string     `json:"connection_id,omitempty"`
	BandwidthMbps  float64    `json:"bandwidth_mbps,omitempty"`
	LatencyMs      float64    `json:"latency_ms,omitempty"`
	LatencyHistory []float64  `json:"latency_history,omitempty"`
	LocalAddr      string     `json:"local_addr,omitempty"`
	RemoteAddr     string     `json:"remote_addr,omitempty"`
	Ports          []PortInfo `json:"ports,omitempty"`
}

// EffectiveLatency returns the instantaneous latency when present, otherwise
// the most recent entry of the rolling history, otherwise zero.
func (c Connection) EffectiveLatency() float64 {
	if c.LatencyMs > 0 {
		return c.LatencyMs
	}
	if n := len(c.LatencyHistory); n > 0 {
		return c.LatencyHistory[n-1]
	}
	return 0
}

// PortInfo describes one protocol/port pairing observed on a connection.
type PortInfo struct {
	Protocol string `json:"protocol"`
	SrcPort  string `json:"src_port,omitempty"`
	DstPort  string `json:"dst_port,omitempty"`
}

// Node is a participant in the built topology graph.
type Node struct {
	ID    string   `json:"id"`
	Kind  NodeKind `json:"kind"`
	Addrs []string `json:"addrs,omitempty"`
}

// Edge is a logical link between two nodes. Reciprocal reports sharing a
// connection ID collapse into one bidirectional edge; Source and Target keep
// the direction of the first report seen and never change afterwards.
type Edge struct {
	ID            string     `json:"id"`
	Source        string     `json:"source"`
	Target        string     `json:"target"`
	Bidirectional bool       `json:"bidirectional,omitempty"`
	BandwidthMbps float64    `json:"bandwidth_mbps,omitempty"`
	LatencyMs     float64    `json:"latency_ms,omitempty"`
	Ports         []PortInfo `json:"ports,omitempty"`
	Protocol      string     `json:"protocol,omitempty"`
	Offset        float64    `json:"offset,omitempty"`
}

// PairKey returns the unordered endpoint key shared by every edge between the
// same two nodes regardless of stored direction.
func (e Edge) PairKey() string {
	if e.Source <= e.Target {
		return e.Source + "|" + e.Target
	}
	return e.Target + "|" + e.Source
}

// RenderOffset returns the curvature offset in the edge's own source->target
// frame. Edges stored against the pair's lexicographic order mirror the
// canonical offset, so parallel lines drawn from either direction bow to
// distinct sides.
func (e Edge) RenderOffset() float64 {
	if e.Source > e.Target {
		return -e.Offset
	}
	return e.Offset
}

// Stats summarizes a built graph.
type Stats struct {
	Nodes              int            `json:"nodes"`
	Edges              int            `json:"edges"`
	Bidirectional      int            `json:"bidirectional"`
	TotalBandwidthMbps float64        `json:"total_bandwidth_mbps"`
	MeanLatencyMs      float64        `json:"mean_latency_ms"`
	ByProtocol         map[string]int `json:"by_protocol,omitempty"`
}

// Graph is one immutable topology build. Every snapshot produces a fresh
// graph; graphs from earlier cycles are never mutated.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
	Stats Stats  `json:"stats"`
}

// Frame is the per-tick view handed to renderers: positioned nodes plus edges
// with resolved endpoint coordinates.
type Frame struct {
	Tick  int64       `json:"tick"`
	Nodes []FrameNode `json:"nodes"`
	Edges []FrameEdge `json:"edges"`
}

// FrameNode is a node with its simulated position.
type FrameNode struct {
	ID     string   `json:"id"`
	Kind   NodeKind `json:"kind"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Radius float64  `json:"radius"`
	Pinned bool     `json:"pinned,omitempty"`
	Addrs  []string `json:"addrs,omitempty"`
}

// FrameEdge is an edge with resolved endpoint positions. Resolved is false
// for dangling edges whose target never appeared as a node; their target
// coordinates are zero and renderers may skip them.
type FrameEdge struct {
	ID            string     `json:"id"`
	Source        string     `json:"source"`
	Target        string     `json:"target"`
	SX            float64    `json:"sx"`
	SY            float64    `json:"sy"`
	TX            float64    `json:"tx"`
	TY            float64    `json:"ty"`
	Resolved      bool       `json:"resolved"`
	Bidirectional bool       `json:"bidirectional,omitempty"`
	BandwidthMbps float64    `json:"bandwidth_mbps,omitempty"`
	LatencyMs     float64    `json:"latency_ms,omitempty"`
	Offset        float64    `json:"offset,omitempty"`
	Protocol      string     `json:"protocol,omitempty"`
	Ports         []PortInfo `json:"ports,omitempty"`
}
