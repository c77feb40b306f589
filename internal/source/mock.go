package source

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/google/uuid"

	"peermap/internal/model"
)

// Generator produces synthetic topology snapshots for demos and tests.
// The same seed always yields the same network and the same evolution:
// metrics drift on every Step and every fifth step one peer joins or leaves.
type Generator struct {
	rng   *rand.Rand
	peers []mockPeer
	links []mockLink
	step  int
}

type mockPeer struct {
	id     string
	addrs  []string
	active bool
}

type mockLink struct {
	a, b int    // peer indices; a reports always, b only for shared IDs
	id   string // connection id, "" for standalone one-way links
	bw   float64
	lat  float64
}

// NewGenerator builds a synthetic network of peerCount peers. Peer zero is
// the self node and never leaves.
func NewGenerator(peerCount int, seed int64) *Generator {
	if peerCount < 2 {
		peerCount = 2
	}
	g := &Generator{rng: rand.New(rand.NewSource(seed))}

	for i := 0; i < peerCount; i++ {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("peermap-%d-%d", seed, i))).String()[:8]
		g.peers = append(g.peers, mockPeer{
			id: id,
			addrs: []string{
				fmt.Sprintf("/ip4/10.42.%d.%d/tcp/%d", i/250, i%250+1, 4001+i),
				fmt.Sprintf("ws://10.42.%d.%d:%d", i/250, i%250+1, 9000+i),
			},
			active: true,
		})
	}

	// A hub link from self to every peer, with reciprocal reports.
	for i := 1; i < peerCount; i++ {
		g.links = append(g.links, mockLink{
			a:   0,
			b:   i,
			id:  fmt.Sprintf("conn-%d", i),
			bw:  1 + g.rng.Float64()*99,
			lat: 1 + g.rng.Float64()*49,
		})
	}

	// Some peer-to-peer mesh links.
	for i := 1; i < peerCount; i++ {
		if g.rng.Float64() > 0.4 {
			continue
		}
		j := 1 + g.rng.Intn(peerCount-1)
		if j == i {
			continue
		}
		g.links = append(g.links, mockLink{
			a:   i,
			b:   j,
			id:  fmt.Sprintf("mesh-%d-%d", i, j),
			bw:  1 + g.rng.Float64()*20,
			lat: 5 + g.rng.Float64()*80,
		})
	}

	// A parallel link and a standalone one-way report between self and peer
	// one, so offset assignment always has something to separate.
	g.links = append(g.links,
		mockLink{a: 0, b: 1, id: "conn-alt-1", bw: 1 + g.rng.Float64()*30, lat: 1 + g.rng.Float64()*20},
		mockLink{a: 1, b: 0, bw: g.rng.Float64() * 5, lat: 1 + g.rng.Float64()*10},
	)

	return g
}

// Snapshot returns the current synthetic topology. It is a pure read: calling
// it repeatedly without Step yields identical snapshots.
func (g *Generator) Snapshot() model.Snapshot {
	snap := model.Snapshot{SelfID: g.peers[0].id}

	conns := map[int][]model.Connection{}
	for li, l := range g.links {
		if g.peers[l.a].active {
			conns[l.a] = append(conns[l.a], g.connection(li, l.a, l.b))
		}
		if l.id != "" && g.peers[l.b].active {
			conns[l.b] = append(conns[l.b], g.connection(li, l.b, l.a))
		}
	}

	for i, p := range g.peers {
		if !p.active {
			continue
		}
		snap.Peers = append(snap.Peers, model.Peer{
			ID:          p.id,
			Addresses:   p.addrs,
			Connections: conns[i],
		})
	}
	return snap
}

// connection renders one side's report of a link. Shared-ID links split the
// bandwidth between both reports, so the merged edge sums back to the link
// total.
func (g *Generator) connection(li, from, to int) model.Connection {
	l := g.links[li]
	conn := model.Connection{
		Target:       g.peers[to].id,
		ConnectionID: l.id,
		LocalAddr:    g.peers[from].addrs[0],
		RemoteAddr:   g.peers[to].addrs[0],
	}

	if l.id == "" {
		conn.BandwidthMbps = l.bw
	} else {
		conn.BandwidthMbps = l.bw / 2
	}

	switch li % 3 {
	case 0:
		conn.LatencyMs = l.lat
	default:
		conn.LatencyHistory = []float64{l.lat * 1.2, l.lat * 0.9, l.lat}
	}

	if li%2 == 0 {
		conn.Ports = []model.PortInfo{{
			Protocol: "tcp",
			SrcPort:  strconv.Itoa(4001 + from),
			DstPort:  strconv.Itoa(4001 + to),
		}}
	}
	return conn
}

// Step advances the synthetic network: every link's metrics drift, and on
// every fifth step one non-self peer flips between joined and departed.
func (g *Generator) Step() {
	g.step++

	for i := range g.links {
		g.links[i].bw *= 0.8 + g.rng.Float64()*0.4
		g.links[i].lat *= 0.9 + g.rng.Float64()*0.2
		if g.links[i].lat < 0.1 {
			g.links[i].lat = 0.1
		}
	}

	if g.step%5 == 0 {
		i := 1 + g.rng.Intn(len(g.peers)-1)
		g.peers[i].active = !g.peers[i].active
	}
}
