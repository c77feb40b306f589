package viewer

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"time"

	"peermap/internal/layout"
	"peermap/internal/model"
	"peermap/internal/topology"
)

// Options configure a viewer instance.
type Options struct {
	Width       float64
	Height      float64
	Tuning      layout.Tuning
	SelfRadius  float64
	PeerRadius  float64
	EdgeSpacing float64
	Seed        int64 // 0 seeds from the clock
}

// ErrClosed reports use of a viewer after Close.
var ErrClosed = errors.New("viewer closed")

// Viewer owns one layout engine and reconciles incoming snapshots into it.
// Everything except Submit must be called from the single goroutine that
// ticks the viewer; Submit may be called from anywhere.
type Viewer struct {
	opts    Options
	engine  *layout.Engine
	pending chan model.Snapshot

	graph  *model.Graph
	nodes  []*layout.Node // parallel to graph.Nodes
	cache  map[string]layout.Motion
	ids    map[string]bool
	tick   int64
	rng    *rand.Rand
	closed bool
}

// New creates a viewer for the given viewport and tuning.
func New(opts Options) *Viewer {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Viewer{
		opts:    opts,
		engine:  layout.New(opts.Width, opts.Height, opts.Tuning),
		pending: make(chan model.Snapshot, 1),
		cache:   map[string]layout.Motion{},
		ids:     map[string]bool{},
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Submit queues a snapshot for the next tick. A snapshot already waiting is
// replaced: mid-tick arrivals never tear the state a tick is working on, and
// only the newest report matters.
func (v *Viewer) Submit(snap model.Snapshot) {
	for {
		select {
		case v.pending <- snap:
			return
		default:
			select {
			case <-v.pending:
			default:
			}
		}
	}
}

// Tick applies any pending snapshot, then advances the simulation one step.
// It reports whether any node moved.
func (v *Viewer) Tick() bool {
	if v.closed {
		return false
	}
	select {
	case snap := <-v.pending:
		v.apply(snap)
	default:
	}
	v.tick++
	return v.engine.Step()
}

// apply swaps the current graph for one built from snap. Surviving nodes
// resume their exact position and velocity; the simulation reheats only when
// the node-id set changed, otherwise it gets a gentle nudge.
func (v *Viewer) apply(snap model.Snapshot) {
	g := topology.Build(snap)
	topology.AssignOffsets(g.Edges, v.opts.EdgeSpacing)

	// Snapshot motion state before the node list is replaced.
	prev := make(map[string]*layout.Node, len(v.nodes))
	for _, n := range v.nodes {
		prev[n.ID] = n
	}
	for id, m := range v.engine.Positions() {
		v.cache[id] = m
	}

	w, h := v.engine.Viewport()
	changed := len(v.ids) != len(g.Nodes)
	next := make(map[string]bool, len(g.Nodes))
	nodes := make([]*layout.Node, 0, len(g.Nodes))
	for _, gn := range g.Nodes {
		next[gn.ID] = true
		if !v.ids[gn.ID] {
			changed = true
		}

		ln := &layout.Node{ID: gn.ID, Radius: v.opts.PeerRadius}
		if gn.Kind == model.KindSelf {
			ln.Radius = v.opts.SelfRadius
		}
		if m, ok := v.cache[gn.ID]; ok {
			ln.X, ln.Y, ln.VX, ln.VY = m.X, m.Y, m.VX, m.VY
		} else {
			ln.X = w/2 + (v.rng.Float64()-0.5)*w/4
			ln.Y = h/2 + (v.rng.Float64()-0.5)*h/4
		}

		// Pins survive snapshot swaps: a dragged node stays where the user
		// holds it. The self node anchors to the center when first seen.
		if p, ok := prev[gn.ID]; ok {
			ln.Pinned = p.Pinned
			ln.PinX, ln.PinY = p.PinX, p.PinY
		} else if gn.Kind == model.KindSelf {
			ln.Pinned = true
			ln.PinX, ln.PinY = w/2, h/2
			ln.X, ln.Y = w/2, h/2
		}
		nodes = append(nodes, ln)
	}

	byID := make(map[string]*layout.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	var links []layout.Link
	for _, e := range g.Edges {
		s, t := byID[e.Source], byID[e.Target]
		if s == nil || t == nil {
			// Dangling edges are drawn but not simulated.
			continue
		}
		links = append(links, layout.Link{Source: s, Target: t})
	}

	v.engine.Install(nodes, links)
	v.graph = g
	v.nodes = nodes
	v.ids = next

	for id := range v.cache {
		if !next[id] {
			delete(v.cache, id)
		}
	}

	if changed {
		v.engine.Reheat()
	} else {
		v.engine.Nudge()
	}
	log.Printf("snapshot applied nodes=%d edges=%d reheat=%v", len(g.Nodes), len(g.Edges), changed)
}

// Frame renders the current state into an immutable per-tick view.
func (v *Viewer) Frame() model.Frame {
	f := model.Frame{Tick: v.tick}
	if v.graph == nil {
		return f
	}

	pos := make(map[string][2]float64, len(v.nodes))
	f.Nodes = make([]model.FrameNode, 0, len(v.nodes))
	for i, n := range v.nodes {
		gn := v.graph.Nodes[i]
		f.Nodes = append(f.Nodes, model.FrameNode{
			ID:     n.ID,
			Kind:   gn.Kind,
			X:      n.X,
			Y:      n.Y,
			Radius: n.Radius,
			Pinned: n.Pinned,
			Addrs:  gn.Addrs,
		})
		pos[n.ID] = [2]float64{n.X, n.Y}
	}

	f.Edges = make([]model.FrameEdge, 0, len(v.graph.Edges))
	for _, e := range v.graph.Edges {
		fe := model.FrameEdge{
			ID:            e.ID,
			Source:        e.Source,
			Target:        e.Target,
			Bidirectional: e.Bidirectional,
			BandwidthMbps: e.BandwidthMbps,
			LatencyMs:     e.LatencyMs,
			Offset:        e.RenderOffset(),
			Protocol:      e.Protocol,
			Ports:         e.Ports,
		}
		s, sok := pos[e.Source]
		t, tok := pos[e.Target]
		if sok {
			fe.SX, fe.SY = s[0], s[1]
		}
		if sok && tok {
			fe.TX, fe.TY = t[0], t[1]
			fe.Resolved = true
		}
		f.Edges = append(f.Edges, fe)
	}
	return f
}

// Graph returns the current topology build, or nil before the first snapshot.
func (v *Viewer) Graph() *model.Graph {
	return v.graph
}

// Alpha exposes the simulation energy, mainly for status output.
func (v *Viewer) Alpha() float64 {
	return v.engine.Alpha()
}

// DragStart pins a node at the pointer and reheats the simulation.
func (v *Viewer) DragStart(id string, x, y float64) {
	if v.engine.Pin(id, x, y) {
		v.engine.Reheat()
	}
}

// DragMove re-pins a dragged node at the new pointer position.
func (v *Viewer) DragMove(id string, x, y float64) {
	v.engine.Pin(id, x, y)
}

// DragEnd releases a dragged node; alpha decays naturally afterwards.
func (v *Viewer) DragEnd(id string) {
	v.engine.Unpin(id)
}

// Resize updates the viewport, re-anchors a pinned self node to the new
// center and nudges the simulation so positions resettle.
func (v *Viewer) Resize(w, h float64) {
	v.engine.SetViewport(w, h)
	for i, n := range v.nodes {
		if v.graph.Nodes[i].Kind == model.KindSelf && n.Pinned {
			n.PinX, n.PinY = w/2, h/2
		}
	}
	v.engine.Nudge()
}

// Run ticks the viewer at the given frame rate until ctx is done, invoking
// onFrame after every tick. onFrame may be nil. Running a closed viewer
// returns ErrClosed.
func (v *Viewer) Run(ctx context.Context, fps int, onFrame func(model.Frame)) error {
	if v.closed {
		return ErrClosed
	}
	if fps <= 0 {
		fps = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			v.Tick()
			if onFrame != nil {
				onFrame(v.Frame())
			}
		}
	}
}

// Close releases the simulated graph and stops future ticks from advancing.
func (v *Viewer) Close() {
	v.closed = true
	v.engine.Release()
	v.graph = nil
	v.nodes = nil
	v.cache = map[string]layout.Motion{}
	v.ids = map[string]bool{}
}
