package layout

import "math"

// Node is one simulated body. Pinned nodes snap to their pin position every
// step and keep zero velocity, but still repel and collide with others.
type Node struct {
	ID     string
	X, Y   float64
	VX, VY float64
	Radius float64
	Pinned bool
	PinX   float64
	PinY   float64
}

// Link joins two simulated nodes. Pointers are resolved once at install time;
// edges with a missing endpoint never reach the simulation.
type Link struct {
	Source *Node
	Target *Node
}

// Tuning holds the force coefficients and energy thresholds of a simulation.
type Tuning struct {
	SpringLength float64 // rest length of link springs
	SpringK      float64 // spring gain
	Repulsion    float64 // inverse-square charge strength
	Damping      float64 // velocity retained per step
	LabelMargin  float64 // extra clearance between node circles
	Padding      float64 // clamp margin inside the viewport
	AlphaMin     float64 // below this the layout counts as settled
	AlphaDecay   float64 // fraction of alpha lost per step
	AlphaNudge   float64 // energy injected for attribute-only updates
}

// Engine advances a force-directed layout for one installed graph at a time.
// It is not safe for concurrent use; a single owner ticks it.
type Engine struct {
	width  float64
	height float64
	tuning Tuning

	nodes []*Node
	links []Link
	byID  map[string]*Node
	alpha float64
}

// New creates an engine for the given viewport. The simulation starts hot so
// the first installed graph arranges itself immediately.
func New(width, height float64, tuning Tuning) *Engine {
	return &Engine{
		width:  width,
		height: height,
		tuning: tuning,
		byID:   map[string]*Node{},
		alpha:  1,
	}
}

// Install replaces the simulated graph. Callers hand over nodes they built
// (carrying positions and velocities) and links already resolved to those
// node pointers. Alpha is left untouched; use Reheat or Nudge afterwards.
func (e *Engine) Install(nodes []*Node, links []Link) {
	e.nodes = nodes
	e.links = links
	e.byID = make(map[string]*Node, len(nodes))
	for _, n := range nodes {
		e.byID[n.ID] = n
	}
}

// Viewport returns the current layout bounds.
func (e *Engine) Viewport() (float64, float64) {
	return e.width, e.height
}

// SetViewport updates the layout bounds. Positions are pulled back inside on
// the next step's clamp.
func (e *Engine) SetViewport(width, height float64) {
	e.width = width
	e.height = height
}

// Alpha returns the current simulation energy.
func (e *Engine) Alpha() float64 {
	return e.alpha
}

// Settled reports whether the simulation has cooled below its threshold.
func (e *Engine) Settled() bool {
	return e.alpha < e.tuning.AlphaMin
}

// Reheat restores full energy after a structural change.
func (e *Engine) Reheat() {
	e.alpha = 1
}

// Nudge injects a small amount of energy so attribute-only updates resettle
// without visible jumps. A hotter simulation is left alone.
func (e *Engine) Nudge() {
	if e.alpha < e.tuning.AlphaNudge {
		e.alpha = e.tuning.AlphaNudge
	}
}

// Pin fixes a node at the given position until Unpin. Unknown IDs are a no-op.
func (e *Engine) Pin(id string, x, y float64) bool {
	n, ok := e.byID[id]
	if !ok {
		return false
	}
	n.Pinned = true
	n.PinX, n.PinY = x, y
	return true
}

// Unpin releases a pinned node back to the simulation.
func (e *Engine) Unpin(id string) bool {
	n, ok := e.byID[id]
	if !ok {
		return false
	}
	n.Pinned = false
	return true
}

// Motion is one node's kinematic state, as carried between installs.
type Motion struct {
	X, Y, VX, VY float64
}

// Positions returns the live motion state of every installed node, keyed by
// id. Callers cache this across graph swaps.
func (e *Engine) Positions() map[string]Motion {
	out := make(map[string]Motion, len(e.nodes))
	for _, n := range e.nodes {
		out[n.ID] = Motion{X: n.X, Y: n.Y, VX: n.VX, VY: n.VY}
	}
	return out
}

// Release drops the installed graph so a torn-down engine holds no state.
func (e *Engine) Release() {
	e.nodes = nil
	e.links = nil
	e.byID = map[string]*Node{}
}

// Step advances the simulation by one tick and reports whether it moved.
// A settled or empty simulation is a no-op. Coincident nodes skip directional
// math for that pair, so positions stay finite for any input.
func (e *Engine) Step() bool {
	if e.Settled() || len(e.nodes) == 0 {
		return false
	}

	// Spring attraction along links, toward the rest length.
	for _, l := range e.links {
		dx := l.Target.X - l.Source.X
		dy := l.Target.Y - l.Source.Y
		dist := math.Hypot(dx, dy)
		if dist == 0 {
			continue
		}
		f := e.tuning.SpringK * (dist - e.tuning.SpringLength) * e.alpha
		fx := f * dx / dist
		fy := f * dy / dist
		if !l.Source.Pinned {
			l.Source.VX += fx
			l.Source.VY += fy
		}
		if !l.Target.Pinned {
			l.Target.VX -= fx
			l.Target.VY -= fy
		}
	}

	// Pairwise inverse-square repulsion.
	for i, a := range e.nodes {
		for _, b := range e.nodes[i+1:] {
			dx := b.X - a.X
			dy := b.Y - a.Y
			d2 := dx*dx + dy*dy
			if d2 == 0 {
				continue
			}
			dist := math.Sqrt(d2)
			f := e.tuning.Repulsion / d2 * e.alpha
			fx := f * dx / dist
			fy := f * dy / dist
			if !a.Pinned {
				a.VX -= fx
				a.VY -= fy
			}
			if !b.Pinned {
				b.VX += fx
				b.VY += fy
			}
		}
	}

	// Collision: separate pairs closer than their radii plus label room.
	for i, a := range e.nodes {
		for _, b := range e.nodes[i+1:] {
			min := a.Radius + b.Radius + e.tuning.LabelMargin
			dx := b.X - a.X
			dy := b.Y - a.Y
			dist := math.Hypot(dx, dy)
			if dist == 0 || dist >= min {
				continue
			}
			push := (min - dist) / 2
			ux := dx / dist
			uy := dy / dist
			switch {
			case a.Pinned && b.Pinned:
			case a.Pinned:
				b.X += ux * push * 2
				b.Y += uy * push * 2
			case b.Pinned:
				a.X -= ux * push * 2
				a.Y -= uy * push * 2
			default:
				a.X -= ux * push
				a.Y -= uy * push
				b.X += ux * push
				b.Y += uy * push
			}
		}
	}

	// Integrate, then clamp inside the viewport.
	for _, n := range e.nodes {
		if n.Pinned {
			n.X, n.Y = n.PinX, n.PinY
			n.VX, n.VY = 0, 0
			continue
		}
		n.VX *= e.tuning.Damping
		n.VY *= e.tuning.Damping
		n.X += n.VX
		n.Y += n.VY
		n.X = clamp(n.X, n.Radius+e.tuning.Padding, e.width-n.Radius-e.tuning.Padding)
		n.Y = clamp(n.Y, n.Radius+e.tuning.Padding, e.height-n.Radius-e.tuning.Padding)
	}

	e.alpha *= 1 - e.tuning.AlphaDecay
	return true
}

func clamp(v, lo, hi float64) float64 {
	if lo > hi {
		// Viewport smaller than the node: park in the middle.
		return (lo + hi) / 2
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
