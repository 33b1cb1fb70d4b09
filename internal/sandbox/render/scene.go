package render

import "sync"

// Renderable is anything the scene can hold.
type Renderable interface {
	Name() string
	// Dispose releases GPU-side resources. Safe to call more than once.
	Dispose()
}

// Scene is the part of a scenegraph the terrain layer uses.
type Scene interface {
	Add(r Renderable)
	Remove(r Renderable)
}

// Graph is a flat in-memory scenegraph.
type Graph struct {
	mu    sync.RWMutex
	nodes map[Renderable]struct{}
}

// NewGraph creates an empty Graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[Renderable]struct{})}
}

// Add inserts r. Adding twice is a no-op.
func (g *Graph) Add(r Renderable) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes[r] = struct{}{}
}

// Remove deletes r. Removing an absent node is a no-op.
func (g *Graph) Remove(r Renderable) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.nodes, r)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Contains reports whether r is in the scene.
func (g *Graph) Contains(r Renderable) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[r]
	return ok
}

// ForEach calls fn for every node under a read lock.
func (g *Graph) ForEach(fn func(r Renderable)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for r := range g.nodes {
		fn(r)
	}
}
