// Package graph implements the directed cable graph drawn between canvas
// elements. Edges live denormalized on each source element's adjacency list;
// there is no separate edge table. Every function here is total: dangling
// references are filtered, never raised.
package graph

import "tela/canvas"

// Edge is one resolvable directed cable.
type Edge struct {
	From string
	To   string
}

// Connect appends a cable from src to dst and reports whether anything
// changed. Self-loops and duplicate ordered pairs are no-ops; the reverse
// direction is an independent edge and remains allowed.
func Connect(c *canvas.Collection, src, dst string) bool {
	if src == dst {
		return false
	}
	el, ok := c.Get(src)
	if !ok {
		return false
	}
	if _, ok := c.Get(dst); !ok {
		return false
	}
	if el.ConnectsTo(dst) {
		return false
	}
	el.Connections = append(el.Connections, dst)
	return c.Replace(el)
}

// Disconnect removes the (src, dst) cable and reports whether it existed.
func Disconnect(c *canvas.Collection, src, dst string) bool {
	el, ok := c.Get(src)
	if !ok {
		return false
	}
	for i, id := range el.Connections {
		if id == dst {
			el.Connections = append(el.Connections[:i], el.Connections[i+1:]...)
			c.Replace(el)
			return true
		}
	}
	return false
}

// Edges returns every resolvable cable in source-element iteration order,
// which is also the order cables are painted in. Cables whose target no
// longer exists are skipped but kept in storage until explicitly removed.
func Edges(c *canvas.Collection) []Edge {
	var out []Edge
	for _, el := range c.All() {
		for _, to := range el.Connections {
			if _, ok := c.Get(to); !ok {
				continue
			}
			out = append(out, Edge{From: el.ID, To: to})
		}
	}
	return out
}

// HasEdges reports whether any resolvable cable exists in the workspace.
// Dangling entries do not count: once a cable's endpoint is deleted the
// workspace behaves as if the cable were gone, even though the raw adjacency
// entry survives in storage.
func HasEdges(c *canvas.Collection) bool {
	for _, el := range c.All() {
		for _, to := range el.Connections {
			if _, ok := c.Get(to); ok {
				return true
			}
		}
	}
	return false
}

// ConnectedSet returns the ids reachable by following resolvable cables in
// either direction from every element that touches at least one cable. The
// traversal is visited-set guarded; cycles, including mutual a<->b pairs, are
// fine.
func ConnectedSet(c *canvas.Collection) map[string]bool {
	adj := make(map[string][]string)
	for _, e := range Edges(c) {
		adj[e.From] = append(adj[e.From], e.To)
		adj[e.To] = append(adj[e.To], e.From)
	}

	visited := make(map[string]bool, len(adj))
	var stack []string
	for id := range adj {
		if visited[id] {
			continue
		}
		stack = append(stack[:0], id)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[cur] {
				continue
			}
			visited[cur] = true
			for _, next := range adj[cur] {
				if !visited[next] {
					stack = append(stack, next)
				}
			}
		}
	}
	return visited
}

// Dimmed reports whether the element should render dimmed. Dimming only
// applies while at least one resolvable cable exists anywhere; with zero
// cables every element is connected by default.
func Dimmed(c *canvas.Collection, id string) bool {
	if !HasEdges(c) {
		return false
	}
	return !ConnectedSet(c)[id]
}

// FanOutLinks returns the (origin, child) pairs created by fan-out actions:
// elements whose ParentID references an existing non-group element. Group
// membership uses the same field but renders as a container, not a guide
// line.
func FanOutLinks(c *canvas.Collection) []Edge {
	var out []Edge
	for _, el := range c.All() {
		if el.ParentID == "" {
			continue
		}
		parent, ok := c.Get(el.ParentID)
		if !ok || parent.IsGroup() {
			continue
		}
		out = append(out, Edge{From: parent.ID, To: el.ID})
	}
	return out
}
