package canvas

import (
	"sort"

	"github.com/google/uuid"

	"tela/geometry"
)

// Collection owns every element of one workspace. It is the single point of
// truth for element mutation: all writes are whole-element replacements keyed
// by id, last writer wins. The collection is not safe for concurrent use; the
// owning session serializes access.
type Collection struct {
	elements []Element
	index    map[string]int

	// zCounter only ever increases within a session. Bring-to-front assigns
	// the next value; nothing is ever decremented.
	zCounter int
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{index: make(map[string]int)}
}

// Load replaces the collection's contents with els and seeds the z-counter
// from the highest z-index present.
func (c *Collection) Load(els []Element) {
	c.elements = make([]Element, 0, len(els))
	c.index = make(map[string]int, len(els))
	c.zCounter = 0
	for _, el := range els {
		if el.ID == "" {
			continue
		}
		if _, dup := c.index[el.ID]; dup {
			continue
		}
		c.index[el.ID] = len(c.elements)
		c.elements = append(c.elements, el.Clone())
		if el.ZIndex > c.zCounter {
			c.zCounter = el.ZIndex
		}
	}
}

// Len returns the number of elements.
func (c *Collection) Len() int {
	return len(c.elements)
}

// NextZ returns a fresh z-index above everything assigned so far.
func (c *Collection) NextZ() int {
	c.zCounter++
	return c.zCounter
}

// MaxZ returns the highest z-index handed out so far.
func (c *Collection) MaxZ() int {
	return c.zCounter
}

// Create adds a new element of the given type at pos with a freshly generated
// id and the next z-index, and returns it.
func (c *Collection) Create(t Type, pos geometry.Point) Element {
	el := Element{
		ID:       uuid.NewString(),
		Type:     t,
		Position: pos,
		ZIndex:   c.NextZ(),
	}
	c.index[el.ID] = len(c.elements)
	c.elements = append(c.elements, el)
	return el
}

// Add inserts an existing element (snapshot import, tests). Elements with a
// duplicate or empty id are rejected.
func (c *Collection) Add(el Element) bool {
	if el.ID == "" {
		return false
	}
	if _, dup := c.index[el.ID]; dup {
		return false
	}
	c.index[el.ID] = len(c.elements)
	c.elements = append(c.elements, el.Clone())
	if el.ZIndex > c.zCounter {
		c.zCounter = el.ZIndex
	}
	return true
}

// Get returns the element with the given id.
func (c *Collection) Get(id string) (Element, bool) {
	i, ok := c.index[id]
	if !ok {
		return Element{}, false
	}
	return c.elements[i].Clone(), true
}

// Replace commits a whole-element update by id. Unknown ids are a no-op so
// that late async completions for deleted elements die silently.
func (c *Collection) Replace(el Element) bool {
	i, ok := c.index[el.ID]
	if !ok {
		return false
	}
	c.elements[i] = el.Clone()
	if el.ZIndex > c.zCounter {
		c.zCounter = el.ZIndex
	}
	return true
}

// Remove deletes the element with the given id. Cables pointing at it from
// other elements are left in place; they become dangling and are filtered at
// read time.
func (c *Collection) Remove(id string) bool {
	i, ok := c.index[id]
	if !ok {
		return false
	}
	c.elements = append(c.elements[:i], c.elements[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.elements); j++ {
		c.index[c.elements[j].ID] = j
	}
	return true
}

// BringToFront reassigns the element a fresh top z-index and returns the
// updated element.
func (c *Collection) BringToFront(id string) (Element, bool) {
	i, ok := c.index[id]
	if !ok {
		return Element{}, false
	}
	c.elements[i].ZIndex = c.NextZ()
	return c.elements[i].Clone(), true
}

// All returns the elements in insertion order.
func (c *Collection) All() []Element {
	out := make([]Element, len(c.elements))
	for i, el := range c.elements {
		out[i] = el.Clone()
	}
	return out
}

// ByZ returns the elements sorted by ascending z-index. Ties keep insertion
// order, which is the incidental tie-break the paint order relies on.
func (c *Collection) ByZ() []Element {
	out := c.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ZIndex < out[j].ZIndex
	})
	return out
}

// IDs returns every element id in insertion order.
func (c *Collection) IDs() []string {
	out := make([]string, len(c.elements))
	for i, el := range c.elements {
		out[i] = el.ID
	}
	return out
}

// HitTest returns the topmost element containing the world point, searching
// in descending z order.
func (c *Collection) HitTest(p geometry.Point) (Element, bool) {
	byZ := c.ByZ()
	for i := len(byZ) - 1; i >= 0; i-- {
		if byZ[i].Contains(p) {
			return byZ[i], true
		}
	}
	return Element{}, false
}

// Children returns the ids of elements whose ParentID references the given
// group, in insertion order.
func (c *Collection) Children(groupID string) []string {
	var out []string
	for _, el := range c.elements {
		if el.ParentID == groupID {
			out = append(out, el.ID)
		}
	}
	return out
}

// Bounds returns the union of all element boxes. ok is false for an empty
// collection.
func (c *Collection) Bounds() (geometry.Rect, bool) {
	if len(c.elements) == 0 {
		return geometry.Rect{}, false
	}
	r := c.elements[0].Bounds()
	for _, el := range c.elements[1:] {
		r = r.Union(el.Bounds())
	}
	return r, true
}
