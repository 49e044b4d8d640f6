// Package layout provides the Organize algorithm: a deterministic, one-shot
// re-flow of every element in a workspace into type-grouped diagonal stacks
// packed into shelf rows.
package layout

import (
	"sort"

	"tela/canvas"
	"tela/geometry"
)

// Organizer holds the packing parameters. The zero value is not useful; use
// NewOrganizer.
type Organizer struct {
	StackOffset float64 // diagonal step between items in a stack
	RowWidth    float64 // target row width before wrapping
	Spacing     float64 // gap between stacks and between rows
}

// NewOrganizer returns an organizer with the default parameters.
func NewOrganizer() *Organizer {
	return &Organizer{
		StackOffset: 40,
		RowWidth:    1600,
		Spacing:     60,
	}
}

// typePriority orders the stacks: interactive and authoring types first,
// embeds last. Unknown types sort after all known ones, alphabetically among
// themselves.
var typePriority = map[canvas.Type]int{
	canvas.TypeNote:   0,
	canvas.TypeTask:   1,
	canvas.TypeBoard:  2,
	canvas.TypeTicker: 3,
	canvas.TypeMedia:  4,
	canvas.TypeGroup:  5,
	canvas.TypeEmbed:  6,
}

type bucket struct {
	t   canvas.Type
	els []canvas.Element
	w   float64 // stack footprint width
	h   float64 // stack footprint height
}

// Organize re-flows the whole collection: elements are bucketed by type,
// each bucket becomes a diagonal stack, stacks are packed left-to-right into
// rows bounded by RowWidth, and the packed layout is centered on the given
// viewport center. Every element receives a fresh ascending z-index in
// bucket/stack order. Running it twice on the same input produces the same
// arrangement.
func (o *Organizer) Organize(col *canvas.Collection, viewCenter geometry.Point) {
	els := col.All()
	if len(els) == 0 {
		return
	}

	// Bucket by type.
	byType := make(map[canvas.Type][]canvas.Element)
	for _, el := range els {
		byType[el.Type] = append(byType[el.Type], el)
	}

	buckets := make([]bucket, 0, len(byType))
	for t, members := range byType {
		// Stable intra-bucket order: the x+y diagonal sweep used by the
		// selection stack, with the id as tie-break.
		sort.Slice(members, func(i, j int) bool {
			si := members[i].Position.X + members[i].Position.Y
			sj := members[j].Position.X + members[j].Position.Y
			if si == sj {
				return members[i].ID < members[j].ID
			}
			return si < sj
		})

		// Diagonal stack footprint: max item box plus one step per extra
		// item in each axis.
		var maxW, maxH float64
		for _, el := range members {
			s := el.Size()
			maxW = geometry.Max(maxW, s.W)
			maxH = geometry.Max(maxH, s.H)
		}
		extra := float64(len(members)-1) * o.StackOffset
		buckets = append(buckets, bucket{t: t, els: members, w: maxW + extra, h: maxH + extra})
	}

	sort.Slice(buckets, func(i, j int) bool {
		pi, iknown := typePriority[buckets[i].t]
		pj, jknown := typePriority[buckets[j].t]
		switch {
		case iknown && jknown:
			return pi < pj
		case iknown:
			return true
		case jknown:
			return false
		default:
			return buckets[i].t < buckets[j].t
		}
	})

	// Shelf packing: place stacks left-to-right, wrapping to a new row when
	// the running width would exceed the target. Row height is the tallest
	// stack in the row. This is a simple heuristic, not optimal packing.
	type placement struct {
		b    bucket
		x, y float64
	}
	var placed []placement
	var x, y, rowH, maxRight float64
	for _, b := range buckets {
		if x > 0 && x+b.w > o.RowWidth {
			x = 0
			y += rowH + o.Spacing
			rowH = 0
		}
		placed = append(placed, placement{b: b, x: x, y: y})
		if x+b.w > maxRight {
			maxRight = x + b.w
		}
		if b.h > rowH {
			rowH = b.h
		}
		x += b.w + o.Spacing
	}
	totalH := y + rowH

	// Translate the packed layout so its bounding box is centered on the
	// viewport center, then commit positions and fresh z-indices.
	originX := viewCenter.X - maxRight/2
	originY := viewCenter.Y - totalH/2
	for _, p := range placed {
		for i, el := range p.b.els {
			step := float64(i) * o.StackOffset
			el.Position = geometry.Point{
				X: originX + p.x + step,
				Y: originY + p.y + step,
			}
			el.ZIndex = col.NextZ()
			col.Replace(el)
		}
	}
}
