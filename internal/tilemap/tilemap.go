// Package tilemap implements the immutable tile grid the physics kernel
// sweeps entities against. Tile pixel bounds are not precomputed or
// stored: the map holds only tile types, and every query converts pixel
// coordinates to tile coordinates by integer division by Size.
package tilemap

import "forgeengine/internal/fixed"

// Tile is a single cell's type. Only Empty and Block are required by the
// core; the address space is open for hosts that want richer tile
// semantics (e.g. one-way platforms) without changing this package.
type Tile uint8

const (
	Empty Tile = iota
	Block
)

// Size is the tile edge length in pixels.
const Size = 16

// Map is an immutable 2D grid of tiles, rows outer, columns inner, matching
// the configuration blob's row-major layout. Tile edges fall on multiples
// of Size, so pixel bounds are always derived by integer division by Size
// rather than a stored-and-looked-up table.
type Map struct {
	cols, rows int
	tiles      []Tile
}

// New builds a Map from a row-major grid of tile types. rows[r] must all
// have equal length; New panics if the grid is not rectangular, since a
// ragged tilemap can only originate from a configuration bug that should
// have been caught by validation before reaching this package.
func New(rows [][]Tile) *Map {
	if len(rows) == 0 {
		return &Map{}
	}
	cols := len(rows[0])
	for _, row := range rows {
		if len(row) != cols {
			panic("tilemap: ragged grid")
		}
	}

	m := &Map{
		cols:  cols,
		rows:  len(rows),
		tiles: make([]Tile, cols*len(rows)),
	}

	for ty, row := range rows {
		for tx, t := range row {
			m.tiles[ty*cols+tx] = t
		}
	}
	return m
}

// Cols and Rows report the tilemap's dimensions in tiles.
func (m *Map) Cols() int { return m.cols }
func (m *Map) Rows() int { return m.rows }

// WidthPixels and HeightPixels report the tilemap's dimensions in pixels.
func (m *Map) WidthPixels() fixed.Fixed  { return fixed.FromInt(m.cols * Size) }
func (m *Map) HeightPixels() fixed.Fixed { return fixed.FromInt(m.rows * Size) }

// TileAt returns the tile type at the given tile coordinates. Coordinates
// outside the grid are treated as Block, so a sweep never escapes the map
// through an out-of-bounds lookup.
func (m *Map) TileAt(tx, ty int) Tile {
	if tx < 0 || ty < 0 || tx >= m.cols || ty >= m.rows {
		return Block
	}
	return m.tiles[ty*m.cols+tx]
}

// AABB is an axis-aligned bounding box in pixel space, [Min, Max).
type AABB struct {
	MinX, MinY, MaxX, MaxY fixed.Fixed
}

// tileRange returns the inclusive tile-coordinate range an AABB spans.
func tileRange(lo, hi fixed.Fixed) (int, int) {
	loTile := lo.Int() / Size
	if lo.Int() < 0 && lo.Int()%Size != 0 {
		loTile--
	}
	hiTile := hi.Int() / Size
	if hi.Int() < 0 && hi.Int()%Size != 0 {
		hiTile--
	}
	return loTile, hiTile
}

// OverlapsSolid reports whether the AABB intersects any Block tile.
func (m *Map) OverlapsSolid(box AABB) bool {
	minTX, maxTX := tileRange(box.MinX, box.MaxX.Sub(fixed.FromRaw(1)))
	minTY, maxTY := tileRange(box.MinY, box.MaxY.Sub(fixed.FromRaw(1)))

	for ty := minTY; ty <= maxTY; ty++ {
		for tx := minTX; tx <= maxTX; tx++ {
			if m.TileAt(tx, ty) == Block {
				return true
			}
		}
	}
	return false
}

// Axis identifies a movement axis for sweep results.
type Axis int

const (
	AxisNone Axis = iota
	AxisX
	AxisY
)

// SweepResult reports how far along a requested delta an AABB may move
// before first contact with a solid tile.
type SweepResult struct {
	// Fraction is in [0, 1]: the portion of the requested delta that is
	// safe to apply before contact.
	Fraction fixed.Fixed
	Contact  bool
	Axis     Axis
}

// sweepAxisSteps bounds the binary search used by Sweep. 16 halvings on a
// 1/32-unit fixed scale is more precision than any tile-scale movement in
// one frame can need, and keeps the search O(1) and branch-predictable.
const sweepAxisSteps = 16

// Sweep finds the maximum fraction of delta (applied to box's position)
// movable before the box first overlaps a solid tile, moving on one axis
// at a time as the physics kernel requires (X then Y, each independent).
// A zero delta on an axis trivially returns Fraction=1, Contact=false.
func (m *Map) Sweep(box AABB, dx, dy fixed.Fixed) SweepResult {
	if dx != 0 && dy != 0 {
		panic("tilemap: Sweep must be called one axis at a time")
	}
	if dx == 0 && dy == 0 {
		return SweepResult{Fraction: fixed.One, Contact: false, Axis: AxisNone}
	}

	axis := AxisX
	delta := dx
	if dy != 0 {
		axis = AxisY
		delta = dy
	}

	if !m.boxAt(box, axis, delta).overlaps(m) {
		return SweepResult{Fraction: fixed.One, Contact: false, Axis: axis}
	}

	// Binary search the largest safe fraction in [0, 1]. moved(0) is
	// assumed safe (the entity starts in a valid position); moved(1)
	// is known unsafe from the check above.
	lo, hi := fixed.Zero, fixed.One
	for i := 0; i < sweepAxisSteps; i++ {
		mid, err := lo.Add(hi).Div(fixed.FromInt(2))
		if err != nil {
			break
		}
		if m.boxAt(box, axis, delta.Mul(mid)).overlaps(m) {
			hi = mid
		} else {
			lo = mid
		}
	}

	return SweepResult{Fraction: lo, Contact: true, Axis: axis}
}

type candidateBox struct {
	box AABB
}

func (m *Map) boxAt(box AABB, axis Axis, delta fixed.Fixed) candidateBox {
	moved := box
	switch axis {
	case AxisX:
		moved.MinX = moved.MinX.Add(delta)
		moved.MaxX = moved.MaxX.Add(delta)
	case AxisY:
		moved.MinY = moved.MinY.Add(delta)
		moved.MaxY = moved.MaxY.Add(delta)
	}
	return candidateBox{box: moved}
}

func (c candidateBox) overlaps(m *Map) bool {
	return m.OverlapsSolid(c.box)
}
