package world

import "fmt"

// Cell addresses one chunk of a named world.
type Cell struct {
	World string
	X     int32
	Z     int32
}

func (c Cell) String() string {
	return fmt.Sprintf("%s(%d,%d)", c.World, c.X, c.Z)
}

// Offset returns the cell dx, dz away in the same world.
func (c Cell) Offset(dx, dz int32) Cell {
	return Cell{World: c.World, X: c.X + dx, Z: c.Z + dz}
}

// Neighbors returns the four cardinal neighbours in N, E, S, W order.
// North is -Z.
func (c Cell) Neighbors() [4]Cell {
	return [4]Cell{
		c.Offset(0, -1),
		c.Offset(1, 0),
		c.Offset(0, 1),
		c.Offset(-1, 0),
	}
}

// Chebyshev returns max(|dx|, |dz|) between two cells of the same world.
func Chebyshev(ax, az, bx, bz int32) int32 {
	dx := ax - bx
	if dx < 0 {
		dx = -dx
	}
	dz := az - bz
	if dz < 0 {
		dz = -dz
	}
	if dz > dx {
		return dz
	}
	return dx
}

// Rect is an axis-aligned rectangle of cells given by two opposite corners.
// The corners may be in any order.
type Rect struct {
	X1, Z1 int32
	X2, Z2 int32
}

// Normalize returns the rectangle with X1<=X2 and Z1<=Z2.
func (r Rect) Normalize() Rect {
	if r.X1 > r.X2 {
		r.X1, r.X2 = r.X2, r.X1
	}
	if r.Z1 > r.Z2 {
		r.Z1, r.Z2 = r.Z2, r.Z1
	}
	return r
}

// Area returns the number of cells covered. Computed in int64 so a rectangle
// spanning the whole int32 axis does not overflow.
func (r Rect) Area() int64 {
	n := r.Normalize()
	return (int64(n.X2) - int64(n.X1) + 1) * (int64(n.Z2) - int64(n.Z1) + 1)
}

// Each calls fn for every cell of the rectangle in row-major order (Z then X).
// The counters are int64 so bounds at math.MaxInt32 terminate.
func (r Rect) Each(worldID string, fn func(c Cell)) {
	n := r.Normalize()
	for z := int64(n.Z1); z <= int64(n.Z2); z++ {
		for x := int64(n.X1); x <= int64(n.X2); x++ {
			fn(Cell{World: worldID, X: int32(x), Z: int32(z)})
		}
	}
}
