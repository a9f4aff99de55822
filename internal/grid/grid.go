// Package grid owns the padded subdomain shape and the index arithmetic used
// everywhere else in the solver, so that the linearization of (i,j,k[,a])
// into a flat slice offset is defined exactly once.
package grid

import "fmt"

// Grid describes one rank's padded subdomain: an interior of MX x MY x MZ
// voxels surrounded by N layers of ghost cells on every face.
type Grid struct {
	N          int
	MX, MY, MZ int
	MXP        int
	MYP        int
	MZP        int
}

// New validates and builds a Grid. N must be at least 1 and the interior
// dimensions must be positive.
func New(n, mx, my, mz int) (*Grid, error) {
	if n < 1 {
		return nil, fmt.Errorf("grid: ghost layer thickness n=%d must be >= 1", n)
	}
	if mx <= 0 || my <= 0 || mz <= 0 {
		return nil, fmt.Errorf("grid: interior dims (%d,%d,%d) must be positive", mx, my, mz)
	}
	return &Grid{
		N: n, MX: mx, MY: my, MZ: mz,
		MXP: mx + 2*n,
		MYP: my + 2*n,
		MZP: mz + 2*n,
	}, nil
}

// Voxels returns the total number of padded voxels MXP*MYP*MZP.
func (g *Grid) Voxels() int {
	return g.MXP * g.MYP * g.MZP
}

// Idx3 returns the canonical flat index for a scalar field: i + j*MXP + k*MXP*MYP.
func (g *Grid) Idx3(i, j, k int) int {
	return i + j*g.MXP + k*g.MXP*g.MYP
}

// Idx4 returns the canonical flat index for a distribution field with Q
// components and innermost stride a: a + Q*idx3(i,j,k).
func (g *Grid) Idx4(i, j, k, a, q int) int {
	return a + q*g.Idx3(i, j, k)
}

// IsInterior reports whether (i,j,k) lies in the owned (non-ghost) region.
func (g *Grid) IsInterior(i, j, k int) bool {
	n := g.N
	return i >= n && i < n+g.MX &&
		j >= n && j < n+g.MY &&
		k >= n && k < n+g.MZ
}

// ForEachInterior calls fn once for every interior voxel, in k-major,
// j-middle, i-minor order (matching the Idx3 linearization so callers that
// walk in this order see sequential memory access).
func (g *Grid) ForEachInterior(fn func(i, j, k int)) {
	n := g.N
	for k := n; k < n+g.MZ; k++ {
		for j := n; j < n+g.MY; j++ {
			for i := n; i < n+g.MX; i++ {
				fn(i, j, k)
			}
		}
	}
}

// InteriorSlabX returns the i-index of the interior slab that is layer ell
// away from the named face ("+" = +X/EAST face, "-" = -X/WEST face).
func (g *Grid) InteriorSlabX(sign int, ell int) int {
	if sign > 0 {
		return g.N + g.MX - 1 - ell
	}
	return g.N + ell
}

// GhostSlabX returns the i-index of the ghost slab that receives data sent
// from the interior slab ell layers in from the named face.
func (g *Grid) GhostSlabX(sign int, ell int) int {
	if sign > 0 {
		return g.N - 1 - ell
	}
	return g.N + g.MX + ell
}

// InteriorSlabY is the Y-axis analog of InteriorSlabX.
func (g *Grid) InteriorSlabY(sign int, ell int) int {
	if sign > 0 {
		return g.N + g.MY - 1 - ell
	}
	return g.N + ell
}

// GhostSlabY is the Y-axis analog of GhostSlabX.
func (g *Grid) GhostSlabY(sign int, ell int) int {
	if sign > 0 {
		return g.N - 1 - ell
	}
	return g.N + g.MY + ell
}

// InteriorSlabZ is the Z-axis analog of InteriorSlabX.
func (g *Grid) InteriorSlabZ(sign int, ell int) int {
	if sign > 0 {
		return g.N + g.MZ - 1 - ell
	}
	return g.N + ell
}

// GhostSlabZ is the Z-axis analog of GhostSlabX.
func (g *Grid) GhostSlabZ(sign int, ell int) int {
	if sign > 0 {
		return g.N - 1 - ell
	}
	return g.N + g.MZ + ell
}
