// Package lattice defines the D3Q19 velocity set shared by every stage of
// the solver: streaming reads it to pick advection directions, collision
// reads it to build the equilibrium distribution, and the halo exchanger
// reads Q to know how many scalar planes make up the distribution field.
package lattice

// Q is the number of discrete velocities in the D3Q19 model.
const Q = 19

// Cs2 is the lattice speed of sound squared, c_s^2 = 1/3, fixed by the
// D3Q19 weights below.
const Cs2 = 1.0 / 3.0

// Velocities holds the 19 discrete velocity vectors c_a, each component in
// {-1, 0, 1}. Index 0 is the rest velocity.
var Velocities = [Q][3]int{
	{0, 0, 0},

	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},

	{1, 1, 0}, {-1, -1, 0},
	{1, -1, 0}, {-1, 1, 0},
	{1, 0, 1}, {-1, 0, -1},
	{1, 0, -1}, {-1, 0, 1},
	{0, 1, 1}, {0, -1, -1},
	{0, 1, -1}, {0, -1, 1},
}

// Weights holds w_a for each direction: 1/3 for rest, 1/18 for the six
// axis velocities, 1/36 for the twelve edge velocities. They sum to 1.
var Weights = [Q]float64{
	1.0 / 3.0,

	1.0 / 18.0, 1.0 / 18.0,
	1.0 / 18.0, 1.0 / 18.0,
	1.0 / 18.0, 1.0 / 18.0,

	1.0 / 36.0, 1.0 / 36.0,
	1.0 / 36.0, 1.0 / 36.0,
	1.0 / 36.0, 1.0 / 36.0,
	1.0 / 36.0, 1.0 / 36.0,
	1.0 / 36.0, 1.0 / 36.0,
	1.0 / 36.0, 1.0 / 36.0,
}

// Opposite maps each direction to its antipode: Opposite[a] is the index b
// such that Velocities[b] == -Velocities[a]. The map is involutive.
var Opposite = [Q]int{
	0,
	2, 1,
	4, 3,
	6, 5,
	8, 7,
	10, 9,
	12, 11,
	14, 13,
	16, 15,
	18, 17,
}

// Dot returns c_a . (ux, uy, uz) for direction a.
func Dot(a int, ux, uy, uz float64) float64 {
	c := Velocities[a]
	return float64(c[0])*ux + float64(c[1])*uy + float64(c[2])*uz
}
