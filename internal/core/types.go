package core

// Size describes the dimensions of a simulation grid.
type Size struct {
	W int
	H int
}

// Sim defines the minimal contract a cellular automaton must implement.
type Sim interface {
	Name() string
	Size() Size
	Reset(seed int64)
	Step()
	Cells() []uint8
}

// Igniter is implemented by sims that accept externally requested ignitions.
// Ignite reports whether the request was queued.
type Igniter interface {
	Ignite(x, y int) bool
}
