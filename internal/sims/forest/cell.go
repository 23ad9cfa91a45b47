package forest

// Cell is the state of a single grid position.
type Cell uint8

const (
	Empty Cell = iota
	Tree
	Burning

	// igniting marks a forced ignition inside a step snapshot. It never
	// appears in a published grid.
	igniting
)

// burning reports whether neighbors see the cell as on fire.
func (c Cell) burning() bool { return c >= Burning }

func (c Cell) String() string {
	switch c {
	case Empty:
		return "empty"
	case Tree:
		return "tree"
	case Burning:
		return "burning"
	default:
		return "invalid"
	}
}
