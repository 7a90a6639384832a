package level

import "errors"

// Errors returned by Load and its helpers. Wrapped with context via
// fmt.Errorf("%w: ...", ...) so callers can errors.Is against these.
var (
	// ErrMapNotFound means the requested map marker lump does not exist
	// in the archive.
	ErrMapNotFound = errors.New("level: map not found")

	// ErrMalformedMap means a mandatory lump (VERTEXES, LINEDEFS, ...) is
	// missing, or that pruning left the map with no lines. A lump whose
	// size isn't a whole multiple of its record size is not rejected; its
	// trailing bytes are ignored.
	ErrMalformedMap = errors.New("level: malformed map")

	// ErrDanglingReference means a line, side, or thing refers to a
	// vertex or sector index outside the bounds of its owning array.
	ErrDanglingReference = errors.New("level: dangling reference")
)
