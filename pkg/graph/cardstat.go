package graph

import "fmt"

// CardStat summarises the cardinality of a path query result.
//
// NoOut counts distinct source vertices, NoPaths counts distinct
// (source, target) pairs and NoIn counts distinct target vertices. Estimators
// and evaluators both report this shape so that estimates can be compared to
// actual results.
type CardStat struct {
	NoOut   uint32 `json:"no_out"`
	NoPaths uint32 `json:"no_paths"`
	NoIn    uint32 `json:"no_in"`
}

// Reverse returns the statistics of the same edges traversed backwards:
// sources become targets and vice versa, the path count is unchanged.
func (c CardStat) Reverse() CardStat {
	return CardStat{NoOut: c.NoIn, NoPaths: c.NoPaths, NoIn: c.NoOut}
}

// IsZero reports whether all three counts are zero.
func (c CardStat) IsZero() bool { return c == CardStat{} }

// String formats the triple as "(noOut, noPaths, noIn)".
func (c CardStat) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.NoOut, c.NoPaths, c.NoIn)
}
