package comment

import (
	"github.com/shopspring/decimal"
)

// Normalized is a comment with every optional field resolved.
type Normalized struct {
	Username     string
	PositionSize string
	HasPosition  bool
	Body         string
}

// Normalize resolves display name, position size and position flag of a
// single comment. It never fails.
func Normalize(r Raw) Normalized {
	n := Normalized{
		Username:     AnonymousName,
		PositionSize: ZeroPosition,
		Body:         r.Body,
	}

	if r.Profile == nil {
		return n
	}

	switch {
	case r.Profile.Pseudonym != "":
		n.Username = r.Profile.Pseudonym
	case r.Profile.Name != "":
		n.Username = r.Profile.Name
	}

	if len(r.Profile.Positions) > 0 && r.Profile.Positions[0].PositionSize != "" {
		n.PositionSize = string(r.Profile.Positions[0].PositionSize)
	}
	n.HasPosition = isPositive(n.PositionSize)

	return n
}

// NormalizeAll normalizes a batch. With holdersOnly set, comments whose
// profile lists no position at all are dropped first.
func NormalizeAll(raws []Raw, holdersOnly bool) []Normalized {
	out := make([]Normalized, 0, len(raws))
	for _, r := range raws {
		if holdersOnly && !r.HasPositions() {
			continue
		}
		out = append(out, Normalize(r))
	}
	return out
}

// CountHolders returns how many normalized comments carry a non-zero position.
func CountHolders(comments []Normalized) int {
	n := 0
	for _, c := range comments {
		if c.HasPosition {
			n++
		}
	}
	return n
}

func isPositive(size string) bool {
	d, err := decimal.NewFromString(size)
	if err != nil {
		return false
	}
	return d.IsPositive()
}
