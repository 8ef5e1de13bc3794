// Package stopper implements the search-stop policy that bounds how deep
// and how wide the expander walks a target's path tree.
package stopper

import (
	"github.com/marketloop/pathfinder/internal/walk"
)

// Settings bounds a single target search: how deep to walk, whether to
// prune cyclic sub-walks, and how many transfers a path may contain
// (spec.md §4 C3).
type Settings struct {
	MaxLevel     uint8 `json:"max_level" yaml:"max_level"`
	IgnoreCycles bool  `json:"ignore_cycles" yaml:"ignore_cycles"`
	MaxTransfers int   `json:"max_transfers" yaml:"max_transfers"`
}

// DefaultSettings mirrors the reference depth-4, two-transfer budget: walks
// of up to 9 operations (2*MaxLevel+1), shallow enough to stay practical.
func DefaultSettings() Settings {
	return Settings{MaxLevel: 4, IgnoreCycles: true, MaxTransfers: 2}
}

// New builds Settings from explicit values.
func New(maxLevel uint8, ignoreCycles bool, maxTransfers int) Settings {
	return Settings{MaxLevel: maxLevel, IgnoreCycles: ignoreCycles, MaxTransfers: maxTransfers}
}

// IsStop reports whether the given node — already constructed at its own
// level, with its own operation linked to its parent — should be pruned:
// expanded no further from here. It does not report whether the node
// itself should be kept as a result leaf; that's the expander's
// target-currency check (spec.md §4 C3/C5).
//
// The level check fires once a node's level exceeds MaxLevel, not once it
// reaches it: a walk of length 2*MaxLevel+1 (level == MaxLevel) is the
// longest one allowed, matching the "no walk has length > 2*max_level+1"
// testable property and the worked two-exchange-triangle example, both of
// which require a level-MaxLevel node to be produced rather than pruned.
func (s Settings) IsStop(n *walk.Node) bool {
	if n.Level() > s.MaxLevel {
		return true
	}
	if s.IgnoreCycles && walk.HasCycle(n.Parent(), n.Operation()) {
		return true
	}
	return walk.TransferCount(n) > s.MaxTransfers
}
