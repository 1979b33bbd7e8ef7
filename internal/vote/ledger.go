// AngelaMos | 2026
// ledger.go

package vote

import (
	"github.com/carterperez-dev/stackit/internal/core"
)

// Kind is the type of entity a vote targets.
type Kind string

const (
	KindQuestion Kind = "question"
	KindAnswer   Kind = "answer"
)

type Direction string

const (
	None Direction = ""
	Up   Direction = "up"
	Down Direction = "down"
)

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Up, Down:
		return d, nil
	default:
		return None, core.Invalid("vote_type must be \"up\" or \"down\"")
	}
}

func (d Direction) weight() int {
	switch d {
	case Up:
		return 1
	case Down:
		return -1
	default:
		return 0
	}
}

// Ptr returns nil for None so the direction encodes as JSON null.
func (d Direction) Ptr() *string {
	if d == None {
		return nil
	}
	s := string(d)
	return &s
}

type Action string

const (
	ActionAdded   Action = "added"
	ActionChanged Action = "changed"
	ActionRemoved Action = "removed"
)

// Resolve applies toggle semantics to a voter's existing direction. Voting
// the same way twice removes the vote; voting the other way flips it.
// delta is the change in net score.
func Resolve(existing, requested Direction) (next Direction, action Action, delta int) {
	switch existing {
	case None:
		return requested, ActionAdded, requested.weight()
	case requested:
		return None, ActionRemoved, -existing.weight()
	default:
		return requested, ActionChanged, requested.weight() - existing.weight()
	}
}
