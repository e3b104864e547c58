package entity

// Outcome is derived from a board on demand and never stored on a game.
type Outcome string

const (
	OutcomeOngoing Outcome = ""
	OutcomeX       Outcome = Outcome(PlayerX)
	OutcomeO       Outcome = Outcome(PlayerO)
	OutcomeTie     Outcome = "-"
)

func (that Outcome) IsTerminal() bool {
	return that != OutcomeOngoing
}

// Winner returns the winning mark, or EmptyCell for a tie or an ongoing game.
func (that Outcome) Winner() Mark {
	switch that {
	case OutcomeX, OutcomeO:
		return Mark(that)
	default:
		return EmptyCell
	}
}

func (that Outcome) String() string {
	switch that {
	case OutcomeX, OutcomeO:
		return "Player " + string(that) + " Won"
	case OutcomeTie:
		return "Tie"
	default:
		return "Ongoing"
	}
}
