package hexmap

import "math"

// CombatOutcome is the verdict of a single battle.
type CombatOutcome struct {
	AttackerWins bool
	Attacker     Army // attacker survivors
	Defender     Army // defender survivors
}

// CombatOracle predicts the result of an attack. Implementations must be
// pure: the same armies always give the same verdict, and the arguments are
// never modified.
type CombatOracle interface {
	Resolve(attacker, defender Army) CombatOutcome
}

// OracleFunc adapts a plain function to CombatOracle.
type OracleFunc func(attacker, defender Army) CombatOutcome

func (f OracleFunc) Resolve(attacker, defender Army) CombatOutcome {
	return f(attacker, defender)
}

// StrengthOracle approximates battles by comparing army scores. The stronger
// side wins and keeps units in proportion to its margin. Ties go to the
// defender. It is used when the server does not expose its own resolver.
type StrengthOracle struct {
	rules *Rules
}

// NewStrengthOracle creates a StrengthOracle scoring units with the given rules.
func NewStrengthOracle(rules *Rules) *StrengthOracle {
	return &StrengthOracle{rules: rules}
}

func (o *StrengthOracle) Resolve(attacker, defender Army) CombatOutcome {
	pa := o.rules.ArmyScore(attacker)
	pd := o.rules.ArmyScore(defender)
	if pa > pd {
		return CombatOutcome{
			AttackerWins: true,
			Attacker:     survivors(attacker, (pa-pd)/pa),
			Defender:     Army{},
		}
	}
	out := CombatOutcome{Attacker: Army{}, Defender: defender.Clone()}
	if pd > 0 {
		out.Defender = survivors(defender, (pd-pa)/pd)
	}
	return out
}

func survivors(a Army, ratio float64) Army {
	out := make(Army, len(a))
	for u, n := range a {
		if left := int(math.Ceil(float64(n) * ratio)); left > 0 {
			out[u] = left
		}
	}
	return out
}
