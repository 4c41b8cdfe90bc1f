package strategy

import (
	"paper-trader/internal/config"
	"paper-trader/internal/models"
)

// Evaluation is the full outcome of one strategy cycle.
type Evaluation struct {
	Signal        models.Signal
	Conditions    EntryConditions
	ConditionsMet int
	ExitReason    string
}

// Resolve combines the condition count, position state and configuration
// thresholds into a single signal. At most one signal is active per cycle:
// with a position open only EXIT can fire, without one only ENTER.
func Resolve(conditionsMet int, hasPosition, exitTriggered bool, minConditions int) models.Signal {
	if hasPosition {
		if exitTriggered {
			return models.SignalExit
		}
		return models.SignalNone
	}
	if conditionsMet >= minConditions {
		return models.SignalEnter
	}
	return models.SignalNone
}

// Evaluate runs the condition evaluator, exit trigger and signal resolver
// for one cycle. pos is ignored unless hasPosition is true.
func Evaluate(snap *models.IndicatorSnapshot, pos models.Position, hasPosition bool, cfg *config.Config) Evaluation {
	eval := Evaluation{}

	if hasPosition {
		triggered, reason := EvaluateExit(pos, snap, cfg)
		eval.ExitReason = reason
		eval.Signal = Resolve(0, true, triggered, cfg.Signals.MinConditions)
		return eval
	}

	eval.Conditions = EvaluateEntry(snap, cfg)
	eval.ConditionsMet = eval.Conditions.Met()
	eval.Signal = Resolve(eval.ConditionsMet, false, false, cfg.Signals.MinConditions)
	return eval
}
