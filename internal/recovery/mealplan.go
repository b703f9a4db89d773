package recovery

import (
	"fmt"
	"time"

	"fitplanner/internal/plan"
)

// Strategy names which recovery path produced a plan, for metrics.
type Strategy string

const (
	StrategyParsed     Strategy = "parsed"
	StrategyTextMining Strategy = "text-mining"
	StrategyNone       Strategy = "none"
)

// RecoverMealPlan turns any model response into a weekly plan or nil. It
// never returns an error: every failure falls through to the next strategy.
// A nil result means the caller should request a regeneration.
func (e *Engine) RecoverMealPlan(response any) *plan.WeeklyPlan {
	p, _ := e.RecoverMealPlanWithStrategy(response)
	return p
}

// RecoverMealPlanWithStrategy is RecoverMealPlan plus the strategy that
// produced the result, so callers can record how hard the recovery had to
// work.
func (e *Engine) RecoverMealPlanWithStrategy(response any) (*plan.WeeklyPlan, Strategy) {
	// Keep the raw text around for the mining fallback before anything else
	// consumes the response.
	rawText, textErr := textPayload(response)

	value := e.candidateValue(response)
	if value != nil && e.classifier.IsPlausible(value) {
		if p, err := plan.FromRecovered(value); err == nil {
			ensurePlanID(p)
			return p, StrategyParsed
		} else {
			e.log.Printf("recovery: plausible candidate failed conversion: %v", err)
		}
	} else if value != nil {
		e.log.Printf("recovery: parsed plan rejected as placeholder scaffolding")
	}

	if textErr != nil {
		e.log.Printf("recovery: %v", textErr)
		return nil, StrategyNone
	}

	mined, err := e.miner.ExtractWeeklyPlan(rawText)
	if err != nil {
		e.log.Printf("recovery: %v", err)
		return nil, StrategyNone
	}
	return mined, StrategyTextMining
}

// candidateValue produces the structured candidate: ready-made values pass
// through untouched, everything else goes through the repair pipeline.
func (e *Engine) candidateValue(response any) any {
	switch v := response.(type) {
	case *plan.WeeklyPlan, plan.WeeklyPlan:
		return v
	case map[string]any:
		// A decoded map is ready-made unless it is a transport envelope or a
		// text wrapper, which still need their payload recovered.
		if _, ok := mapText(v); !ok {
			return v
		}
	}
	value, err := e.RecoverJSON(response)
	if err != nil {
		e.log.Printf("recovery: %v", err)
		return nil
	}
	return value
}

func ensurePlanID(p *plan.WeeklyPlan) {
	if p.ID == "" {
		p.ID = fmt.Sprintf("plan-%d", time.Now().Unix())
	}
}
