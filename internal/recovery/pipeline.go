package recovery

import (
	"encoding/json"
	"io"
	"log"

	"fitplanner/internal/mining"
	"fitplanner/internal/plan"
)

// Logger is the telemetry sink for the engine. *log.Logger satisfies it;
// tests pass a discard logger so the recovery functions stay silent.
type Logger interface {
	Printf(format string, v ...any)
}

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	Logger Logger
	// PlaceholderMarkers that flag a recipe name as non-content when they
	// appear inside it. Nil keeps the defaults.
	PlaceholderMarkers []string
	// Categories override the shopping list keyword tables. Nil keeps the
	// defaults.
	Categories []mining.Category
}

// Engine is the resilient recovery pipeline: it turns unreliable free-form
// model output into a validated plan, escalating through repair phases,
// partial reconstruction, and finally text mining. An Engine is stateless
// across calls and safe for concurrent use.
type Engine struct {
	log        Logger
	classifier *plan.Classifier
	miner      *mining.Extractor
}

// NewEngine builds an engine from options.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	classifier := plan.NewClassifier()
	if opts.PlaceholderMarkers != nil {
		classifier.SubstringMarkers = opts.PlaceholderMarkers
	}
	return &Engine{
		log:        logger,
		classifier: classifier,
		miner:      mining.NewExtractor(mining.NewCategorizer(opts.Categories)),
	}
}

// repairPhase is one escalating transformation-plus-parse attempt. Each phase
// restarts from its own input text; phase results are never merged, so a
// mis-repair in one phase cannot compound into the next.
type repairPhase struct {
	name string
	// transform derives the parse candidate from the extracted candidate and
	// the full sanitized text.
	transform func(candidate, fullText string) string
}

var repairPhases = []repairPhase{
	{"phase 0 (raw parse)", func(candidate, _ string) string {
		return candidate
	}},
	{"phase 1 (light repair)", func(candidate, _ string) string {
		return applyLightRepairs(candidate)
	}},
	{"phase 2 (aggressive repair)", func(candidate, _ string) string {
		return applyLightRepairs(collapseWhitespace(candidate))
	}},
	{"phase 3 (structural extraction)", func(candidate, fullText string) string {
		if span := balancedBraceSpan(fullText); span != "" {
			return applyFullRepairs(span)
		}
		return applyFullRepairs(candidate)
	}},
	{"phase 4 (character stripping)", func(candidate, fullText string) string {
		source := balancedBraceSpan(fullText)
		if source == "" {
			source = candidate
		}
		return applyFullRepairs(collapseWhitespace(stripForeignChars(source)))
	}},
}

// RecoverJSON resolves the input's text payload and runs the escalating
// repair pipeline over it. It returns the parsed value of the first phase
// that succeeds, or the flat object from partial reconstruction, or an error
// naming the failure stage with the underlying parser error.
func (e *Engine) RecoverJSON(input any) (any, error) {
	text, err := textPayload(input)
	if err != nil {
		return nil, err
	}
	return e.recoverFromText(text)
}

func (e *Engine) recoverFromText(text string) (any, error) {
	sanitized := stripControlChars(text)
	candidate := extractCandidate(sanitized)

	var lastErr error
	for _, phase := range repairPhases {
		attempt := phase.transform(candidate, sanitized)
		var value any
		if err := json.Unmarshal([]byte(attempt), &value); err != nil {
			lastErr = err
			continue
		}
		e.log.Printf("recovery: parse succeeded in %s", phase.name)
		return value, nil
	}

	if partial, ok := reconstructPartial(sanitized); ok {
		e.log.Printf("recovery: all repair phases failed, partial reconstruction yielded %d keys", len(partial))
		return partial, nil
	}

	return nil, &UnrecoverableSyntaxError{
		Phase: repairPhases[len(repairPhases)-1].name,
		Err:   lastErr,
	}
}
