package recovery

import (
	"fmt"

	"fitplanner/internal/mining"
)

// ExtractionEmptyError is the text-mining "no recipes found" failure,
// aliased here so the full error taxonomy is matchable from one package.
type ExtractionEmptyError = mining.ExtractionEmptyError

// InputShapeError reports that no text payload could be extracted from the
// value handed to the engine.
type InputShapeError struct {
	Reason string
}

func (e *InputShapeError) Error() string {
	return fmt.Sprintf("no text payload in response: %s", e.Reason)
}

// UnrecoverableSyntaxError reports that every repair phase and the partial
// reconstruction all failed. Phase names the last phase attempted and Err
// carries the underlying parser error for logging.
type UnrecoverableSyntaxError struct {
	Phase string
	Err   error
}

func (e *UnrecoverableSyntaxError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("json recovery failed after %s: no JSON structure found", e.Phase)
	}
	return fmt.Sprintf("json recovery failed after %s: %v", e.Phase, e.Err)
}

func (e *UnrecoverableSyntaxError) Unwrap() error { return e.Err }
