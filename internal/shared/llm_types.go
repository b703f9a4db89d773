package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// StageMeta holds operational metadata for one generation stage, including
// which recovery strategy was needed to salvage the model output.
type StageMeta struct {
	Stage            string
	Usage            TokenUsage
	Latency          time.Duration
	RecoveryStrategy string
}
