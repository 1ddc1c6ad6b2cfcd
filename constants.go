package sentryd

import (
	"github.com/ehrlich-b/sentryd/internal/config"
)

// Re-exported tunable bounds, so callers configuring an
// Engine don't need to import internal/config directly.
const (
	MinStallTimeout     = config.MinWait
	MaxStallTimeout     = config.MaxWait
	MaxContinueTimeout  = config.MaxExtended
	MaxContinuesPerWait = config.MaxContinues
)
