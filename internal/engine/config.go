package engine

// EngineConfig holds the solver tolerances and resource limits the spec
// leaves as implementation defaults rather than per-model inputs.
type EngineConfig struct {
	// DebtSizingTolerance is the binary-search convergence band for the
	// iterative debt-sizing module (spec §4.9.6).
	DebtSizingTolerance float64
	// DebtSizingMaxIterations bounds the binary search.
	DebtSizingMaxIterations int
	// ExpressionCacheSize bounds the LRU of compiled scalar expressions (spec §5).
	ExpressionCacheSize int
}

// GetDefaultEngineConfig returns the engine's compiled-in defaults.
func GetDefaultEngineConfig() EngineConfig {
	return EngineConfig{
		DebtSizingTolerance:     1.0,
		DebtSizingMaxIterations: 100,
		ExpressionCacheSize:     512,
	}
}
