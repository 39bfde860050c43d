package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger so that every draw taken during a run is
// auditable. Roller itself satisfies Source.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that draws from src and logs each draw to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if src == nil || logger == nil {
		panic("dice.NewLoggedRoller: precondition violated: src and logger must be non-nil")
	}
	return &Roller{src: src, logger: logger}
}

// Intn draws from the wrapped source and logs the result at debug level.
//
// Precondition: n > 0.
// Postcondition: result in [0, n) is logged.
func (r *Roller) Intn(n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("dice draw",
		zap.Int("n", n),
		zap.Int("result", v),
	)
	return v
}
