package engine

import (
	"fmt"
	"math"
)

const (
	// MinMapSize and MaxMapSize bound each map dimension
	MinMapSize = 2
	MaxMapSize = 50

	// MaxConstructionAttempts bounds the retries of Reset
	MaxConstructionAttempts = 100

	DefaultTurnPenalty = 0.1
)

// MapSize is the rectangle episode dimensions are drawn from, bounds inclusive
type MapSize struct {
	MinWidth  int `json:"min_width"`
	MaxWidth  int `json:"max_width"`
	MinHeight int `json:"min_height"`
	MaxHeight int `json:"max_height"`
}

// Fixed returns a MapSize that always yields width x height
func Fixed(width, height int) MapSize {
	return MapSize{MinWidth: width, MaxWidth: width, MinHeight: height, MaxHeight: height}
}

// Params are the task-independent engine settings
type Params struct {
	MapSize     MapSize `json:"map_size"`
	TurnPenalty float64 `json:"turn_penalty"`
	// Seed makes episodes reproducible. Zero draws a random seed.
	Seed int64 `json:"seed,omitempty"`
}

// DefaultParams returns 5-10 x 5-10 maps with a 0.1 turn penalty
func DefaultParams() Params {
	return Params{
		MapSize:     MapSize{MinWidth: 5, MaxWidth: 10, MinHeight: 5, MaxHeight: 10},
		TurnPenalty: DefaultTurnPenalty,
	}
}

// ValidateParams checks params for consistency
func ValidateParams(p Params) error {
	ms := p.MapSize
	if ms.MinWidth < MinMapSize || ms.MaxWidth > MaxMapSize || ms.MinWidth > ms.MaxWidth {
		return fmt.Errorf("%w: width range must satisfy %d <= min <= max <= %d, got %d-%d",
			ErrInvalidParams, MinMapSize, MaxMapSize, ms.MinWidth, ms.MaxWidth)
	}
	if ms.MinHeight < MinMapSize || ms.MaxHeight > MaxMapSize || ms.MinHeight > ms.MaxHeight {
		return fmt.Errorf("%w: height range must satisfy %d <= min <= max <= %d, got %d-%d",
			ErrInvalidParams, MinMapSize, MaxMapSize, ms.MinHeight, ms.MaxHeight)
	}
	if math.IsNaN(p.TurnPenalty) || math.IsInf(p.TurnPenalty, 0) || p.TurnPenalty < 0 {
		return fmt.Errorf("%w: turn_penalty must be a finite non-negative number, got %v", ErrInvalidParams, p.TurnPenalty)
	}
	return nil
}
