package signals

import (
	"errors"
	"fmt"
	"math"
)

// State is the held position in the spread: +1 long Y / short X, -1 the reverse.
type State int8

const (
	Flat  State = 0
	Long  State = 1
	Short State = -1
)

func (s State) String() string {
	switch s {
	case Long:
		return "LONG_SPREAD"
	case Short:
		return "SHORT_SPREAD"
	default:
		return "FLAT"
	}
}

var ErrInvalidThresholds = errors.New("signals: invalid thresholds")

// Thresholds are absolute z-score levels; entry is mirrored for the long side.
type Thresholds struct {
	Entry float64 `json:"entry_z" yaml:"entry_z"`
	Exit  float64 `json:"exit_z" yaml:"exit_z"`
	Stop  float64 `json:"stop_z" yaml:"stop_z"`
}

// Validate checks entry > exit and stop > entry. Generate does not call it.
func (th Thresholds) Validate() error {
	switch {
	case math.IsNaN(th.Entry) || math.IsNaN(th.Exit) || math.IsNaN(th.Stop):
		return fmt.Errorf("%w: NaN level", ErrInvalidThresholds)
	case th.Entry <= th.Exit:
		return fmt.Errorf("%w: entry %v must exceed exit %v", ErrInvalidThresholds, th.Entry, th.Exit)
	case th.Stop <= th.Entry:
		return fmt.Errorf("%w: stop %v must exceed entry %v", ErrInvalidThresholds, th.Stop, th.Entry)
	}
	return nil
}

// Next is one transition: it depends on the previous state and today's z only.
// A NaN z holds the state.
func Next(prev State, z float64, th Thresholds) State {
	if math.IsNaN(z) {
		return prev
	}
	switch prev {
	case Flat:
		if z > th.Entry {
			return Short
		}
		if z < -th.Entry {
			return Long
		}
	case Long:
		if z > -th.Exit || z < -th.Stop {
			return Flat
		}
	case Short:
		if z < th.Exit || z > th.Stop {
			return Flat
		}
	}
	return prev
}

// Generate folds Next over z. The first state is always Flat.
func Generate(z []float64, th Thresholds) []State {
	out := make([]State, len(z))
	for t := 1; t < len(z); t++ {
		out[t] = Next(out[t-1], z[t], th)
	}
	return out
}

// Changes counts the dates on which the state differs from the day before.
func Changes(states []State) int {
	n := 0
	for t := 1; t < len(states); t++ {
		if states[t] != states[t-1] {
			n++
		}
	}
	return n
}
