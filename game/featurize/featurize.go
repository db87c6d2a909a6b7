package featurize

import (
	"errors"
	"fmt"

	"github.com/wricardo/gridworld/game/engine"
	"github.com/wricardo/gridworld/game/vocab"
)

var (
	// ErrTooLarge is returned when an observation does not fit the
	// configured padding
	ErrTooLarge = errors.New("observation exceeds encoder limits")
	// ErrNoAgent is returned by agent-relative encoders without an observer
	ErrNoAgent = errors.New("no observing agent")
	// ErrUnknownFeaturizer is returned by New for unregistered names
	ErrUnknownFeaturizer = errors.New("unknown featurizer")
)

// OutOfBounds marks relative grid cells beyond the map edge
const OutOfBounds = "OUT_OF_BOUNDS"

const (
	DefaultMaxSentenceLength = 10
	DefaultMaxSentences      = 100
	DefaultMaxInfoLength     = 10
	DefaultMaxInfos          = 10
	DefaultBounds            = 5
)

// Names lists the encoders New understands
var Names = []string{"sentence_absolute", "sentence_relative", "grid", "grid_relative"}

// New returns the encoder registered under name. bounds is the sight range
// of the relative encoders; zero selects DefaultBounds.
func New(name string, bounds int) (engine.Featurizer, error) {
	if bounds <= 0 {
		bounds = DefaultBounds
	}
	switch name {
	case "sentence_absolute":
		return NewSentence(false, bounds), nil
	case "sentence_relative":
		return NewSentence(true, bounds), nil
	case "grid":
		return NewGrid(false, bounds), nil
	case "grid_relative":
		return NewGrid(true, bounds), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownFeaturizer, name)
}

// observer returns the location of the observing agent
func observer(s *engine.Snapshot, agentID string) (engine.Location, error) {
	if agentID == "" {
		return engine.Location{}, ErrNoAgent
	}
	e, ok := s.World.Get(agentID)
	if !ok {
		return engine.Location{}, fmt.Errorf("%w: %s", ErrNoAgent, agentID)
	}
	return e.Attrs().Loc, nil
}

// pad extends lines to rows lines of width tokens each
func pad(lines [][]string, rows, width int) ([][]string, error) {
	if len(lines) > rows {
		return nil, fmt.Errorf("%w: %d lines, limit %d", ErrTooLarge, len(lines), rows)
	}
	out := make([][]string, rows)
	for i := range out {
		var line []string
		if i < len(lines) {
			line = lines[i]
		}
		if len(line) > width {
			return nil, fmt.Errorf("%w: line of %d tokens, limit %d", ErrTooLarge, len(line), width)
		}
		padded := make([]string, width)
		copy(padded, line)
		for j := len(line); j < width; j++ {
			padded[j] = vocab.Pad
		}
		out[i] = padded
	}
	return out, nil
}

// absoluteCoords lists the coordinate tokens of a maxWidth x maxHeight map
func absoluteCoords(maxWidth, maxHeight int) []string {
	tokens := make([]string, 0, maxWidth*maxHeight)
	for x := 0; x < maxWidth; x++ {
		for y := 0; y < maxHeight; y++ {
			tokens = append(tokens, vocab.Coords(x, y))
		}
	}
	return tokens
}

// relativeCoords lists the offsets visible within bounds
func relativeCoords(bounds int) []string {
	tokens := make([]string, 0, (2*bounds-1)*(2*bounds-1))
	for dx := -bounds + 1; dx < bounds; dx++ {
		for dy := -bounds + 1; dy < bounds; dy++ {
			tokens = append(tokens, vocab.RelativeCoords(dx, dy))
		}
	}
	return tokens
}

// Encode maps tokens to their vocabulary index
func Encode(lines [][]string, index map[string]int) ([][]int, error) {
	out := make([][]int, len(lines))
	for i, line := range lines {
		out[i] = make([]int, len(line))
		for j, tok := range line {
			n, ok := index[tok]
			if !ok {
				return nil, fmt.Errorf("token %q not in vocabulary", tok)
			}
			out[i][j] = n
		}
	}
	return out, nil
}
