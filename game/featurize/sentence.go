package featurize

import (
	"github.com/wricardo/gridworld/game/engine"
	"github.com/wricardo/gridworld/game/vocab"
)

// Sentence describes each visible entity as [location, features...]
// followed by the side information. Relative sentences locate entities by
// their offset from the observer and drop those Bounds or more cells away.
type Sentence struct {
	Relative          bool
	Bounds            int
	MaxSentenceLength int
	MaxSentences      int
}

func NewSentence(relative bool, bounds int) *Sentence {
	return &Sentence{
		Relative:          relative,
		Bounds:            bounds,
		MaxSentenceLength: DefaultMaxSentenceLength,
		MaxSentences:      DefaultMaxSentences,
	}
}

// Featurize returns MaxSentences lines of MaxSentenceLength tokens
func (f *Sentence) Featurize(s *engine.Snapshot, agentID string) (any, error) {
	var origin engine.Location
	if f.Relative {
		var err error
		if origin, err = observer(s, agentID); err != nil {
			return nil, err
		}
	}

	var lines [][]string
	for _, e := range s.World.Entities() {
		a := e.Attrs()
		if !a.Visible {
			continue
		}
		loc := vocab.Coords(a.Loc.X, a.Loc.Y)
		if f.Relative {
			dx, dy := a.Loc.X-origin.X, a.Loc.Y-origin.Y
			if dx <= -f.Bounds || dx >= f.Bounds || dy <= -f.Bounds || dy >= f.Bounds {
				continue
			}
			loc = vocab.RelativeCoords(dx, dy)
		}
		lines = append(lines, append([]string{loc}, e.Features()...))
	}
	for _, info := range s.SideInfo {
		lines = append(lines, append([]string(nil), info...))
	}
	return pad(lines, f.MaxSentences, f.MaxSentenceLength)
}

func (f *Sentence) Vocabulary(maxWidth, maxHeight int) []string {
	if f.Relative {
		return relativeCoords(f.Bounds)
	}
	return absoluteCoords(maxWidth, maxHeight)
}
