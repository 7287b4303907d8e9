package picker

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"codeberg.org/snonux/wordofday/internal/entry"
)

// StaticPicker draws uniformly from a fixed candidate list.
type StaticPicker struct {
	candidates []entry.Entry

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewStaticPicker returns a picker over candidates.
func NewStaticPicker(candidates []entry.Entry, seed int64) (*StaticPicker, error) {
	if len(candidates) == 0 {
		return nil, errors.New("static picker needs at least one candidate")
	}

	list := make([]entry.Entry, len(candidates))
	for i, c := range candidates {
		list[i] = c.Clone()
	}

	return &StaticPicker{
		candidates: list,
		rnd:        rand.New(rand.NewSource(seed)),
	}, nil
}

// Pick implements Picker. The excluded word is skipped unless it is the
// only candidate, in which case it is returned anyway.
func (p *StaticPicker) Pick(ctx context.Context, exclude string) (entry.Entry, error) {
	if err := ctx.Err(); err != nil {
		return entry.Entry{}, err
	}

	filtered := make([]entry.Entry, 0, len(p.candidates))
	for _, c := range p.candidates {
		if c.Word != exclude {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		filtered = p.candidates
	}

	p.mu.Lock()
	i := p.rnd.Intn(len(filtered))
	p.mu.Unlock()

	return filtered[i].Clone(), nil
}

// Name implements Picker.
func (p *StaticPicker) Name() string {
	return "static"
}

// Len returns the number of candidates.
func (p *StaticPicker) Len() int {
	return len(p.candidates)
}
