package pipeline

import (
	"context"

	"github.com/starford/notesift/internal/models"
)

// Outcome pairs a note with its classification.
type Outcome struct {
	Note   models.NoteRecord
	Result Result
	Trace  Trace
}

// Batch classifies notes one at a time in order. limit <= 0 means all.
// It stops early when ctx is cancelled and returns what was classified.
func (p *Pipeline) Batch(ctx context.Context, notes []models.NoteRecord, limit int, fn func(Outcome)) []Outcome {
	if limit > 0 && limit < len(notes) {
		notes = notes[:limit]
	}
	out := make([]Outcome, 0, len(notes))
	for _, n := range notes {
		if ctx.Err() != nil {
			break
		}
		res, trace := p.Run(ctx, n.Content)
		o := Outcome{Note: n, Result: res, Trace: trace}
		if fn != nil {
			fn(o)
		}
		out = append(out, o)
	}
	return out
}
