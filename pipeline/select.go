package pipeline

import (
	"context"
	"log"

	"tubefeed/youtube"
)

// Selection is the outcome of one selection pass.
type Selection struct {
	// Selected is the newest available candidate, nil when the look-back
	// was exhausted.
	Selected *youtube.Candidate

	// Probed is the number of candidates checked.
	Probed int

	// Unavailable holds the IDs that failed the availability probe,
	// in probe order.
	Unavailable []string

	// Diagnosis explains the last probed candidate when nothing was
	// selected. Nil when diagnosis itself failed or nothing was probed.
	Diagnosis *youtube.Diagnosis
}

// SelectLatestAvailable walks candidates newest first and returns the first
// one that passes the availability probe. The walk is bounded: at most
// lookBack candidates are probed, so one source full of dead videos cannot
// stall a whole cycle. On exhaustion the last probed candidate gets a deep
// diagnosis so the log says why the source yielded nothing.
func SelectLatestAvailable(ctx context.Context, prober Prober, candidates []youtube.Candidate, lookBack int) (*Selection, error) {
	sel := &Selection{}

	limit := len(candidates)
	if lookBack > 0 && lookBack < limit {
		limit = lookBack
	}

	for i := 0; i < limit; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := candidates[i]
		sel.Probed++

		ok, err := prober.IsAvailable(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			sel.Selected = &candidates[i]
			return sel, nil
		}
		sel.Unavailable = append(sel.Unavailable, c.ID)
		log.Printf("tubefeed: video %s (%q) unavailable, trying next", c.ID, c.Title)
	}

	if sel.Probed > 0 {
		last := candidates[sel.Probed-1]
		diag, err := prober.Diagnose(ctx, last.ID)
		if err == nil {
			sel.Diagnosis = diag
		}
	}
	return sel, nil
}
