package forms

import (
	"context"
	"sync"

	"github.com/Its-donkey/loginform/internal/ui/model"
)

// Pending is the single-resolution result of an accepted submit.
type Pending struct {
	once    sync.Once
	done    chan struct{}
	outcome model.Outcome
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func resolvedPending(outcome model.Outcome) *Pending {
	p := newPending()
	p.resolve(outcome)
	return p
}

func (p *Pending) resolve(outcome model.Outcome) {
	p.once.Do(func() {
		p.outcome = outcome
		close(p.done)
	})
}

// Done is closed once the outcome is known and has been applied to the form.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Outcome returns the resolved outcome. ok is false while still pending.
func (p *Pending) Outcome() (model.Outcome, bool) {
	select {
	case <-p.done:
		return p.outcome, true
	default:
		return model.Outcome{}, false
	}
}

// Wait blocks until the submission resolves or ctx is done. Giving up on the
// wait does not cancel the submission.
func (p *Pending) Wait(ctx context.Context) (model.Outcome, error) {
	select {
	case <-p.done:
		return p.outcome, nil
	case <-ctx.Done():
		return model.Outcome{}, ctx.Err()
	}
}
