package business

import (
	"context"
	"sync"

	"github.com/Agurato/marquee/internal/model"
)

// AttemptState is the state of a single image resolution
type AttemptState int

const (
	Pending AttemptState = iota
	Resolved
	Failed
	Aborted
)

func (s AttemptState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	case Aborted:
		return "aborted"
	}
	return "unknown"
}

// Attempt is one resolution of a movie image. Its URL is always displayable: it holds the
// fallback URL until the attempt resolves.
//
// Abort and the final commit are serialized on the attempt, so once Abort returns the
// attempt will not touch the memo store nor change its URL. The accessors never wait for
// a commit in progress.
type Attempt struct {
	MovieID int

	// commitMu serializes Abort and settle, mu guards the fields below
	commitMu sync.Mutex
	mu       sync.Mutex
	state  AttemptState
	url    string
	err    error
	cancel context.CancelFunc
	done   chan struct{}
}

func newAttempt(movieID int, url string, cancel context.CancelFunc) *Attempt {
	return &Attempt{
		MovieID: movieID,
		state:   Pending,
		url:     url,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// newSettledAttempt returns an attempt that is already in a terminal state
func newSettledAttempt(movieID int, url string, state AttemptState, err error) *Attempt {
	a := newAttempt(movieID, url, func() {})
	a.state = state
	a.err = err
	close(a.done)
	return a
}

// URL returns the URL to display for this attempt
func (a *Attempt) URL() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.url
}

func (a *Attempt) State() AttemptState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Err returns why the attempt did not resolve, nil while pending or once resolved
func (a *Attempt) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Done is closed when the attempt reaches a terminal state
func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

// Abort abandons the attempt. It is a no-op on a terminal attempt.
// If the result is being written to the memo store, Abort waits for the write and the
// attempt ends up resolved.
func (a *Attempt) Abort() {
	a.commitMu.Lock()
	a.mu.Lock()
	if a.state == Pending {
		a.state = Aborted
		a.err = model.ErrAborted
		close(a.done)
	}
	a.mu.Unlock()
	a.commitMu.Unlock()
	a.cancel()
}

// Wait blocks until the attempt is over and returns its URL.
// If ctx is done first, the attempt is aborted.
func (a *Attempt) Wait(ctx context.Context) string {
	select {
	case <-a.done:
	case <-ctx.Done():
		a.Abort()
	}
	return a.URL()
}

// settle moves a pending attempt to its terminal state. commit, if not nil, runs right
// before the transition and returns the URL to display; Abort cannot interleave with it.
// Nothing happens if the attempt was aborted or its context is done.
func (a *Attempt) settle(ctx context.Context, state AttemptState, err error, commit func() (string, error)) {
	a.commitMu.Lock()
	defer a.commitMu.Unlock()
	if a.State() != Pending {
		return
	}

	url := ""
	if ctx.Err() != nil {
		state, err = Aborted, model.ErrAborted
	} else if commit != nil {
		stored, commitErr := commit()
		switch {
		case commitErr != nil && ctx.Err() != nil:
			state, err = Aborted, model.ErrAborted
		case commitErr != nil:
			state, err = Failed, commitErr
		default:
			url = stored
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if url != "" {
		a.url = url
	}
	a.state = state
	a.err = err
	close(a.done)
}
