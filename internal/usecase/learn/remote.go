package learn

import (
	"context"
	"sync"
	"time"

	"github.com/eslsoft/phrasedrill/internal/entity"
)

// RemoteChecker compares an answer on a server. Implementations must apply
// the same comparison as Evaluate.
type RemoteChecker interface {
	CheckAnswer(ctx context.Context, req entity.CheckRequest) (entity.CheckOutcome, error)
}

// RemoteCheckerFunc adapts a function to RemoteChecker.
type RemoteCheckerFunc func(ctx context.Context, req entity.CheckRequest) (entity.CheckOutcome, error)

func (f RemoteCheckerFunc) CheckAnswer(ctx context.Context, req entity.CheckRequest) (entity.CheckOutcome, error) {
	return f(ctx, req)
}

// LocalChecker evaluates requests in process against a phrase lookup.
type LocalChecker struct {
	Lookup func(ctx context.Context, id int64) (entity.Phrase, error)
}

func (c LocalChecker) CheckAnswer(ctx context.Context, req entity.CheckRequest) (entity.CheckOutcome, error) {
	p, err := c.Lookup(ctx, req.PhraseID)
	if err != nil {
		return entity.CheckOutcome{}, err
	}
	return Evaluate(req.UserAnswer, p.Answer(req.Direction), req.UseContainsMode), nil
}

// Corroboration is the result of re-checking a locally checked answer.
type Corroboration struct {
	Request entity.CheckRequest
	Local   entity.CheckOutcome
	Remote  entity.CheckOutcome
	Err     error
}

// Agrees reports whether the remote call succeeded and matched the local outcome.
func (c Corroboration) Agrees() bool {
	return c.Err == nil && c.Remote == c.Local
}

// Corroborator re-checks local outcomes remotely in the background. Only
// the latest submission is live: a new Submit cancels the previous call and
// canceled calls are never reported.
type Corroborator struct {
	checker RemoteChecker
	timeout time.Duration
	results chan Corroboration

	mu     sync.Mutex
	cancel context.CancelFunc
	seq    uint64
	closed bool
	wg     sync.WaitGroup
}

// NewCorroborator creates a corroborator. A zero timeout means no per-call
// deadline beyond the submitting context.
func NewCorroborator(checker RemoteChecker, timeout time.Duration) *Corroborator {
	return &Corroborator{
		checker: checker,
		timeout: timeout,
		results: make(chan Corroboration, 1),
	}
}

// Results delivers corroborations. It is closed by Close.
func (c *Corroborator) Results() <-chan Corroboration { return c.results }

// Submit starts a remote check for req, superseding any call in flight.
func (c *Corroborator) Submit(ctx context.Context, req entity.CheckRequest, local entity.CheckOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.cancel != nil {
		c.cancel()
	}

	var callCtx context.Context
	var cancel context.CancelFunc
	if c.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		callCtx, cancel = context.WithCancel(ctx)
	}
	c.cancel = cancel
	c.seq++
	seq := c.seq

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		remote, err := c.checker.CheckAnswer(callCtx, req)
		c.deliver(seq, Corroboration{Request: req, Local: local, Remote: remote, Err: err})
	}()
}

func (c *Corroborator) deliver(seq uint64, res Corroboration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.seq {
		return
	}
	c.cancel = nil
	// Drop a stale undrained result in favour of the newer one.
	select {
	case <-c.results:
	default:
	}
	c.results <- res
}

// Cancel aborts the call in flight, if any, without reporting it.
func (c *Corroborator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.seq++
}

// Close cancels outstanding work, waits for it and closes Results.
func (c *Corroborator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	c.wg.Wait()
	close(c.results)
}
