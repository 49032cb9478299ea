package orchestrator

import "context"

// CancelToken is the cooperative cancellation handle §4.16 requires: "every
// long-running stage polls a cancellation token at block boundaries; on
// cancel the in-progress snapshot is discarded and no partial state is
// committed." It wraps a context.Context rather than inventing a new
// signaling primitive, since every stage in this pipeline already accepts
// one (parsing, index writes, git subprocess calls all take ctx).
type CancelToken struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
}

// NewCancelToken derives a cancellable token from parent.
func NewCancelToken(parent context.Context) *CancelToken {
	ctx, cancel := context.WithCancelCause(parent)
	return &CancelToken{ctx: ctx, cancel: cancel}
}

// Context returns the token's context, for passing into stage calls that
// already take one (index writers, parser adapter, git detector).
func (t *CancelToken) Context() context.Context { return t.ctx }

// Cancelled reports whether the token has been cancelled, without
// blocking — the §4.16 "polls ... at block boundaries" check a stage makes
// between units of work (one file, one batch) rather than mid-unit.
func (t *CancelToken) Cancelled() bool {
	select {
	case <-t.ctx.Done():
		return true
	default:
		return false
	}
}

// Err returns the cancellation cause (context.Canceled, a deadline, or the
// reason passed to Cancel), or nil if not cancelled.
func (t *CancelToken) Err() error {
	return context.Cause(t.ctx)
}

// Cancel requests cancellation with a reason, surfaced via Err() to callers
// that want to log why a run was aborted (operator-requested vs. deadline).
func (t *CancelToken) Cancel(reason error) { t.cancel(reason) }

// StageBoundary is the single poll call a long-running stage makes between
// units of work. It returns the cancellation cause if the token has fired,
// or nil to continue. Stages call this once per file/batch, never mid-file,
// so a cancel never leaves a half-written IR node or index row.
func StageBoundary(t *CancelToken) error {
	if t == nil {
		return nil
	}
	if t.Cancelled() {
		return t.Err()
	}
	return nil
}
