package core

// Executor runs blocking work off the control goroutine. done must be
// invoked on the control goroutine with work's result.
type Executor interface {
	Submit(work func() error, done func(error))
}

// InlineExecutor runs work and done immediately on the caller's goroutine.
type InlineExecutor struct{}

// Submit runs work then done.
func (InlineExecutor) Submit(work func() error, done func(error)) {
	err := work()
	if done != nil {
		done(err)
	}
}
