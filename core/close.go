package core

// CloseDecision is a close policy's verdict on a dirty document.
type CloseDecision int

const (
	// CloseCancel keeps the tab open.
	CloseCancel CloseDecision = iota
	// CloseDiscard closes and drops unsaved changes.
	CloseDiscard
	// CloseSave saves first and closes only if the save succeeds.
	CloseSave
)

// String renders the decision for logs.
func (d CloseDecision) String() string {
	switch d {
	case CloseDiscard:
		return "discard"
	case CloseSave:
		return "save"
	default:
		return "cancel"
	}
}

// ClosePolicy decides what happens when a dirty document is closed.
// decide must run on the control goroutine.
type ClosePolicy interface {
	ConfirmClose(doc *Document, decide func(CloseDecision))
}

// ClosePolicyFunc adapts a function to ClosePolicy.
type ClosePolicyFunc func(doc *Document, decide func(CloseDecision))

// ConfirmClose calls f.
func (f ClosePolicyFunc) ConfirmClose(doc *Document, decide func(CloseDecision)) {
	f(doc, decide)
}

// AlwaysDiscard closes dirty documents without asking.
var AlwaysDiscard ClosePolicy = ClosePolicyFunc(func(_ *Document, decide func(CloseDecision)) {
	decide(CloseDiscard)
})
