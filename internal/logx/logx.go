package logx

import (
	"context"

	"pkt.systems/pslog"
	"pkt.systems/tabula/schema"
)

type contextKey int

const (
	documentKey contextKey = iota
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithDocument annotates the context logger with the document id unless the
// context already carries the same marker.
func WithDocument(ctx context.Context, id schema.DocumentID) pslog.Logger {
	log := pslog.Ctx(ctx)
	if current, ok := ctx.Value(documentKey).(schema.DocumentID); ok && current == id {
		return log
	}
	return log.With("document", int64(id))
}

// WithPath annotates the logger with a file path when available.
func WithPath(log pslog.Logger, path string) pslog.Logger {
	if path != "" {
		log = log.With("path", path)
	}
	return log
}

// WithLabel annotates the logger with a tab label when available.
func WithLabel(log pslog.Logger, label string) pslog.Logger {
	if label != "" {
		log = log.With("label", label)
	}
	return log
}

// ContextWithDocument stores the document marker on the context for log de-duplication.
func ContextWithDocument(ctx context.Context, id schema.DocumentID) context.Context {
	if ctx == nil {
		return ctx
	}
	return context.WithValue(ctx, documentKey, id)
}

// ContextWithDocumentLogger attaches a document-annotated logger and marker to the context.
func ContextWithDocumentLogger(ctx context.Context, log pslog.Logger, id schema.DocumentID) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log.With("document", int64(id)))
	return ContextWithDocument(ctx, id)
}
