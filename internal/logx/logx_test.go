package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"pkt.systems/pslog"
)

func newCaptureLogger(capture *logCapture) pslog.Logger {
	return pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.InfoLevel,
		VerboseFields: true,
	})
}

func TestWithPathAddsField(t *testing.T) {
	capture := &logCapture{}
	log := WithPath(newCaptureLogger(capture), "/a/b.txt")
	log.Info("hello")

	entry := capture.firstEntry(t)
	if entry["path"] != "/a/b.txt" {
		t.Fatalf("expected path field, got %+v", entry)
	}
}

func TestWithPathSkipsEmpty(t *testing.T) {
	capture := &logCapture{}
	log := WithLabel(WithPath(newCaptureLogger(capture), ""), "Untitled-1")
	log.Info("hello")

	entry := capture.firstEntry(t)
	if _, ok := entry["path"]; ok {
		t.Fatalf("did not expect path for untitled document")
	}
	if entry["label"] != "Untitled-1" {
		t.Fatalf("expected label field, got %+v", entry)
	}
}

func TestWithDocumentAddsField(t *testing.T) {
	capture := &logCapture{}
	ctx := pslog.ContextWithLogger(context.Background(), newCaptureLogger(capture))
	WithDocument(ctx, 3).Info("hello")

	entry := capture.firstEntry(t)
	if fmt.Sprint(entry["document"]) != "3" {
		t.Fatalf("expected document field, got %+v", entry)
	}
}

func TestContextWithDocumentLoggerDedupes(t *testing.T) {
	capture := &logCapture{}
	ctx := ContextWithDocumentLogger(context.Background(), newCaptureLogger(capture), 7)
	WithDocument(ctx, 7).Info("hello")

	line := bytes.TrimSpace(capture.buf.Bytes())
	if n := bytes.Count(line, []byte(`"document"`)); n != 1 {
		t.Fatalf("expected a single document field, got %d in %s", n, line)
	}
}

type logCapture struct {
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	return c.buf.Write(p)
}

func (c *logCapture) firstEntry(t *testing.T) map[string]any {
	t.Helper()
	data := c.buf.Bytes()
	idx := bytes.IndexByte(data, '\n')
	if idx == -1 {
		idx = len(data)
	}
	line := bytes.TrimSpace(data[:idx])
	entry := map[string]any{}
	if err := json.Unmarshal(line, &entry); err != nil {
		t.Fatalf("parse log entry: %v", err)
	}
	return entry
}
