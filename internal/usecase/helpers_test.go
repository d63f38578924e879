package usecase

import (
	"context"
	"testing"

	xlogger "PopPredict/pkg/logger"
)

func testLogger(t *testing.T) *xlogger.Logger {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

type fakeEvents struct {
	published []map[string]interface{}
	err       error
	closed    bool
}

func (f *fakeEvents) PublishDatasetReady(_ context.Context, report map[string]interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, report)
	return nil
}

func (f *fakeEvents) Close() error {
	f.closed = true
	return nil
}
