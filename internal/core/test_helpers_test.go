package core

import (
	"context"
	"sync"
	"testing"
	"time"
)

type auditRecorderStub struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (r *auditRecorderStub) Record(_ context.Context, entry AuditEntry) {
	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()
}

type metricsObservation struct {
	operation string
	success   bool
}

type metricsRecorderStub struct {
	mu    sync.Mutex
	calls []metricsObservation
}

func (m *metricsRecorderStub) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	m.mu.Lock()
	m.calls = append(m.calls, metricsObservation{operation: op, success: success})
	m.mu.Unlock()
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

type captureLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *captureLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
	l.mu.Unlock()
}

func (l *captureLogger) Debug(msg string, args ...any) { l.add("debug", msg, args) }
func (l *captureLogger) Info(msg string, args ...any)  { l.add("info", msg, args) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.add("warn", msg, args) }
func (l *captureLogger) Error(msg string, args ...any) { l.add("error", msg, args) }

func (l *captureLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

func newTestService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	return NewInMemoryService(NewDefaultRulesEngine(), opts...)
}

func mustSpecialite(t *testing.T, svc *Service, name string) Specialite {
	t.Helper()
	sp, _, err := svc.CreateSpecialite(context.Background(), Specialite{Name: name})
	if err != nil {
		t.Fatalf("create specialite: %v", err)
	}
	return sp
}

func strPtr(s string) *string { return &s }
