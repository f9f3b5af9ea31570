// Package export renders the defence schedule of a track to CSV or JSON and
// stores the artifacts in a blob store. Exports run on a background worker.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"soutenancecore/internal/blob"
	"soutenancecore/internal/console"
	"soutenancecore/pkg/domain"
)

// Format names an artifact encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Status describes the lifecycle stage of an export.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

var (
	// ErrUnsupportedFormat is returned for formats other than csv and json.
	ErrUnsupportedFormat = errors.New("export: unsupported format")
	// ErrQueueFull is returned when the worker cannot accept more requests.
	ErrQueueFull = errors.New("export: queue full")
	// ErrWorkerStopped is returned by Enqueue once Stop has been called.
	ErrWorkerStopped = errors.New("export: worker stopped")
)

// DefaultRetention is the number of finished exports kept for Get.
const DefaultRetention = 256

// Source reads the data an export renders.
type Source interface {
	GetSpecialite(ctx context.Context, id string) (domain.Specialite, error)
	ListSpecialiteDefences(ctx context.Context, specialiteID string) ([]domain.Defence, error)
}

// Logger is the subset of the service logger used by the worker.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Request asks for the schedule of one track.
type Request struct {
	SpecialiteID string
	Formats      []Format
	Filter       console.DefenceFilter
}

// Artifact is one stored rendering.
type Artifact struct {
	Key         string    `json:"key"`
	Format      Format    `json:"format"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	ETag        string    `json:"etag,omitempty"`
	Rows        int       `json:"rows"`
	CreatedAt   time.Time `json:"created_at"`
}

// Record tracks an export and its artifacts.
type Record struct {
	ID           string                `json:"id"`
	SpecialiteID string                `json:"specialite_id"`
	Formats      []Format              `json:"formats"`
	Filter       console.DefenceFilter `json:"filter"`
	Status       Status                `json:"status"`
	Error        string                `json:"error,omitempty"`
	Artifacts    []Artifact            `json:"artifacts,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	CompletedAt  *time.Time            `json:"completed_at,omitempty"`
}

func (r Record) copy() Record {
	dup := r
	dup.Formats = append([]Format(nil), r.Formats...)
	dup.Artifacts = append([]Artifact(nil), r.Artifacts...)
	return dup
}

// Worker processes export requests one at a time.
type Worker struct {
	source Source
	store  blob.Store
	logger Logger
	now    func() time.Time

	queue    chan string
	retain   int
	mu       sync.RWMutex
	jobs     map[string]*Record
	finished []string
	stopped  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Worker.
type Option func(*Worker)

// WithLogger sets the worker logger.
func WithLogger(l Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

// WithQueueSize bounds the number of pending requests.
func WithQueueSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.queue = make(chan string, n)
		}
	}
}

// WithRetention bounds how many finished exports stay readable through Get.
// The oldest finished record is dropped first; its artifacts stay in the
// blob store.
func WithRetention(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.retain = n
		}
	}
}

// NewWorker constructs a worker. Call Start before enqueueing.
func NewWorker(source Source, store blob.Store, opts ...Option) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		source: source,
		store:  store,
		logger: noopLogger{},
		now:    func() time.Time { return time.Now().UTC() },
		queue:  make(chan string, 16),
		retain: DefaultRetention,
		jobs:   make(map[string]*Record),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins processing queued exports.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop halts the worker and waits for the current export to finish. Exports
// still queued are marked failed and later Enqueue calls are refused.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		w.drain()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) drain() {
	for {
		select {
		case id := <-w.queue:
			w.logger.Info("export abandoned", "export_id", id)
			w.finish(id, StatusFailed, ErrWorkerStopped.Error(), nil)
		default:
			return
		}
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case id := <-w.queue:
			w.process(id)
		}
	}
}

// Enqueue validates req and queues it. Formats default to csv then json.
func (w *Worker) Enqueue(_ context.Context, req Request) (Record, error) {
	if strings.TrimSpace(req.SpecialiteID) == "" {
		return Record{}, fmt.Errorf("specialite id required")
	}
	formats, err := normalizeFormats(req.Formats)
	if err != nil {
		return Record{}, err
	}
	now := w.now()
	record := &Record{
		ID:           uuid.NewString(),
		SpecialiteID: req.SpecialiteID,
		Formats:      formats,
		Filter:       req.Filter,
		Status:       StatusQueued,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return Record{}, ErrWorkerStopped
	}
	select {
	case w.queue <- record.ID:
		w.jobs[record.ID] = record
	default:
		w.mu.Unlock()
		return Record{}, ErrQueueFull
	}
	snapshot := record.copy()
	w.mu.Unlock()
	w.logger.Info("export queued", "export_id", record.ID, "specialite_id", req.SpecialiteID)
	return snapshot, nil
}

// Get returns a snapshot of an export.
func (w *Worker) Get(id string) (Record, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return Record{}, false
	}
	return record.copy(), true
}

func (w *Worker) process(id string) {
	record, ok := w.Get(id)
	if !ok {
		return
	}
	w.update(id, func(r *Record) { r.Status = StatusRunning })
	artifacts, err := w.Run(w.ctx, id, record.SpecialiteID, record.Formats, record.Filter)
	if err != nil {
		w.logger.Error("export failed", "export_id", id, "error", err)
		w.finish(id, StatusFailed, err.Error(), nil)
		return
	}
	w.logger.Info("export completed", "export_id", id, "artifacts", len(artifacts))
	w.finish(id, StatusSucceeded, "", artifacts)
}

// Run renders and stores the schedule synchronously. Keys are
// <specialite>/<runID>/schedule.<format>.
func (w *Worker) Run(ctx context.Context, runID, specialiteID string, formats []Format, filter console.DefenceFilter) ([]Artifact, error) {
	sp, err := w.source.GetSpecialite(ctx, specialiteID)
	if err != nil {
		return nil, fmt.Errorf("load specialite: %w", err)
	}
	defences, err := w.source.ListSpecialiteDefences(ctx, specialiteID)
	if err != nil {
		return nil, fmt.Errorf("load defences: %w", err)
	}
	sched := newSchedule(sp, console.ApplyFilter(defences, filter), w.now())

	artifacts := make([]Artifact, 0, len(formats))
	for _, format := range formats {
		payload, contentType, err := sched.render(format)
		if err != nil {
			return artifacts, err
		}
		key := fmt.Sprintf("%s/%s/schedule.%s", specialiteID, runID, format)
		info, err := w.store.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
			ContentType: contentType,
			Metadata:    map[string]string{"specialite": sp.Name, "rows": strconv.Itoa(len(sched.Rows))},
		})
		if err != nil {
			return artifacts, fmt.Errorf("store %s: %w", key, err)
		}
		artifacts = append(artifacts, Artifact{
			Key:         info.Key,
			Format:      format,
			ContentType: contentType,
			SizeBytes:   info.Size,
			ETag:        info.ETag,
			Rows:        len(sched.Rows),
			CreatedAt:   sched.GeneratedAt,
		})
	}
	return artifacts, nil
}

func (w *Worker) update(id string, fn func(*Record)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if record, ok := w.jobs[id]; ok {
		fn(record)
		record.UpdatedAt = w.now()
	}
}

func (w *Worker) finish(id string, status Status, reason string, artifacts []Artifact) {
	w.mu.Lock()
	defer w.mu.Unlock()
	record, ok := w.jobs[id]
	if !ok {
		return
	}
	now := w.now()
	record.Status = status
	record.Error = reason
	record.Artifacts = artifacts
	record.CompletedAt = &now
	record.UpdatedAt = now
	w.finished = append(w.finished, id)
	for len(w.finished) > w.retain {
		delete(w.jobs, w.finished[0])
		w.finished = w.finished[1:]
	}
}

func normalizeFormats(in []Format) ([]Format, error) {
	if len(in) == 0 {
		return []Format{FormatCSV, FormatJSON}, nil
	}
	out := make([]Format, 0, len(in))
	seen := make(map[Format]struct{}, len(in))
	for _, f := range in {
		f = Format(strings.ToLower(strings.TrimSpace(string(f))))
		if f != FormatCSV && f != FormatJSON {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out, nil
}

// Row is one defence flattened for export.
type Row struct {
	ID        string   `json:"id"`
	Date      string   `json:"date"`
	Hour      string   `json:"hour"`
	Classroom string   `json:"classroom"`
	Project   string   `json:"pfe"`
	Status    string   `json:"status"`
	Students  []string `json:"students"`
	Juries    []string `json:"juries"`
	Invitees  []string `json:"invitees"`
}

var csvHeader = []string{"id", "date", "hour", "classroom", "pfe", "status", "students", "juries", "invitees"}

type schedule struct {
	Specialite  string    `json:"specialite"`
	GeneratedAt time.Time `json:"generated_at"`
	Rows        []Row     `json:"defences"`
}

func newSchedule(sp domain.Specialite, defences []domain.Defence, at time.Time) schedule {
	rows := make([]Row, 0, len(defences))
	for _, d := range defences {
		row := Row{
			ID:       d.ID,
			Date:     d.Date,
			Hour:     d.Hour,
			Project:  d.ProjectLabel,
			Status:   string(d.Status),
			Students: make([]string, 0, len(d.Students)),
			Juries:   make([]string, 0, len(d.Juries)),
			Invitees: make([]string, 0, len(d.Invitees)),
		}
		if d.Classroom != nil {
			row.Classroom = d.Classroom.Name
		}
		for _, s := range d.Students {
			row.Students = append(row.Students, fullName(s.Firstname, s.Lastname))
		}
		for _, j := range d.Juries {
			row.Juries = append(row.Juries, fullName(j.Firstname, j.Lastname))
		}
		for _, i := range d.Invitees {
			row.Invitees = append(row.Invitees, fullName(i.Firstname, i.Lastname))
		}
		rows = append(rows, row)
	}
	return schedule{Specialite: sp.Name, GeneratedAt: at, Rows: rows}
}

func (s schedule) render(format Format) ([]byte, string, error) {
	switch format {
	case FormatJSON:
		payload, err := json.Marshal(s)
		if err != nil {
			return nil, "", fmt.Errorf("marshal json: %w", err)
		}
		return payload, "application/json", nil
	case FormatCSV:
		buf := &bytes.Buffer{}
		writer := csv.NewWriter(buf)
		if err := writer.Write(csvHeader); err != nil {
			return nil, "", err
		}
		for _, r := range s.Rows {
			record := []string{
				r.ID, r.Date, r.Hour, r.Classroom, r.Project, r.Status,
				strings.Join(r.Students, "; "),
				strings.Join(r.Juries, "; "),
				strings.Join(r.Invitees, "; "),
			}
			if err := writer.Write(record); err != nil {
				return nil, "", err
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "text/csv", nil
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
