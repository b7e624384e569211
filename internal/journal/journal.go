// Package journal keeps an append-only history of timer runs as JSONL.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/eggtimer-project/eggtimer/internal/engine"
	"github.com/eggtimer-project/eggtimer/pkg/logging"
)

// FileName is the journal file inside the data directory.
const FileName = "journal.jsonl"

// Record is one journal line.
type Record struct {
	Timestamp      time.Time    `json:"timestamp"`
	Event          engine.Event `json:"event"`
	Label          string       `json:"label,omitempty"`
	TotalSeconds   float64      `json:"total_seconds"`
	ElapsedSeconds float64      `json:"elapsed_seconds"`
}

// Journal appends records to <dir>/journal.jsonl.
type Journal struct {
	fs   afero.Fs
	path string
	now  func() time.Time
	log  *logging.Logger
	mu   sync.Mutex
}

// New creates a journal rooted at dir.
func New(fs afero.Fs, dir string) *Journal {
	return &Journal{
		fs:   fs,
		path: filepath.Join(dir, FileName),
		now:  time.Now,
		log:  logging.Global(),
	}
}

// SetClock replaces the timestamp source.
func (j *Journal) SetClock(now func() time.Time) { j.now = now }

// SetLogger replaces the logger used by Observe.
func (j *Journal) SetLogger(log *logging.Logger) { j.log = log }

// Path returns the journal file.
func (j *Journal) Path() string { return j.path }

// Append writes rec, stamping it when Timestamp is zero.
func (j *Journal) Append(rec Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if rec.Timestamp.IsZero() {
		rec.Timestamp = j.now().UTC()
	}

	if err := j.fs.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}
	file, err := j.fs.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal journal record: %w", err)
	}
	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write journal record: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("sync journal: %w", err)
	}
	return nil
}

// List returns up to limit of the most recent records, oldest first.
// A limit of zero or less returns everything. Malformed lines are skipped.
func (j *Journal) List(limit int) ([]Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := j.fs.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		records = append(records, rec)
		if limit > 0 && len(records) > limit {
			records = records[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan journal: %w", err)
	}
	return records, nil
}

// Observe records an engine transition. Failures are logged, never returned.
func (j *Journal) Observe(tr engine.Transition) {
	if tr.Event == engine.EventSelected {
		return
	}
	err := j.Append(Record{
		Event:          tr.Event,
		Label:          tr.Label,
		TotalSeconds:   tr.Total.Seconds(),
		ElapsedSeconds: tr.Elapsed.Seconds(),
	})
	if err != nil {
		j.log.WarnErr("journal append failed", err, map[string]any{"event": string(tr.Event)})
	}
}
