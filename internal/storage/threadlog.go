package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/LJTian/TrendingThreads/internal/generator"
)

const threadLogPattern = "trending_thread_log_%s.json"

// ThreadLog keeps one JSON array file per day of delivered threads.
type ThreadLog struct {
	dir string
	loc *time.Location
	now func() time.Time
	mu  sync.Mutex
}

func NewThreadLog(dir string, loc *time.Location) *ThreadLog {
	if dir == "" {
		dir = "logs"
	}
	if loc == nil {
		loc = time.Local
	}
	return &ThreadLog{dir: dir, loc: loc, now: time.Now}
}

// Path returns the log file for the day containing t.
func (l *ThreadLog) Path(t time.Time) string {
	return filepath.Join(l.dir, fmt.Sprintf(threadLogPattern, t.In(l.loc).Format("20060102")))
}

// Append adds th to today's file. A missing or unreadable file starts a new array.
func (l *ThreadLog) Append(th *generator.Thread) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	path := l.Path(l.now())

	threads, err := readThreads(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("thread log unreadable, starting a new one", "path", path, "error", err)
	}
	threads = append(threads, *th)

	data, err := json.MarshalIndent(threads, "", "  ")
	if err != nil {
		return fmt.Errorf("encode thread log: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write thread log: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace thread log: %w", err)
	}
	return nil
}

// Day returns the threads logged on the day containing t. A missing file is an
// empty day.
func (l *ThreadLog) Day(t time.Time) ([]generator.Thread, error) {
	threads, err := readThreads(l.Path(t))
	if errors.Is(err, fs.ErrNotExist) {
		return []generator.Thread{}, nil
	}
	if err != nil {
		return nil, err
	}
	return threads, nil
}

func readThreads(path string) ([]generator.Thread, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var threads []generator.Thread
	if err := json.Unmarshal(data, &threads); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return threads, nil
}
