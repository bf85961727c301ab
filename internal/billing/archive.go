package billing

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"MiniPOS/internal/pos"
)

var ErrNoBills = errors.New("no bills found")

const (
	filePrefix = "Bill_"
	fileSuffix = ".txt"

	// bump attempts before giving up on a free bill number
	maxNumberAttempts = 1000
)

type Line struct {
	Name  string  `json:"name"`
	Qty   int     `json:"qty"`
	Total float64 `json:"line_total"`
}

type Bill struct {
	Number int64   `json:"number"`
	File   string  `json:"file"`
	Lines  []Line  `json:"lines"`
	Total  float64 `json:"total"`
}

// Archive is a directory of plain-text bills named after the millisecond
// they were written. Bill numbers handed out by one Archive are strictly
// increasing; a number already taken on disk is skipped.
type Archive struct {
	dir string
	now func() time.Time

	mu   sync.Mutex
	last int64
}

type Option func(*Archive)

func WithClock(now func() time.Time) Option {
	return func(a *Archive) { a.now = now }
}

func NewArchive(dir string, opts ...Option) *Archive {
	a := &Archive{dir: dir, now: time.Now}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *Archive) Dir() string { return a.dir }

func FileName(number int64) string {
	return filePrefix + strconv.FormatInt(number, 10) + fileSuffix
}

// WriteBill stores one bill and returns it with its number and file name.
func (a *Archive) WriteBill(lines []Line, total float64) (Bill, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return Bill{}, fmt.Errorf("create bill dir: %w: %w", pos.ErrPersistence, err)
	}

	number := a.now().UnixMilli()
	if number <= a.last {
		number = a.last + 1
	}

	for range maxNumberAttempts {
		bill := Bill{
			Number: number,
			File:   FileName(number),
			Lines:  append([]Line(nil), lines...),
			Total:  total,
		}

		err := writeExclusive(filepath.Join(a.dir, bill.File), Render(bill))
		if errors.Is(err, fs.ErrExist) {
			number++
			continue
		}
		if err != nil {
			return Bill{}, fmt.Errorf("write %s: %w: %w", bill.File, pos.ErrPersistence, err)
		}

		a.last = number
		return bill, nil
	}

	return Bill{}, fmt.Errorf("no free bill number after %d: %w", number, pos.ErrPersistence)
}

func writeExclusive(path string, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

// ListBills returns the names of all archive entries in directory order.
func (a *Archive) ListBills() ([]string, error) {
	entries, err := os.ReadDir(a.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoBills
	}
	if err != nil {
		return nil, fmt.Errorf("list bills: %w: %w", pos.ErrPersistence, err)
	}
	if len(entries) == 0 {
		return nil, ErrNoBills
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// ReadBill returns the text of one archived bill.
func (a *Archive) ReadBill(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", pos.Invalid("bad bill name %q", name)
	}

	raw, err := os.ReadFile(filepath.Join(a.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("bill %q: %w", name, pos.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read bill: %w: %w", pos.ErrPersistence, err)
	}
	return string(raw), nil
}
