package profitbot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// The store keeps one small JSON document per concern.
const (
	baseFile   = "base.json"
	rateFile   = "rate.json"
	reportFile = "report.json"
)

// DefaultRate is the exchange rate used when none has ever been set.
var DefaultRate = decimal.NewFromInt(88)

// ErrNonPositiveRate is returned when setting a zero or negative exchange
// rate.
var ErrNonPositiveRate = errors.New("exchange rate must be a positive number")

// Store persists the product base, the exchange rate and the last report
// snapshot as JSON documents in a single directory.
//
// Every write replaces the whole document through a temp-file-and-rename, so
// a crash can never leave a truncated document behind. A store-level mutex
// serializes read-modify-write cycles, making concurrent upserts
// linearizable.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore opens (creating if needed) a store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create data directory %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string { return s.dir }

// Base loads the product base. A missing document is an empty base.
func (s *Store) Base() (*ProductBase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadBase()
}

func (s *Store) loadBase() (*ProductBase, error) {
	costs := make(map[string]decimal.Decimal)
	if err := s.readDocument(baseFile, &costs); err != nil {
		return nil, err
	}
	return &ProductBase{costs: costs}, nil
}

// SaveBase persists the whole product base.
func (s *Store) SaveBase(base *ProductBase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeDocument(baseFile, base.costs)
}

// UpsertProducts adds or overwrites product definitions and persists the
// base in a single durable write. The read-modify-write runs under the store
// lock, so concurrent admin edits cannot lose updates.
func (s *Store) UpsertProducts(products ...Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	base, err := s.loadBase()
	if err != nil {
		return err
	}
	for _, p := range products {
		base.Upsert(p.Model, p.Cost)
	}
	return s.writeDocument(baseFile, base.costs)
}

// rateDocument is the persisted shape of the exchange rate.
type rateDocument struct {
	Rate decimal.Decimal `json:"rate"`
}

// Rate returns the persisted exchange rate, or DefaultRate if none was ever
// set.
func (s *Store) Rate() (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc rateDocument
	if err := s.readDocument(rateFile, &doc); err != nil {
		return decimal.Zero, err
	}
	if doc.Rate.IsZero() {
		return DefaultRate, nil
	}
	return doc.Rate, nil
}

// SetRate persists a new exchange rate. Zero and negative rates are
// rejected.
func (s *Store) SetRate(rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return ErrNonPositiveRate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeDocument(rateFile, rateDocument{Rate: rate})
}

// SaveSnapshot persists a finalized report, overwriting the previous
// snapshot. Only the last report is kept.
func (s *Store) SaveSnapshot(snap *ReportSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeDocument(reportFile, snap)
}

// LastSnapshot loads the last persisted report. It returns fs.ErrNotExist
// (wrapped) when no report was ever finalized.
func (s *Store) LastSnapshot() (*ReportSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, reportFile)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %q: %w", path, err)
	}
	var snap ReportSnapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		return nil, fmt.Errorf("corrupt report snapshot %q: %w", path, err)
	}
	return &snap, nil
}

// readDocument reads a JSON document into v. A missing file leaves v
// untouched, so callers get their zero value.
func (s *Store) readDocument(name string, v any) error {
	path := filepath.Join(s.dir, name)
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot read %q: %w", path, err)
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("corrupt document %q: %w", path, err)
	}
	return nil
}

// writeDocument atomically replaces a JSON document: the content is written
// to a temp file in the same directory and renamed over the target.
func (s *Store) writeDocument(name string, v any) error {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode %q: %w", name, err)
	}

	f, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("cannot create temp file for %q: %w", name, err)
	}
	tmp := f.Name()

	if _, err := f.Write(append(content, '\n')); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("cannot write %q: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cannot close %q: %w", tmp, err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cannot replace %q: %w", path, err)
	}
	return nil
}
