package profitbot

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

// State is the conversation state of one user session.
type State int

const (
	// Idle means no report is in progress.
	Idle State = iota
	// ReportActive means sale lines are being collected for a report.
	ReportActive
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ReportActive:
		return "report active"
	default:
		return "unknown"
	}
}

var (
	// ErrNoActiveReport is returned when an operation requires a report in
	// progress and there is none.
	ErrNoActiveReport = errors.New("no report in progress")
	// ErrEmptyReport is returned when a report is finalized without entries.
	ErrEmptyReport = errors.New("report has no entries")
)

// Session holds the ephemeral conversation state of a single user: whether a
// report is in progress and the entries collected so far.
//
// A Session is not safe for concurrent use; the transport is expected to
// process one message per user at a time.
type Session struct {
	userID  int64
	state   State
	entries []SaleEntry
}

// NewSession creates an idle session for a user.
func NewSession(userID int64) *Session {
	return &Session{userID: userID}
}

func (s *Session) UserID() int64 { return s.userID }
func (s *Session) State() State  { return s.state }
func (s *Session) Active() bool  { return s.state == ReportActive }

// Entries returns a copy of the entries collected so far.
func (s *Session) Entries() []SaleEntry {
	return append([]SaleEntry(nil), s.entries...)
}

// StartReport begins a new report, discarding any previously collected
// entries.
func (s *Session) StartReport() {
	s.state = ReportActive
	s.entries = nil
}

// Append adds parsed entries to the report in progress. Entries may
// reference models not yet in the base; validation happens at finalize time.
func (s *Session) Append(entries ...SaleEntry) error {
	if s.state != ReportActive {
		return ErrNoActiveReport
	}
	s.entries = append(s.entries, entries...)
	return nil
}

// Finalize builds the report from the collected entries.
//
// On success the session returns to Idle and the entries are cleared. On a
// MissingModelsError the session stays active with its entries intact, so
// the user can register the missing products and finalize again.
func (s *Session) Finalize(base *ProductBase, rate decimal.Decimal, source, target string) (*Report, error) {
	if s.state != ReportActive {
		return nil, ErrNoActiveReport
	}
	if len(s.entries) == 0 {
		return nil, ErrEmptyReport
	}

	report, err := BuildReport(s.entries, base, rate, source, target)
	if err != nil {
		return nil, err
	}

	s.state = Idle
	s.entries = nil
	return report, nil
}

// Reset returns the session to Idle and discards collected entries.
func (s *Session) Reset() {
	s.state = Idle
	s.entries = nil
}

// Sessions is a registry of per-user sessions. Sessions are created on first
// contact and are never shared between users, so a transport that dispatches
// updates concurrently across users stays race free as long as it serializes
// messages of the same user.
type Sessions struct {
	mu sync.Mutex
	m  map[int64]*Session
}

// NewSessions creates an empty registry.
func NewSessions() *Sessions {
	return &Sessions{m: make(map[int64]*Session)}
}

// Get returns the session for a user, creating it on first contact.
func (ss *Sessions) Get(userID int64) *Session {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	s, ok := ss.m[userID]
	if !ok {
		s = NewSession(userID)
		ss.m[userID] = s
	}
	return s
}
