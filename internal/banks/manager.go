package banks

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// DetectRows is how many leading rows are searched for bank indicators.
const DetectRows = 20

// ErrUnsupportedBank is returned by Lookup for names no parser answers to.
var ErrUnsupportedBank = errors.New("unsupported bank")

// Result is what the manager found. Detected with no records means the
// statement named a supported bank but its table was not recognised.
type Result struct {
	Bank        string
	Detected    bool
	HeaderIndex int
	Records     []models.BankRecord
}

// Manager dispatches a statement to the first parser that recognises it.
type Manager struct {
	parsers []Parser
	log     logrus.FieldLogger
}

// NewManager returns a manager trying parsers in order.
func NewManager(parsers ...Parser) *Manager {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Manager{parsers: parsers, log: l}
}

// Default returns the manager for every supported bank.
func Default() *Manager {
	return NewManager(NewHDFC(), NewIDFC(), NewICICI())
}

// WithLogger sets the logger for dispatch decisions.
func (m *Manager) WithLogger(l logrus.FieldLogger) *Manager {
	if l != nil {
		m.log = l
	}
	return m
}

// Names lists the registered banks in dispatch order.
func (m *Manager) Names() []string {
	names := make([]string, len(m.parsers))
	for i, p := range m.parsers {
		names[i] = p.Name()
	}
	return names
}

// Lookup returns the parser registered under name.
func (m *Manager) Lookup(name string) (Parser, error) {
	for _, p := range m.parsers {
		if strings.EqualFold(p.Name(), name) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnsupportedBank, name, strings.Join(m.Names(), ", "))
}

// Detect returns the first parser whose indicators appear in the leading
// rows.
func (m *Manager) Detect(rows []models.Row) (Parser, bool) {
	text := leadingText(rows)
	for _, p := range m.parsers {
		if p.Detect(text) {
			return p, true
		}
	}
	return nil, false
}

// Parse detects the bank and extracts its table. There is no fall-through:
// once a parser claims the statement its table must be found, otherwise
// the result carries zero records.
func (m *Manager) Parse(rows []models.Row) Result {
	p, ok := m.Detect(rows)
	if !ok {
		m.log.Debug("no supported bank detected")
		return Result{HeaderIndex: -1}
	}
	return m.ParseWith(p, rows)
}

// ParseWith runs a specific parser, skipping detection.
func (m *Manager) ParseWith(p Parser, rows []models.Row) Result {
	log := m.log.WithField("bank", p.Name())
	res := Result{Bank: p.Name(), Detected: true, HeaderIndex: -1}

	idx, ok := p.FindTable(rows)
	if !ok {
		log.Debug("bank detected but no transaction table found")
		return res
	}
	res.HeaderIndex = idx
	pos := p.Positions(rows[idx])
	for _, row := range rows[idx+1:] {
		if len(row.Tokens) == 0 {
			continue
		}
		if rec, ok := p.ExtractRow(row, pos); ok {
			res.Records = append(res.Records, rec)
		}
	}
	log.WithFields(logrus.Fields{
		"header":  idx,
		"records": len(res.Records),
	}).Debug("bank table extracted")
	return res
}

func leadingText(rows []models.Row) string {
	n := len(rows)
	if n > DetectRows {
		n = DetectRows
	}
	parts := make([]string, 0, n)
	for _, r := range rows[:n] {
		parts = append(parts, r.Text())
	}
	return strings.Join(parts, " ")
}
