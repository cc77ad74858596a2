package monitor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	auditDomain "motofin-ledger/internal/domain/audit"
)

// Flag marks a record whose mutation velocity over the trailing window looks
// like lock contention or workflow misuse. Purely observational: a flagged
// record behaves exactly like any other.
type Flag struct {
	Module   string        `json:"module"`
	RecordID uint64        `json:"record_id"`
	Count    int64         `json:"count"`
	Window   time.Duration `json:"window"`
}

// Monitor surfaces race-condition candidates for human review. Every
// successful mutation writes exactly one audit row in its own transaction, so
// audit density per record equals version-increment velocity.
type Monitor struct {
	audits    auditDomain.Repository
	window    time.Duration
	threshold int64
	log       *logrus.Logger
}

func New(audits auditDomain.Repository, window time.Duration, threshold int64, log *logrus.Logger) *Monitor {
	return &Monitor{audits: audits, window: window, threshold: threshold, log: log}
}

// Flags returns every record whose mutation count within the trailing window
// meets the threshold.
func (m *Monitor) Flags(ctx context.Context) ([]Flag, error) {
	since := time.Now().UTC().Add(-m.window)
	counts, err := m.audits.CountSince(ctx, since)
	if err != nil {
		return nil, err
	}

	flags := make([]Flag, 0)
	for _, c := range counts {
		if c.Count < m.threshold {
			continue
		}
		flags = append(flags, Flag{Module: c.Module, RecordID: c.RecordID, Count: c.Count, Window: m.window})
		if m.log != nil {
			m.log.WithFields(logrus.Fields{
				"module":    c.Module,
				"record_id": c.RecordID,
				"count":     c.Count,
				"window":    m.window.String(),
			}).Warn("high version-increment velocity")
		}
	}
	return flags, nil
}
