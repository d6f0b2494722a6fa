/*
Package memory is the in-memory store: every collection the dealer core
persists, behind one mutex.

PURPOSE:
  Backs tests and dev runs. Implements the narrow store interface of each
  domain package (ledger, sales, workshop, closing, notify, staff) on one
  struct so a single instance wires the whole application.

TRANSACTIONS:
  WithTx simulates a transaction with snapshot + rollback: the mutex is
  held for the whole function, so the ledger's read-then-write of part
  stock is indivisible, and an error restores the pre-call state.
  DrainShift snapshots and clears the open collections under one lock
  hold, so no sale can land between the snapshot and the clear.

ORDERING:
  Lists that the contract says are newest-first (logs, sales, jobs,
  reports, notifications) are stored in insertion order and reversed on
  read. Parts are sorted by name for stable display.
*/
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/trotech/dealer-core/closing"
	"github.com/trotech/dealer-core/ledger"
	"github.com/trotech/dealer-core/notify"
	"github.com/trotech/dealer-core/sales"
	"github.com/trotech/dealer-core/staff"
	"github.com/trotech/dealer-core/workshop"
)

type Memory struct {
	mu sync.RWMutex

	parts map[string]ledger.Part
	logs  []ledger.LogEntry

	sales []sales.Sale
	jobs  []workshop.Job

	reports    []closing.DailyReport
	lastClosed ledger.Date

	notifications []notify.Notification

	accounts    []staff.Account
	technicians []staff.Technician
}

func New() *Memory {
	return &Memory{parts: make(map[string]ledger.Part)}
}

// =============================================================================
// LEDGER STORE
// =============================================================================

func (m *Memory) GetPart(_ context.Context, id string) (*ledger.Part, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getPartLocked(id)
}

func (m *Memory) getPartLocked(id string) (*ledger.Part, error) {
	p, ok := m.parts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *Memory) SavePart(_ context.Context, p ledger.Part) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parts[p.ID] = p
	return nil
}

func (m *Memory) DeletePart(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.parts, id)
	return nil
}

func (m *Memory) ListParts(_ context.Context) ([]ledger.Part, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listPartsLocked()
}

func (m *Memory) listPartsLocked() ([]ledger.Part, error) {
	out := make([]ledger.Part, 0, len(m.parts))
	for _, p := range m.parts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) AppendLog(_ context.Context, e ledger.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, e)
	return nil
}

func (m *Memory) ListLogs(_ context.Context) ([]ledger.LogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return reversed(m.logs), nil
}

func (m *Memory) ListLogsByPart(_ context.Context, partID string) ([]ledger.LogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ledger.LogEntry
	for i := len(m.logs) - 1; i >= 0; i-- {
		if m.logs[i].PartID == partID {
			out = append(out, m.logs[i])
		}
	}
	return out, nil
}

// =============================================================================
// TRANSACTIONS - snapshot + rollback under the store mutex
// =============================================================================

// WithTx executes fn holding the store lock. The ledger is the only
// caller, so only the collections reachable through its view (parts,
// logs) are snapshotted for rollback.
func (m *Memory) WithTx(_ context.Context, fn func(ledger.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshotLedger()
	if err := fn(&txView{parent: m}); err != nil {
		m.parts = snap.parts
		m.logs = snap.logs
		return err
	}
	return nil
}

type ledgerSnapshot struct {
	parts map[string]ledger.Part
	logs  []ledger.LogEntry
}

func (m *Memory) snapshotLedger() ledgerSnapshot {
	parts := make(map[string]ledger.Part, len(m.parts))
	for k, v := range m.parts {
		parts[k] = v
	}
	return ledgerSnapshot{
		parts: parts,
		logs:  append([]ledger.LogEntry{}, m.logs...),
	}
}

// txView is the unlocked view handed to WithTx functions. The parent's
// mutex is already held.
type txView struct {
	parent *Memory
}

func (tv *txView) GetPart(_ context.Context, id string) (*ledger.Part, error) {
	return tv.parent.getPartLocked(id)
}

func (tv *txView) SavePart(_ context.Context, p ledger.Part) error {
	tv.parent.parts[p.ID] = p
	return nil
}

func (tv *txView) DeletePart(_ context.Context, id string) error {
	delete(tv.parent.parts, id)
	return nil
}

func (tv *txView) ListParts(_ context.Context) ([]ledger.Part, error) {
	return tv.parent.listPartsLocked()
}

func (tv *txView) AppendLog(_ context.Context, e ledger.LogEntry) error {
	tv.parent.logs = append(tv.parent.logs, e)
	return nil
}

func (tv *txView) ListLogs(_ context.Context) ([]ledger.LogEntry, error) {
	return reversed(tv.parent.logs), nil
}

func (tv *txView) ListLogsByPart(_ context.Context, partID string) ([]ledger.LogEntry, error) {
	var out []ledger.LogEntry
	for i := len(tv.parent.logs) - 1; i >= 0; i-- {
		if tv.parent.logs[i].PartID == partID {
			out = append(out, tv.parent.logs[i])
		}
	}
	return out, nil
}

// =============================================================================
// SALES STORE
// =============================================================================

func (m *Memory) SaveSale(_ context.Context, s sales.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sales {
		if m.sales[i].ID == s.ID {
			m.sales[i] = s
			return nil
		}
	}
	m.sales = append(m.sales, s)
	return nil
}

func (m *Memory) ListSales(_ context.Context) ([]sales.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return reversed(m.sales), nil
}

func (m *Memory) GetSale(_ context.Context, id string) (*sales.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.sales {
		if m.sales[i].ID == id {
			s := m.sales[i]
			return &s, nil
		}
	}
	return nil, nil
}

// =============================================================================
// WORKSHOP STORE
// =============================================================================

func (m *Memory) SaveJob(_ context.Context, j workshop.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.jobs {
		if m.jobs[i].ID == j.ID {
			m.jobs[i] = j
			return nil
		}
	}
	m.jobs = append(m.jobs, j)
	return nil
}

func (m *Memory) GetJob(_ context.Context, id string) (*workshop.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.jobs {
		if m.jobs[i].ID == id {
			j := m.jobs[i]
			return &j, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListJobs(_ context.Context) ([]workshop.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return reversed(m.jobs), nil
}

// =============================================================================
// CLOSING STORE
// =============================================================================

func (m *Memory) LastClosedDate(_ context.Context) (ledger.Date, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastClosed, nil
}

func (m *Memory) ListReports(_ context.Context) ([]closing.DailyReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return reversed(m.reports), nil
}

// DrainShift applies the close-of-day as one unit under the store lock:
// snapshot the open sales and jobs, append the report built from them,
// clear both collections, advance the marker. A sale saved while the
// lock is held waits and belongs to the next shift.
func (m *Memory) DrainShift(_ context.Context, marker ledger.Date, build func([]sales.Sale, []workshop.Job) closing.DailyReport) (closing.DailyReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	report := build(reversed(m.sales), reversed(m.jobs))
	m.reports = append(m.reports, report)
	m.sales = nil
	m.jobs = nil
	m.lastClosed = marker
	return report, nil
}

// =============================================================================
// NOTIFY STORE
// =============================================================================

func (m *Memory) SaveNotification(_ context.Context, n notify.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *Memory) ListNotifications(_ context.Context) ([]notify.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return reversed(m.notifications), nil
}

func (m *Memory) MarkAllNotificationsRead(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		m.notifications[i].Read = true
	}
	return nil
}

func (m *Memory) DeleteNotification(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		if m.notifications[i].ID == id {
			m.notifications = append(m.notifications[:i], m.notifications[i+1:]...)
			return nil
		}
	}
	return nil
}

// =============================================================================
// STAFF STORE
// =============================================================================

func (m *Memory) SaveAccount(_ context.Context, a staff.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.accounts {
		if m.accounts[i].ID == a.ID {
			m.accounts[i] = a
			return nil
		}
	}
	m.accounts = append(m.accounts, a)
	return nil
}

func (m *Memory) GetAccount(_ context.Context, id string) (*staff.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.accounts {
		if m.accounts[i].ID == id {
			a := m.accounts[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListAccounts(_ context.Context) ([]staff.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]staff.Account{}, m.accounts...), nil
}

func (m *Memory) DeleteAccount(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.accounts {
		if m.accounts[i].ID == id {
			m.accounts = append(m.accounts[:i], m.accounts[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *Memory) SaveTechnician(_ context.Context, t staff.Technician) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.technicians {
		if m.technicians[i].ID == t.ID {
			m.technicians[i] = t
			return nil
		}
	}
	m.technicians = append(m.technicians, t)
	return nil
}

func (m *Memory) ListTechnicians(_ context.Context) ([]staff.Technician, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]staff.Technician{}, m.technicians...), nil
}

func (m *Memory) DeleteTechnician(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.technicians {
		if m.technicians[i].ID == id {
			m.technicians = append(m.technicians[:i], m.technicians[i+1:]...)
			return nil
		}
	}
	return nil
}

// =============================================================================
// RESET - admin-gated demo data reset
// =============================================================================

// Reset drops every collection. Used by the admin data-reset endpoint and
// test fixtures.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parts = make(map[string]ledger.Part)
	m.logs = nil
	m.sales = nil
	m.jobs = nil
	m.reports = nil
	m.lastClosed = ledger.Date{}
	m.notifications = nil
	m.accounts = nil
	m.technicians = nil
	return nil
}

func reversed[T any](in []T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

// Interface conformance.
var (
	_ ledger.TxStore = (*Memory)(nil)
	_ sales.Store    = (*Memory)(nil)
	_ workshop.Store = (*Memory)(nil)
	_ closing.Store  = (*Memory)(nil)
	_ notify.Store   = (*Memory)(nil)
	_ staff.Store    = (*Memory)(nil)
)
