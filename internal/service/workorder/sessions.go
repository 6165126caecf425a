package workorder

import (
	"sort"
	"time"

	"factory-erp/internal/storage"
)

// SessionsFromEvents восстанавливает сессии IN/OUT из полного журнала.
// События с одинаковым временем упорядочиваются по ID, затем IN раньше OUT,
// так что результат детерминирован. Сессии отдаются от новых к старым.
func SessionsFromEvents(events []storage.WorkOrderScanEvent) []storage.WorkOrderScanSession {
	sorted := make([]storage.WorkOrderScanEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.Action == storage.ScanIn && b.Action != storage.ScanIn
	})

	bySession := make(map[string]*storage.WorkOrderScanSession)
	for _, ev := range sorted {
		switch ev.Action {
		case storage.ScanIn:
			bySession[ev.SessionID] = &storage.WorkOrderScanSession{
				SessionID:     ev.SessionID,
				WorkOrderID:   ev.WorkOrderID,
				LineID:        ev.LineID,
				ProductID:     ev.ProductID,
				SerialBarcode: ev.SerialBarcode,
				EmployeeID:    ev.EmployeeID,
				InAt:          ev.Timestamp,
				Status:        storage.SessionOpen,
			}
		case storage.ScanOut:
			s, ok := bySession[ev.SessionID]
			if !ok || s.Status != storage.SessionOpen {
				continue
			}
			outAt := ev.Timestamp
			s.OutAt = &outAt
			s.Status = storage.SessionClosed
			if ev.CycleSeconds != nil {
				cycle := *ev.CycleSeconds
				s.CycleSeconds = &cycle
			}
			if s.EmployeeID == "" {
				s.EmployeeID = ev.EmployeeID
			}
		}
	}

	sessions := make([]storage.WorkOrderScanSession, 0, len(bySession))
	for _, s := range bySession {
		sessions = append(sessions, *s)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].InAt.Equal(sessions[j].InAt) {
			return sessions[i].InAt.After(sessions[j].InAt)
		}
		return sessions[i].SessionID < sessions[j].SessionID
	})

	return sessions
}

func SummaryFromSessions(sessions []storage.WorkOrderScanSession) storage.WorkOrderLiveSummary {
	var (
		summary    storage.WorkOrderLiveSummary
		cycleTotal int
		lastScan   time.Time
	)

	workers := make(map[string]struct{})
	for _, s := range sessions {
		if s.EmployeeID != "" {
			workers[s.EmployeeID] = struct{}{}
		}

		scanAt := s.InAt
		if s.Status == storage.SessionClosed {
			summary.CompletedUnits++
			if s.CycleSeconds != nil {
				cycleTotal += *s.CycleSeconds
			}
			if s.OutAt != nil {
				scanAt = *s.OutAt
			}
		} else {
			summary.InProgressUnits++
		}

		if scanAt.After(lastScan) {
			lastScan = scanAt
		}
	}

	summary.ActiveWorkers = len(workers)
	if summary.ActiveWorkers == 0 {
		summary.ActiveWorkers = summary.InProgressUnits
	}

	if summary.CompletedUnits > 0 {
		summary.AvgCycleSeconds = float64(cycleTotal) / float64(summary.CompletedUnits)
	}

	if !lastScan.IsZero() {
		summary.LastScanAt = &lastScan
	}

	return summary
}
