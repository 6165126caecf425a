package workorder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factory-erp/internal/storage"
)

func intPtr(v int) *int { return &v }

func scan(id int64, action, session, serial, employee string, ts time.Time, cycle *int) storage.WorkOrderScanEvent {
	return storage.WorkOrderScanEvent{
		ID:            id,
		WorkOrderID:   "WO-1",
		LineID:        "L1",
		ProductID:     "P1",
		SerialBarcode: serial,
		EmployeeID:    employee,
		Action:        action,
		Timestamp:     ts,
		SessionID:     session,
		CycleSeconds:  cycle,
	}
}

func TestSessionsRoundTrip(t *testing.T) {
	t0 := at(10, 8, 0, 0)
	t1 := t0.Add(90 * time.Second)
	cycle := ComputeEffectiveCycleSeconds(t0, t1, "", "", nil, 0)

	events := []storage.WorkOrderScanEvent{
		scan(1, storage.ScanIn, "s1", "SN-1", "", t0, nil),
		scan(2, storage.ScanOut, "s1", "SN-1", "", t1, intPtr(cycle)),
	}

	sessions := SessionsFromEvents(events)
	require.Len(t, sessions, 1)
	assert.Equal(t, storage.SessionClosed, sessions[0].Status)
	require.NotNil(t, sessions[0].OutAt)
	assert.Equal(t, t1, *sessions[0].OutAt)

	summary := SummaryFromSessions(sessions)
	assert.Equal(t, 1, summary.CompletedUnits)
	assert.Equal(t, 0, summary.InProgressUnits)
	assert.InDelta(t, t1.Sub(t0).Seconds(), summary.AvgCycleSeconds, 1e-9)
	require.NotNil(t, summary.LastScanAt)
	assert.Equal(t, t1, *summary.LastScanAt)
}

func TestSessionsFromEvents_OpenAndClosed(t *testing.T) {
	events := []storage.WorkOrderScanEvent{
		scan(4, storage.ScanIn, "s3", "SN-2", "E2", at(10, 9, 5, 0), nil),
		scan(1, storage.ScanIn, "s1", "SN-1", "E1", at(10, 8, 0, 0), nil),
		scan(3, storage.ScanIn, "s2", "SN-1", "E1", at(10, 9, 0, 0), nil),
		scan(2, storage.ScanOut, "s1", "SN-1", "E1", at(10, 8, 1, 0), intPtr(60)),
		// OUT без открытой сессии игнорируется
		scan(5, storage.ScanOut, "ghost", "SN-9", "E3", at(10, 9, 6, 0), intPtr(10)),
	}

	sessions := SessionsFromEvents(events)
	require.Len(t, sessions, 3)
	assert.Equal(t, []string{"s3", "s2", "s1"}, []string{sessions[0].SessionID, sessions[1].SessionID, sessions[2].SessionID})
	assert.Equal(t, storage.SessionOpen, sessions[0].Status)
	assert.Nil(t, sessions[0].OutAt)
	assert.Equal(t, storage.SessionClosed, sessions[2].Status)
	assert.Equal(t, 60, *sessions[2].CycleSeconds)

	summary := SummaryFromSessions(sessions)
	assert.Equal(t, 1, summary.CompletedUnits)
	assert.Equal(t, 2, summary.InProgressUnits)
	assert.Equal(t, 2, summary.ActiveWorkers)
	assert.Equal(t, 60.0, summary.AvgCycleSeconds)
	assert.Equal(t, at(10, 9, 5, 0), *summary.LastScanAt)
}

func TestSessionsFromEvents_DeterministicOnEqualTimestamps(t *testing.T) {
	ts := at(10, 8, 0, 0)
	a := []storage.WorkOrderScanEvent{
		scan(1, storage.ScanIn, "s1", "SN-1", "E1", ts, nil),
		scan(2, storage.ScanOut, "s1", "SN-1", "E1", ts, intPtr(0)),
		scan(3, storage.ScanIn, "s2", "SN-2", "", ts, nil),
	}
	b := []storage.WorkOrderScanEvent{a[2], a[1], a[0]}

	first := SessionsFromEvents(a)
	second := SessionsFromEvents(b)
	assert.Equal(t, first, second)

	require.Len(t, first, 2)
	// s1 закрыта: IN с меньшим ID идёт раньше OUT
	for _, s := range first {
		if s.SessionID == "s1" {
			assert.Equal(t, storage.SessionClosed, s.Status)
		}
	}
}

func TestSessionsFromEvents_DoesNotMutateInput(t *testing.T) {
	events := []storage.WorkOrderScanEvent{
		scan(2, storage.ScanOut, "s1", "SN-1", "", at(10, 8, 1, 0), intPtr(60)),
		scan(1, storage.ScanIn, "s1", "SN-1", "", at(10, 8, 0, 0), nil),
	}

	SessionsFromEvents(events)
	assert.Equal(t, int64(2), events[0].ID)
}

func TestSessionsFromEvents_RepeatedInOverwrites(t *testing.T) {
	events := []storage.WorkOrderScanEvent{
		scan(1, storage.ScanIn, "s1", "SN-1", "E1", at(10, 8, 0, 0), nil),
		scan(2, storage.ScanIn, "s1", "SN-1", "E2", at(10, 8, 5, 0), nil),
	}

	sessions := SessionsFromEvents(events)
	require.Len(t, sessions, 1)
	assert.Equal(t, "E2", sessions[0].EmployeeID)
	assert.Equal(t, at(10, 8, 5, 0), sessions[0].InAt)
}

func TestSummaryFromSessions_WorkerFallback(t *testing.T) {
	events := []storage.WorkOrderScanEvent{
		scan(1, storage.ScanIn, "s1", "SN-1", "", at(10, 8, 0, 0), nil),
		scan(2, storage.ScanIn, "s2", "SN-2", "", at(10, 8, 1, 0), nil),
		scan(3, storage.ScanIn, "s3", "SN-3", "", at(10, 8, 2, 0), nil),
		scan(4, storage.ScanOut, "s3", "SN-3", "", at(10, 8, 3, 0), intPtr(60)),
	}

	summary := SummaryFromSessions(SessionsFromEvents(events))
	assert.Equal(t, 2, summary.InProgressUnits)
	assert.Equal(t, 2, summary.ActiveWorkers)
}

func TestSummaryFromSessions_Empty(t *testing.T) {
	summary := SummaryFromSessions(nil)
	assert.Zero(t, summary.CompletedUnits)
	assert.Zero(t, summary.InProgressUnits)
	assert.Zero(t, summary.ActiveWorkers)
	assert.Zero(t, summary.AvgCycleSeconds)
	assert.Nil(t, summary.LastScanAt)
}
