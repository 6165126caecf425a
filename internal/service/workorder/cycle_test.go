package workorder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"factory-erp/internal/storage"
)

func at(day, hour, min, sec int) time.Time {
	return time.Date(2024, 5, day, hour, min, sec, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestComputeEffectiveCycleSeconds_ZeroElapsed(t *testing.T) {
	in := at(10, 8, 0, 0)

	assert.Equal(t, 0, ComputeEffectiveCycleSeconds(in, in, "", "", nil, 0))
	assert.Equal(t, 5, ComputeEffectiveCycleSeconds(in, in, "", "", nil, 5))
	assert.Equal(t, 1, ComputeEffectiveCycleSeconds(in, in.Add(-time.Minute), "", "", nil, 1))
}

func TestComputeEffectiveCycleSeconds_NoOverlap(t *testing.T) {
	in := at(10, 8, 0, 0)
	out := in.Add(45*time.Second + 900*time.Millisecond)

	// дробная секунда отбрасывается
	assert.Equal(t, 45, ComputeEffectiveCycleSeconds(in, out, "", "", nil, 0))
}

func TestComputeEffectiveCycleSeconds_FullDay(t *testing.T) {
	in := at(10, 0, 0, 0)
	out := at(11, 0, 0, 0)

	assert.Equal(t, 86400-1800, ComputeEffectiveCycleSeconds(in, out, "12:00", "12:30", nil, 0))
}

func TestComputeEffectiveCycleSeconds_SpansTwoBreaks(t *testing.T) {
	in := at(10, 8, 0, 0)
	out := at(11, 18, 0, 0)

	assert.Equal(t, 34*3600-2*1800, ComputeEffectiveCycleSeconds(in, out, "", "", nil, 0))
}

func TestComputeEffectiveCycleSeconds_PauseMergedWithBreak(t *testing.T) {
	in := at(10, 11, 0, 0)
	out := at(10, 13, 0, 0)
	pauses := []storage.WorkOrderPauseWindow{
		{StartAt: at(10, 12, 15, 0), EndAt: ptr(at(10, 12, 45, 0)), Reason: "поломка"},
	}

	// перерыв 12:00-12:30 и пауза 12:15-12:45 дают один интервал 45 минут
	assert.Equal(t, 75*60, ComputeEffectiveCycleSeconds(in, out, "", "", pauses, 0))
}

func TestComputeEffectiveCycleSeconds_OpenPauseRunsToOut(t *testing.T) {
	in := at(10, 9, 0, 0)
	out := at(10, 10, 0, 0)
	pauses := []storage.WorkOrderPauseWindow{
		{StartAt: at(10, 9, 30, 0)},
		{StartAt: at(10, 7, 0, 0), EndAt: ptr(at(10, 7, 30, 0))},
	}

	assert.Equal(t, 1800, ComputeEffectiveCycleSeconds(in, out, "", "", pauses, 0))
}

func TestComputeEffectiveCycleSeconds_InsideBreakUsesMinimum(t *testing.T) {
	in := at(10, 12, 5, 0)
	out := at(10, 12, 20, 0)

	assert.Equal(t, 1, ComputeEffectiveCycleSeconds(in, out, "", "", nil, 1))
	assert.Equal(t, 0, ComputeEffectiveCycleSeconds(in, out, "", "", nil, 0))
}

func TestComputeEffectiveCycleSeconds_CustomAndInvalidBreaks(t *testing.T) {
	in := at(10, 11, 0, 0)
	out := at(10, 15, 0, 0)

	assert.Equal(t, 3*3600, ComputeEffectiveCycleSeconds(in, out, "13:00", "14:00", nil, 0))
	assert.Equal(t, 4*3600, ComputeEffectiveCycleSeconds(in, out, "25:99", "26:00", nil, 0))
	// конец раньше начала: перерыв не учитывается
	assert.Equal(t, 4*3600, ComputeEffectiveCycleSeconds(in, out, "14:00", "13:00", nil, 0))
}

func TestComputeEffectiveCycleSeconds_UsesSessionTimezone(t *testing.T) {
	msk := time.FixedZone("MSK", 3*3600)
	in := time.Date(2024, 5, 10, 11, 0, 0, 0, msk)
	out := time.Date(2024, 5, 10, 13, 0, 0, 0, msk)

	assert.Equal(t, 2*3600-1800, ComputeEffectiveCycleSeconds(in, out, "", "", nil, 0))
	// те же моменты, но в UTC перерыв 12:00 UTC уже после out
	assert.Equal(t, 2*3600, ComputeEffectiveCycleSeconds(in.UTC(), out.UTC(), "", "", nil, 0))
}
