package actuator

import (
	"path/filepath"
	"testing"

	"github.com/oracle/adaptivemmd/pkg/predictor"
	"github.com/oracle/adaptivemmd/pkg/system/procfs"
	"github.com/stretchr/testify/require"
)

func testPaths(t *testing.T) procfs.Paths {
	t.Helper()
	dir := t.TempDir()
	return procfs.Paths{
		WatermarkScale: filepath.Join(dir, "watermark_scale_factor"),
		NodeCompactFmt: filepath.Join(dir, "node%d-compact"),
	}
}

func TestCandidate_NoReclaimableMemory_NoWrite(t *testing.T) {
	s := State{TotalManaged: 100, TotalHuge: 100, CurrentWSF: 50, MaxWSF: 1000}
	wsf, write := Candidate(s)
	require.False(t, write)
	require.Equal(t, uint(50), wsf)
}

func TestCandidate_ScaleDown_RelaxesWhenHeadroomExists(t *testing.T) {
	s := State{
		TotalManaged: 10000, TotalHuge: 0,
		TotalFree: 9000, TotalCache: 1000,
		Low: 100, High: 200, Min: 50,
		CurrentWSF: 100, MaxWSF: 1000,
		Reclaim: false,
	}
	wsf, write := Candidate(s)
	require.True(t, write)
	require.Less(t, wsf, uint(100))
}

func TestCandidate_ScaleUp_WhenBelowHighWatermark(t *testing.T) {
	s := State{
		TotalManaged: 10000, TotalHuge: 0,
		TotalFree: 50, TotalCache: 200,
		Low: 100, High: 200, Min: 50,
		CurrentWSF: 100, MaxWSF: 1000,
		Reclaim: true,
	}
	// fracFree = 5, full aggression (cache 200 > high-free 150) yields a
	// raw candidate of 990, which fails the safety envelope (newLow 545
	// against free+cache of 250); the retry at +10% of current (110)
	// clears it (newLow 105).
	wsf, write := Candidate(s)
	require.True(t, write)
	require.Equal(t, uint(110), wsf)
}

func TestScaleUp_FullAggression_IsAbsoluteTarget(t *testing.T) {
	s := State{TotalFree: 50, High: 200, TotalCache: 200, CurrentWSF: 100}
	require.Equal(t, uint(990), scaleUp(s, 5))
}

func TestCandidate_ClampedToMaxWSF(t *testing.T) {
	s := State{
		TotalManaged: 10000, TotalHuge: 0,
		TotalFree: 10, TotalCache: 10000,
		Low: 100, High: 200, Min: 50,
		CurrentWSF: 190, MaxWSF: 200,
		Reclaim: true,
	}
	wsf, write := Candidate(s)
	if write {
		require.LessOrEqual(t, wsf, uint(200))
	}
}

func TestCandidate_ClampedToFloor(t *testing.T) {
	s := State{
		TotalManaged: 10000, TotalHuge: 0,
		TotalFree: 9999, TotalCache: 0,
		Low: 100, High: 200, Min: 50,
		CurrentWSF: 11, MaxWSF: 1000,
		Reclaim: false,
	}
	wsf, write := Candidate(s)
	if write {
		require.GreaterOrEqual(t, wsf, uint(minWSF))
	}
}

func TestCandidate_IdenticalCandidate_NoWrite(t *testing.T) {
	s := State{
		TotalManaged: 10000, TotalHuge: 0,
		TotalFree: 500, TotalCache: 500,
		Low: 100, High: 200, Min: 50,
		CurrentWSF: 10, MaxWSF: 1000, // already at the floor
		Reclaim: false,
	}
	_, write := Candidate(s)
	require.False(t, write)
}

func TestMyWSF_RescalesByReclaimableFraction(t *testing.T) {
	require.Equal(t, uint(500), MyWSF(1000, 5000, 10000))
	require.Equal(t, uint(1000), MyWSF(1000, 10000, 10000))
	require.Equal(t, uint(1000), MyWSF(1000, 100, 0))
}

func TestActuator_ApplyWatermarkScale_Idempotent(t *testing.T) {
	a := New(testPaths(t), true)
	require.NoError(t, a.ApplyWatermarkScale(50))
	require.Equal(t, uint(50), a.lastWritten)
	require.NoError(t, a.ApplyWatermarkScale(50))
}

func TestActuator_Compact_EdgeTriggered(t *testing.T) {
	a := New(testPaths(t), true)
	require.NoError(t, a.Compact(0, predictor.SignalCompact))
	require.True(t, a.compacting[0])
	// second tick still wanting compaction must not re-fire (dry run can't
	// observe that directly, but the bookkeeping must still reflect "was").
	require.NoError(t, a.Compact(0, predictor.SignalCompact))
	require.True(t, a.compacting[0])

	require.NoError(t, a.Compact(0, 0))
	require.False(t, a.compacting[0])
}
