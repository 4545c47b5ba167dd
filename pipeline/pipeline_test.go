// File: pipeline/pipeline_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pipeline

import (
	"sync"
	"testing"
	"time"

	"github.com/momentics/hioload-ran/api"
	"github.com/momentics/hioload-ran/fake"
	"github.com/momentics/hioload-ran/grid"
	"github.com/momentics/hioload-ran/internal/concurrency"
	"github.com/momentics/hioload-ran/mapper"
	"github.com/momentics/hioload-ran/pattern"
	"github.com/momentics/hioload-ran/pool"
	"github.com/momentics/hioload-ran/precoding"
	"github.com/momentics/hioload-ran/rebuffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPorts = 2
	testPRB   = 5
	testSubc  = testPRB * api.NRE
)

type durationCounter struct {
	mu    sync.Mutex
	count int
}

func (d *durationCounter) OnSlotProcessed(time.Duration) {
	d.mu.Lock()
	d.count++
	d.mu.Unlock()
}

func newGrids(t *testing.T, n int) []api.ResourceGrid {
	t.Helper()
	grids := make([]api.ResourceGrid, n)
	for i := range grids {
		g, err := grid.New(testPorts, api.MaxNSymbPerSlot, testSubc)
		require.NoError(t, err)
		grids[i] = g
	}
	return grids
}

func slotCtx(sector, slot int) api.ResourceGridContext {
	return api.ResourceGridContext{Slot: api.SlotPoint{Numerology: 1, Slot: slot}, Sector: sector}
}

// rampSymbols holds small integers, exact in storage precision.
func rampSymbols(n int) []complex64 {
	out := make([]complex64, n)
	for i := range out {
		out[i] = complex(float32(i+1), -float32(i+1))
	}
	return out
}

func TestProcessRunsJobsOnZeroedGrid(t *testing.T) {
	grids := newGrids(t, 2)
	rp, err := pool.NewRingGridPool(1, 2, grids)
	require.NoError(t, err)

	// Leave data from an earlier use of the slot-0 grid on port 1.
	grids[0].Writer().PutContiguous(1, 7, 0, rampSymbols(testSubc))

	gw := fake.NewGateway()
	obs := &durationCounter{}
	proc := NewSlotProcessor(rp, gw, WithSlotObserver(obs))

	identity, err := precoding.NewWidebandIdentity(1)
	require.NoError(t, err)

	dmrs := rampSymbols(testPRB * 6)
	data := rampSymbols(api.NRE)
	jobs := []Job{
		PatternJob{
			Input:     rebuffer.FromSlices(dmrs),
			Pattern:   pattern.NewRePattern(0, testPRB, pattern.DMRSType1CDM0, 2, 3),
			Precoding: identity,
		},
		SymbolJob{
			Buffer: mapper.NewSliceSymbolBuffer(data, mapper.DefaultBlockSize),
			Allocation: pattern.AllocationConfiguration{
				StartSymbol: 4,
				NofSymbols:  1,
				Freq:        pattern.NewContiguousAllocation(0, 1),
			},
			Precoding: identity,
		},
	}
	require.NoError(t, proc.Process(slotCtx(0, 0), jobs...))

	sent := gw.Sent()
	require.Len(t, sent, 1)
	s := sent[0]
	assert.Equal(t, slotCtx(0, 0), s.Ctx)
	assert.Equal(t, []bool{false, true}, s.Empty)
	assert.Equal(t, make([]complex64, testSubc), s.Planes[1][7])

	for k := 0; k < testSubc; k++ {
		want := complex64(0)
		if k%2 == 0 {
			want = dmrs[k/2]
		}
		assert.Equal(t, want, s.Planes[0][2][k], "dmrs k=%d", k)
	}
	assert.Equal(t, data, s.Planes[0][4][:api.NRE])
	assert.Equal(t, make([]complex64, testSubc-api.NRE), s.Planes[0][4][api.NRE:])
	assert.Equal(t, 1, obs.count)
}

func TestProcessUsesRingEntryOfSlot(t *testing.T) {
	grids := newGrids(t, 2)
	rp, err := pool.NewRingGridPool(1, 2, grids)
	require.NoError(t, err)
	proc := NewSlotProcessor(rp, fake.NewGateway())

	var seen []api.ResourceGridWriter
	record := JobFunc(func(_ mapper.ResourceGridMapper, w api.ResourceGridWriter) {
		seen = append(seen, w)
	})
	for slot := 0; slot < 3; slot++ {
		require.NoError(t, proc.Process(slotCtx(0, slot), record))
	}
	require.Len(t, seen, 3)
	assert.Same(t, grids[0].Writer(), seen[0])
	assert.Same(t, grids[1].Writer(), seen[1])
	assert.Same(t, grids[0].Writer(), seen[2])
}

func TestProcessFailsWhenGridBusy(t *testing.T) {
	sp, err := pool.NewSharedGridPool(1, 1, newGrids(t, 1))
	require.NoError(t, err)
	gw := fake.NewGateway()
	proc := NewSlotProcessor(sp, gw)

	held, ok := sp.Allocate(slotCtx(0, 0))
	require.True(t, ok)

	err = proc.Process(slotCtx(0, 1))
	require.ErrorIs(t, err, api.ErrResourceExhausted)
	assert.Empty(t, gw.Sent())

	held.Release()
	require.NoError(t, proc.Process(slotCtx(0, 1)))
	assert.Len(t, gw.Sent(), 1)
	assert.Equal(t, 0, sp.InUse())
}

func TestProcessReleasesGridOnPanic(t *testing.T) {
	sp, err := pool.NewSharedGridPool(1, 1, newGrids(t, 1))
	require.NoError(t, err)
	proc := NewSlotProcessor(sp, fake.NewGateway())

	boom := JobFunc(func(mapper.ResourceGridMapper, api.ResourceGridWriter) { panic("boom") })
	assert.Panics(t, func() { _ = proc.Process(slotCtx(0, 0), boom) })
	assert.Equal(t, 0, sp.InUse())
}

func TestSymbolJobRejectsSkipBeyondAllocation(t *testing.T) {
	sp, err := pool.NewSharedGridPool(1, 1, newGrids(t, 1))
	require.NoError(t, err)
	gw := fake.NewGateway()
	proc := NewSlotProcessor(sp, gw)
	identity, err := precoding.NewWidebandIdentity(1)
	require.NoError(t, err)

	job := SymbolJob{
		Buffer: mapper.NewSliceSymbolBuffer(rampSymbols(api.NRE), mapper.DefaultBlockSize),
		Allocation: pattern.AllocationConfiguration{
			StartSymbol: 2,
			NofSymbols:  2,
			Freq:        pattern.NewContiguousAllocation(0, 1),
		},
		Reserved:  pattern.NewRePatternList(pattern.NewRePattern(0, testPRB, pattern.DMRSType1CDM0, 2, 3)),
		Precoding: identity,
	}
	assert.Equal(t, 2*api.NRE-6, job.NofRE())

	job.RESkip = job.NofRE() + 1
	defer func() {
		r := recover()
		require.NotNil(t, r)
		e, ok := r.(*api.Error)
		require.True(t, ok, "panic value %T", r)
		assert.Equal(t, api.ErrCodeContractViolation, e.Code)
		assert.Empty(t, gw.Sent())
		assert.Equal(t, 0, sp.InUse())
	}()
	_ = proc.Process(slotCtx(0, 0), job)
}

func TestDispatcherRunsSectorsInParallel(t *testing.T) {
	const nofSectors = 3
	const nofSlots = 4
	rp, err := pool.NewRingGridPool(nofSectors, nofSlots, newGrids(t, nofSectors*nofSlots))
	require.NoError(t, err)
	gw := fake.NewGateway()
	proc := NewSlotProcessor(rp, gw)

	exec := concurrency.NewExecutor(2)
	defer exec.Close()
	d, err := NewSectorDispatcher(proc, exec, nofSectors)
	require.NoError(t, err)

	for slot := 0; slot < nofSlots; slot++ {
		for sector := 0; sector < nofSectors; sector++ {
			value := complex(float32(sector+1), float32(slot))
			job := JobFunc(func(_ mapper.ResourceGridMapper, w api.ResourceGridWriter) {
				w.PutContiguous(0, 0, 0, []complex64{value})
			})
			require.NoError(t, d.Dispatch(slotCtx(sector, slot), job))
		}
	}
	d.Wait()

	assert.Equal(t, uint64(nofSectors*nofSlots), d.Processed())
	assert.Zero(t, d.Failed())
	sent := gw.Sent()
	require.Len(t, sent, nofSectors*nofSlots)
	for _, s := range sent {
		want := complex(float32(s.Ctx.Sector+1), float32(s.Ctx.Slot.Slot))
		assert.Equal(t, want, s.Planes[0][0][0], "%s", s.Ctx)
	}
}

func TestDispatcherCountsFailedSlots(t *testing.T) {
	sp, err := pool.NewSharedGridPool(1, 1, newGrids(t, 1))
	require.NoError(t, err)
	proc := NewSlotProcessor(sp, fake.NewGateway())
	exec := concurrency.NewExecutor(1)
	defer exec.Close()
	d, err := NewSectorDispatcher(proc, exec, 1)
	require.NoError(t, err)

	held, ok := sp.Allocate(slotCtx(0, 0))
	require.True(t, ok)
	require.NoError(t, d.Dispatch(slotCtx(0, 1)))
	d.Wait()
	held.Release()

	assert.Equal(t, uint64(1), d.Failed())
	assert.Zero(t, d.Processed())
}

func TestDispatcherValidation(t *testing.T) {
	rp, err := pool.NewRingGridPool(1, 1, newGrids(t, 1))
	require.NoError(t, err)
	proc := NewSlotProcessor(rp, fake.NewGateway())
	exec := concurrency.NewExecutor(1)

	_, err = NewSectorDispatcher(nil, exec, 1)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	_, err = NewSectorDispatcher(proc, exec, 0)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)

	d, err := NewSectorDispatcher(proc, exec, 1)
	require.NoError(t, err)
	assert.ErrorIs(t, d.Dispatch(slotCtx(1, 0)), api.ErrInvalidArgument)

	exec.Close()
	assert.ErrorIs(t, d.Dispatch(slotCtx(0, 0)), api.ErrExecutorClosed)
	d.Wait()
}
