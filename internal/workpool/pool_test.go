package workpool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPool_TaskExecution(t *testing.T) {
	p := NewPool(2)
	p.Start()

	var called int32
	p.Submit(func() { atomic.AddInt32(&called, 1) })
	p.Submit(func() { atomic.AddInt32(&called, 1) })

	p.Close()
	require.Equal(t, int32(2), atomic.LoadInt32(&called))
}

func TestPool_CloseWaitsForLongTask(t *testing.T) {
	p := NewPool(1)
	p.Start()

	var done int32
	p.Submit(func() {
		time.Sleep(50 * time.Millisecond)
		atomic.StoreInt32(&done, 1)
	})

	p.Close()
	require.Equal(t, int32(1), atomic.LoadInt32(&done))
}

func TestPool_SubmitAfterClosePanics(t *testing.T) {
	p := NewPool(1)
	p.Start()
	p.Close()

	require.Panics(t, func() { p.Submit(func() {}) })
}

func TestPool_NonPositiveWorkersDefaultsToOne(t *testing.T) {
	p := NewPool(0)
	require.Equal(t, 1, p.numWorkers)
}

func TestForEach_VisitsEveryIndexOnce(t *testing.T) {
	for _, workers := range []int{0, 1, 3, 8, 100} {
		const n = 37
		var hits [n]int32
		ForEach(n, workers, func(i int) {
			atomic.AddInt32(&hits[i], 1)
		})
		for i := range hits {
			require.Equal(t, int32(1), hits[i], "workers=%d index=%d", workers, i)
		}
	}
}

func TestForEach_EmptyRange(t *testing.T) {
	called := false
	ForEach(0, 4, func(int) { called = true })
	require.False(t, called)
}
