package bytescan

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedResultAll(t *testing.T) {
	r := newSharedResult(ScanAll, nil)

	for _, v := range []Address{0x10, 0x20, 0x30} {
		appended, finished := r.TryAppend(v, nil)
		assert.True(t, appended)
		assert.False(t, finished)
	}

	assert.False(t, r.Finished())
	assert.True(t, r.Found())
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, Address(0x10), r.First())
	assert.Equal(t, []Address{0x10, 0x20, 0x30}, r.All())
	assert.Equal(t, ScanAll, r.Mode())
}

func TestSharedResultFirst(t *testing.T) {
	r := newSharedResult(ScanFirst, nil)

	appended, finished := r.TryAppend(0x10, nil)
	assert.True(t, appended)
	assert.True(t, finished)

	appended, finished = r.TryAppend(0x20, nil)
	assert.False(t, appended)
	assert.True(t, finished)

	assert.Equal(t, []Address{0x10}, r.All())

	r.Reset()
	assert.False(t, r.Finished())
	assert.False(t, r.Found())
	assert.Zero(t, r.First())

	appended, _ = r.TryAppend(0x30, nil)
	assert.True(t, appended)
	assert.Equal(t, Address(0x30), r.First())
}

func TestSharedResultFoundBy(t *testing.T) {
	mem := NewMemory(make([]byte, 16))
	raw, err := (&Builder{mem: mem}).SetPatternRaw([]byte{0xAA, 0x00, 0xCC}).SetMask("x?x").Build()
	require.NoError(t, err)
	text, err := (&Builder{mem: mem}).SetPattern("DE AD").Build()
	require.NoError(t, err)

	r := newSharedResult(ScanAll, nil)
	_, ok := r.FoundBy()
	assert.False(t, ok)

	r.TryAppend(0x10, nil)
	_, ok = r.FoundBy()
	assert.False(t, ok)

	r.TryAppend(0x20, raw)
	r.TryAppend(0x30, text)
	got, ok := r.FoundBy()
	assert.True(t, ok)
	assert.Equal(t, "AA ?? CC", got)
	assert.True(t, r.FoundByPattern("AA ?? CC"))
	assert.False(t, r.FoundByPattern("DE AD"))

	r.Reset()
	_, ok = r.FoundBy()
	assert.False(t, ok)

	var empty *SharedResult
	assert.False(t, empty.FoundByPattern(""))
}

func TestSharedResultFirstRace(t *testing.T) {
	r := newSharedResult(ScanFirst, nil)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if appended, _ := r.TryAppend(Address(i + 1), nil); appended {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, won)
	assert.Equal(t, 1, r.Len())
	assert.True(t, r.Finished())
}

func TestSharedResultNil(t *testing.T) {
	var r *SharedResult

	assert.False(t, r.Finished())
	assert.False(t, r.Found())
	assert.Zero(t, r.First())
	assert.Nil(t, r.All())
	assert.Zero(t, r.Len())
	assert.Zero(t, r.Dropped())
	assert.Equal(t, ScanAll, r.Mode())
	assert.NotPanics(t, r.Reset)
}

func TestBoundedStore(t *testing.T) {
	r := newSharedResult(ScanAll, NewResultStore(2))

	for _, v := range []Address{1, 2, 3, 4} {
		r.TryAppend(v, nil)
	}
	assert.Equal(t, []Address{1, 2}, r.All())
	assert.Equal(t, 2, r.Dropped())

	r.Reset()
	assert.Zero(t, r.Dropped())
	assert.Zero(t, r.Len())
}

func TestResultStore(t *testing.T) {
	for _, capacity := range []int{0, 8} {
		s := NewResultStore(capacity)
		require.True(t, s.Append(7))
		require.True(t, s.Append(9))
		assert.Equal(t, 2, s.Len())
		assert.Equal(t, Address(9), s.At(1))

		snap := s.Snapshot()
		snap[0] = 100
		assert.Equal(t, Address(7), s.At(0))
	}
}

func TestScanModeString(t *testing.T) {
	assert.Equal(t, "all", ScanAll.String())
	assert.Equal(t, "first", ScanFirst.String())
	assert.Equal(t, "unknown", ScanMode(9).String())
}
