package bytescan

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFirstRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	pattern := []byte{0x48, 0x8B, 0x0D, 0x9A, 0x7C, 0x31}

	for range 50 {
		buf := make([]byte, 1+rng.IntN(3*PageSize))
		// bytes above 0x7F cannot start the planted pattern
		for i := range buf {
			buf[i] = 0x80 | byte(rng.IntN(0x80))
		}
		mem := NewMemory(buf)

		if len(buf) < len(pattern) {
			got, err := FindFirst(context.Background(), mem, "48 8B 0D 9A 7C 31")
			require.NoError(t, err)
			assert.Zero(t, got)
			continue
		}

		k := rng.IntN(len(buf) - len(pattern) + 1)
		copy(buf[k:], pattern)

		got, err := FindFirst(context.Background(), mem, "48 8B 0D 9A 7C 31", WithSliceSize(PageSize))
		require.NoError(t, err)
		assert.Equal(t, mem.Start()+Address(k), got)
	}
}

func TestFindFirstAbsent(t *testing.T) {
	got, err := FindFirst(context.Background(), NewMemory(scanCase), "12 34 56")
	require.NoError(t, err)
	assert.Zero(t, got)

	got, err = FindFirst(context.Background(), Memory{}, "12")
	require.NoError(t, err)
	assert.Zero(t, got)

	_, err = FindFirst(context.Background(), NewMemory(scanCase), "12 3")
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestFindAll(t *testing.T) {
	buf := make([]byte, PageSize*3)
	offsets := []int{0, 17, PageSize - 1, 2 * PageSize, len(buf) - 2}
	for _, off := range offsets {
		copy(buf[off:], []byte{0xE8, 0x01})
	}
	mem := NewMemory(buf)

	got, err := FindAll(context.Background(), mem, "E8 ?1", WithSliceSize(PageSize))
	require.NoError(t, err)

	want := make([]Address, len(offsets))
	for i, off := range offsets {
		want[i] = mem.Start() + Address(off)
	}
	assert.Equal(t, want, got)
}

func TestFindEach(t *testing.T) {
	buf := make([]byte, PageSize*2)
	copy(buf[10:], "key=1")
	copy(buf[PageSize-2:], "key=2")
	copy(buf[PageSize+100:], "key=3")
	mem := NewMemory(buf)
	pattern := StringToPattern("key=?", 0)

	var got []string
	err := FindEach(context.Background(), mem, pattern, func(m Match) bool {
		got = append(got, m.Content())
		return true
	}, WithSliceSize(PageSize))
	require.NoError(t, err)
	assert.Equal(t, []string{"key=1", "key=2", "key=3"}, got)

	got = got[:0]
	err = FindEach(context.Background(), mem, pattern, func(m Match) bool {
		got = append(got, m.Content())
		return len(got) < 2
	}, WithSliceSize(PageSize))
	require.NoError(t, err)
	assert.Equal(t, []string{"key=1", "key=2"}, got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = FindEach(ctx, mem, pattern, func(Match) bool { return true })
	assert.ErrorIs(t, err, context.Canceled)

	err = FindEach(context.Background(), mem, "zz", func(Match) bool { return true })
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestFindBatchFirstCache(t *testing.T) {
	run1 := make([]byte, 64)
	copy(run1[4:], []byte{0xAA, 0xBB})
	mem1 := NewMemory(run1)

	run2 := make([]byte, 64)
	copy(run2[8:], []byte{0xAA, 0xBB})
	copy(run2[32:], []byte{0xCC, 0xDD})
	mem2 := NewMemory(run2)

	specs := []PatternSpec{
		{UID: "A", Pattern: "AA BB"},
		{UID: "B", Pattern: "CC DD"},
		{UID: "B", Pattern: "CC ?? EE"},
	}
	cache := NewBatchResults()

	all, err := FindBatchFirst(context.Background(), mem1, specs, cache)
	require.NoError(t, err)
	assert.False(t, all)
	assert.Equal(t, mem1.Start()+4, cache.First("A"))
	assert.False(t, cache.Has("B"))

	all, err = FindBatchFirst(context.Background(), mem2, specs, cache)
	require.NoError(t, err)
	assert.True(t, all)
	assert.Equal(t, mem1.Start()+4, cache.First("A"))
	assert.Equal(t, mem2.Start()+32, cache.First("B"))
	assert.Len(t, cache.All(), 2)
}

func TestFindBatchFirstTransforms(t *testing.T) {
	buf := make([]byte, 32)
	copy(buf[3:], []byte{0xE8, 0x10, 0x00, 0x00, 0x00})
	mem := NewMemory(buf)

	cache := NewBatchResults()
	all, err := FindBatchFirst(context.Background(), mem, []PatternSpec{
		{UID: "call", Pattern: "E8 ?? ?? ?? ??", Transforms: []Transform{Relative(1, 5)}},
	}, cache)
	require.NoError(t, err)
	assert.True(t, all)
	assert.Equal(t, mem.Start()+3+5+0x10, cache.First("call"))
}

func TestFindBatchValidation(t *testing.T) {
	mem := NewMemory(scanCase)

	_, err := FindBatchFirst(context.Background(), mem, []PatternSpec{
		{UID: "ok", Pattern: "AA"},
		{UID: "bad", Pattern: "A"},
	}, nil)
	assert.ErrorIs(t, err, ErrInvalidPattern)

	_, _, err = FindBatch(context.Background(), mem, []PatternSpec{{Pattern: "AA"}})
	assert.Error(t, err)
}

func TestFindBatch(t *testing.T) {
	mem := NewMemory(scanCase)

	results, all, err := FindBatch(context.Background(), mem, []PatternSpec{
		{UID: "odd", Pattern: "?1"},
		{UID: "odd", Pattern: "?3"},
		{UID: "ff", Pattern: "FF"},
	}, WithWorkers(0))
	require.NoError(t, err)
	assert.True(t, all)
	assert.ElementsMatch(t, []Address{mem.Start() + 3, mem.Start() + 7}, results["odd"])
	assert.Equal(t, []Address{mem.Start() + 10}, results["ff"])

	results, all, err = FindBatch(context.Background(), mem, []PatternSpec{
		{UID: "ff", Pattern: "FF"},
		{UID: "none", Pattern: "01 02"},
	})
	require.NoError(t, err)
	assert.False(t, all)
	assert.Empty(t, results["none"])
}
