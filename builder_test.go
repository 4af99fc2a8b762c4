package bytescan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderDefaults(t *testing.T) {
	mem := MemoryAt(0x1000, make([]byte, 0x100))
	state := NewState(mem)

	d, err := state.PatternBuilder().SetPattern("AA BB").Build()
	require.NoError(t, err)
	assert.Equal(t, "AA BB", d.UID())
	assert.Equal(t, Slice{Start: 0x1000, End: 0x1100}, d.Range())
	assert.Equal(t, ScanAll, d.Shared().Mode())
	assert.Same(t, state.Result("AA BB"), d.Shared())

	d, err = state.PatternBuilder().SetPatternRaw([]byte{0xAA, 0xBB, 0xCC}).SetMask("x?x").Build()
	require.NoError(t, err)
	assert.Equal(t, "AA ?? CC", d.UID())

	d, err = state.PatternBuilder().SetPatternRaw([]byte{0x01, 0x02}).Build()
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0}, d.Pattern().Mask)
}

func TestBuilderRangeClamp(t *testing.T) {
	mem := MemoryAt(0x1000, make([]byte, 0x100))
	state := NewState(mem)

	d, err := state.PatternBuilder().
		SetPattern("AA").
		SetScanStart(0x10).
		SetScanEnd(0xFFFFFF).
		Build()
	require.NoError(t, err)
	assert.Equal(t, Slice{Start: 0x1000, End: 0x1100}, d.Range())

	d, err = state.PatternBuilder().
		SetPattern("AA").
		SetScanStart(0x1010).
		SetScanEnd(0x1020).
		Build()
	require.NoError(t, err)
	assert.Equal(t, Slice{Start: 0x1010, End: 0x1020}, d.Range())
	assert.Equal(t, Address(0x1010), d.LastPosition())
	assert.Equal(t, Slice{Start: 0x1010, End: 0x1020}, d.CurrentSlice())
}

func TestBuilderClone(t *testing.T) {
	state := NewState(MemoryAt(0x1000, make([]byte, 0x10)))
	base := state.PatternBuilder().SetUID("u").AddTransform(Offset(1))

	a := base.Clone().AddTransform(Offset(2)).SetPattern("01")
	b := base.Clone().SetPattern("02")

	da, err := a.Build()
	require.NoError(t, err)
	db, err := b.Build()
	require.NoError(t, err)

	assert.Len(t, da.transforms, 2)
	assert.Len(t, db.transforms, 1)
	assert.Len(t, base.transforms, 1)
	assert.Same(t, da.Shared(), db.Shared())
}

func TestBuilderFirstRegistrationWins(t *testing.T) {
	state := NewState(MemoryAt(0x1000, make([]byte, 0x10)))

	first, err := state.PatternBuilder().SetUID("u").SetPattern("01").StopOnFirstMatch().Build()
	require.NoError(t, err)
	second, err := state.PatternBuilder().SetUID("u").SetPattern("02").SetScanMode(ScanAll).Build()
	require.NoError(t, err)

	assert.Equal(t, ScanFirst, first.Shared().Mode())
	assert.Equal(t, ScanFirst, second.Shared().Mode())
}

func TestBuilderWithoutState(t *testing.T) {
	mem := NewMemory([]byte{0x00, 0x41, 0x61})
	d, err := (&Builder{}).
		SetMemory(mem).
		SetPattern("41").
		SetIgnoreCase(true).
		Build()
	require.NoError(t, err)

	assert.False(t, d.Step())
	assert.Equal(t, []Address{mem.Start() + 1, mem.Start() + 2}, d.Shared().All())
}

func TestStatePendingAndUIDs(t *testing.T) {
	state := NewState(MemoryAt(0x1000, make([]byte, 0x10)))
	require.NoError(t, state.Add(state.PatternBuilder().SetUID("b").SetPattern("01")))
	require.NoError(t, state.Add(state.PatternBuilder().SetUID("a").SetPattern("02")))
	require.NoError(t, state.Add(state.PatternBuilder().SetUID("b").SetPattern("03")))

	assert.Equal(t, []string{"b", "a"}, state.UIDs())
	assert.Len(t, state.Pending(), 3)
	assert.Equal(t, MemoryAt(0x1000, make([]byte, 0x10)), state.Memory())
	assert.NotNil(t, state.Logger())
}
