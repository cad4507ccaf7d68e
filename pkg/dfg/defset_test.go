package dfg

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func setOf(indices ...int) DefSet {
	var s DefSet
	for _, i := range indices {
		s.Add(i)
	}
	return s
}

func TestDefSetOperations(t *testing.T) {
	var empty DefSet
	assert.Equal(t, 0, empty.Len())
	assert.False(t, empty.Has(0))
	assert.Equal(t, []string{}, empty.IDs())
	assert.Equal(t, "∅", empty.String())

	a := setOf(0, 2)
	b := setOf(2, 70)

	assert.Equal(t, []string{"D1", "D3", "D71"}, a.Union(b).IDs())
	assert.Equal(t, []string{"D1"}, a.Difference(b).IDs())
	assert.Equal(t, "{D1, D3}", a.String())
	assert.True(t, setOf(2).IsSubset(a))
	assert.False(t, b.IsSubset(a))

	// operations never mutate their operands
	assert.Equal(t, []int{0, 2}, a.Indices())
	assert.Equal(t, []int{2, 70}, b.Indices())
}

func TestDefSetEqualIgnoresCapacity(t *testing.T) {
	small := setOf(1)
	large := setOf(1, 200).Difference(setOf(200))

	assert.True(t, small.Equal(large))
	assert.True(t, large.Equal(small))
	assert.False(t, small.Equal(setOf(1, 2)))

	var zero DefSet
	assert.True(t, zero.Equal(setOf(5).Difference(setOf(5))))
}

func TestDefSetCloneIsIndependent(t *testing.T) {
	a := setOf(3)
	c := a.Clone()
	c.Add(4)

	assert.False(t, a.Has(4))
	assert.True(t, c.Has(4))
	assert.Equal(t, 0, DefSet{}.Clone().Len())
}

func TestDefSetEncoding(t *testing.T) {
	s := setOf(0, 4)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["D1","D5"]`, string(data))

	var fromJSON DefSet
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.True(t, s.Equal(fromJSON))

	assert.Error(t, json.Unmarshal([]byte(`["X1"]`), &fromJSON))

	packed, err := msgpack.Marshal(&s)
	require.NoError(t, err)
	var fromMsgpack DefSet
	require.NoError(t, msgpack.Unmarshal(packed, &fromMsgpack))
	assert.True(t, s.Equal(fromMsgpack))
}
