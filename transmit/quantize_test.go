package transmit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func Test_Int8Samples(t *testing.T) {
	out := Int8Samples([]float32{0, 1, -1, 0.5, -0.5})

	require.Len(t, out, 5)
	assert.Equal(t, int8(0), int8(out[0]))
	assert.Equal(t, int8(127), int8(out[1]))
	assert.Equal(t, int8(-127), int8(out[2]))
	assert.Equal(t, int8(63), int8(out[3]))
	assert.Equal(t, int8(-63), int8(out[4]))
}

func Test_Int8Samples_StaysInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.SliceOf(rapid.Float32Range(-1, 1)).Draw(t, "in")

		out := Int8Samples(in)
		assert.Len(t, out, len(in))
		for i, b := range out {
			assert.LessOrEqualf(t, int8(b), int8(127), "sample %d", i)
			assert.GreaterOrEqualf(t, int8(b), int8(-127), "sample %d", i)
		}
	})
}

func Test_PWMSamples(t *testing.T) {
	out := PWMSamples([]float32{0, 1, -1, 0.001, -0.001})
	assert.Equal(t, []byte{1, 1, 0, 1, 0}, out)
}
