package j2497

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func assertNormalized(t *testing.T, wave []float32) {
	t.Helper()
	for i, s := range wave {
		require.LessOrEqualf(t, s, float32(1), "sample %d out of range", i)
		require.GreaterOrEqualf(t, s, float32(-1), "sample %d out of range", i)
	}
}

func Test_SampleCount(t *testing.T) {
	assert.Equal(t, 100, SampleCount(SymbolTimeUS, 1e6))
	assert.Equal(t, 80, SampleCount(SymbolTimeUS, 800e3))
	assert.Equal(t, 1000, SampleCount(SymbolTimeUS, 1e7))
	assert.Equal(t, 0, SampleCount(0, 1e6))
}

func Test_ChirpSymbol(t *testing.T) {
	symbol := ChirpSymbol(1e6)

	require.Len(t, symbol, 100)
	assertNormalized(t, symbol)
	// -90 degree initial phase puts the first sample at a zero crossing
	assert.InDelta(t, 0, symbol[0], 1e-6)

	assert.Equal(t, symbol, ChirpSymbol(1e6), "symbol synthesis must be deterministic")
}

func Test_ChirpSymbol_PadsToSymbolTime(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rate := rapid.Float64Range(800e3, 1e7).Draw(t, "rate")

		symbol := ChirpSymbol(rate)
		assert.Len(t, symbol, SampleCount(SymbolTimeUS, rate))
		symbol = ChirpSymbolAlt(rate)
		assert.Len(t, symbol, SampleCount(SymbolTimeUS, rate))
	})
}

func Test_ConstantCarrier(t *testing.T) {
	const freq = 376.379e3
	carrier := ConstantCarrier(1e6, 1000, freq)

	require.Len(t, carrier, 1000)
	assertNormalized(t, carrier)

	// samples lie on sin(2*pi*f*t) with t spread over the duration
	dur := 1000.0 / 1e6
	for _, i := range []int{0, 1, 500, 999} {
		ti := dur * float64(i) / 999
		assert.InDelta(t, math.Sin(2*math.Pi*freq*ti), float64(carrier[i]), 1e-5)
	}

	assert.Empty(t, ConstantCarrier(1e6, 0, freq))
}

func Test_PayloadWave(t *testing.T) {
	symbol := ChirpSymbol(1e6)

	one := PayloadWave([]bool{true}, 1e6)
	assert.Equal(t, symbol, one)

	// a zero bit is the symbol with inverted polarity
	zero := PayloadWave([]bool{false}, 1e6)
	require.Len(t, zero, len(symbol))
	for i := range symbol {
		assert.Equal(t, -symbol[i], zero[i])
	}

	both := PayloadWave([]bool{true, false, true}, 1e6)
	assert.Len(t, both, 3*len(symbol))
}

func Test_PreambleWave(t *testing.T) {
	slot := SampleCount(PreambleSlotUS, 1e6)

	wave := PreambleWave([]bool{true}, 1e6)
	require.Len(t, wave, slot)
	for _, s := range wave {
		assert.Zero(t, s, "a one preamble bit is a silent slot")
	}

	wave = PreambleWave([]bool{false}, 1e6)
	require.Len(t, wave, slot)
	assert.Equal(t, ChirpSymbol(1e6), wave[:100])
	for _, s := range wave[100:] {
		assert.Zero(t, s)
	}
}

func Test_MessageWave(t *testing.T) {
	wave := MessageWave([]byte{0x0a, 0x00}, 1e6, MessageOptions{})

	preambleSamples := 12 * SampleCount(PreambleSlotUS, 1e6)
	payloadSamples := (5 + 2*10 + 10 + 7) * 100
	require.Len(t, wave, preambleSamples+payloadSamples)
	assertNormalized(t, wave)

	fromHex, err := MessageWaveFromHex("0a00", 1e6)
	require.NoError(t, err)
	assert.Equal(t, wave, fromHex)

	_, err = MessageWaveFromHex("not hex", 1e6)
	assert.Error(t, err)
}
