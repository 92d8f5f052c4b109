package j2497

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func Test_Checksum(t *testing.T) {
	// LAMP ON
	assert.Equal(t, byte(0xf6), Checksum([]byte{0x0a, 0x00}))

	// The hold-off message body; correct CRC is b4 (the transmitted
	// signal deliberately carries cc instead)
	door := []byte{
		0x89, 0xfe, 0x07, 0x57, 0xaa, 0xaa, 0xaa, 0xaa,
		0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xa7, 0x1c,
	}
	assert.Equal(t, byte(0xb4), Checksum(door))

	assert.Equal(t, byte(0x00), Checksum(nil))
}

func Test_Checksum_SumsToZero(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		payload := rapid.SliceOf(rapid.Byte()).Draw(t, "payload")

		var sum byte
		for _, b := range append(payload, Checksum(payload)) {
			sum += b
		}
		assert.Zero(t, sum, "message plus checksum must sum to zero mod 256")
	})
}

func Test_PreambleBits(t *testing.T) {
	bits := PreambleBits(0x89)

	require.Len(t, bits, 12)
	// start bit, two preamble zeros
	assert.Equal(t, []bool{false, false, false}, bits[:3])
	// 0x89 LSB-first is 10010001
	assert.Equal(t, []bool{true, false, false, true, false, false, false, true}, bits[3:11])
	// stop bit
	assert.True(t, bits[11])
}

func Test_PayloadBits_Lengths(t *testing.T) {
	// sync + per-byte framing + checksum byte + end sync
	bits := PayloadBits([]byte{0x0a, 0x00}, PayloadOptions{})
	assert.Len(t, bits, 5+2*10+10+7)

	// truncated at checksum with per-byte extra stop bits
	bits = PayloadBits([]byte{0x0a, 0x00}, PayloadOptions{
		ExtraStopBits:      []int{2, 2},
		TruncateAtChecksum: true,
	})
	assert.Len(t, bits, 5+12+12)

	// positions past the end of ExtraStopBits reuse the last entry
	bits = PayloadBits([]byte{0x01, 0x02, 0x03}, PayloadOptions{
		ExtraStopBits:      []int{1, 0},
		TruncateAtChecksum: true,
	})
	assert.Len(t, bits, 5+11+10+10)
}

func Test_PayloadBits_Framing(t *testing.T) {
	bits := PayloadBits([]byte{0x0a}, PayloadOptions{})

	// start sync
	assert.Equal(t, []bool{true, true, true, true, true}, bits[:5])
	// start bit then 0x0a LSB-first (01010000) then stop bit
	assert.False(t, bits[5])
	assert.Equal(t, []bool{false, true, false, true, false, false, false, false}, bits[6:14])
	assert.True(t, bits[14])
	// checksum byte is f6: start bit then 01101111 then stop bit
	assert.False(t, bits[15])
	assert.Equal(t, []bool{false, true, true, false, true, true, true, true}, bits[16:24])
	assert.True(t, bits[24])
	// end sync
	for _, bit := range bits[25:] {
		assert.True(t, bit)
	}
}

func Test_PayloadBits_ChecksumOverride(t *testing.T) {
	computed := PayloadBits([]byte{0x0a}, PayloadOptions{})
	overridden := PayloadBits([]byte{0x0a}, PayloadOptions{Checksum: []byte{0xf6}})
	assert.Equal(t, computed, overridden)

	corrupted := PayloadBits([]byte{0x0a}, PayloadOptions{Checksum: []byte{0xcc}})
	assert.NotEqual(t, computed, corrupted)
	assert.Len(t, corrupted, len(computed))
}
