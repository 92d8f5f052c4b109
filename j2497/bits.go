package j2497

// Bit-level framing for J2497 (PLC4TRUCKS) messages. J2497 carries J1708
// frames over the powerline: each byte goes out LSB-first between a start
// bit (0) and a stop bit (1), the whole frame bracketed by sync runs of
// ones. Some transmitters pad extra stop bits between bytes, which matters
// when lining a keyhole window up with their output.

const (
	// SyncBitCount is the length of the start sync symbol in body bits.
	SyncBitCount = 5
	// EndSyncBitCount is the length of the end sync symbol in body bits.
	EndSyncBitCount = 7
)

var initialPreambleBits = []bool{false, false}

// PayloadOptions control the framing of PayloadBits.
type PayloadOptions struct {
	// Checksum overrides the computed J1708 checksum byte. A deliberately
	// wrong checksum keeps receivers from accepting the frame while still
	// holding the bus.
	Checksum []byte
	// ExtraStopBits gives the number of extra stop bits after each byte,
	// by byte position. Positions past the end reuse the last entry.
	ExtraStopBits []int
	// TruncateAtChecksum stops the frame after the payload bytes, omitting
	// checksum and end sync.
	TruncateAtChecksum bool
}

// Checksum returns the J1708 checksum byte: the two's complement of the
// byte sum of the message.
func Checksum(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum += b
	}
	return -sum
}

func appendByteLSBFirst(bits []bool, b byte) []bool {
	for i := 0; i < 8; i++ {
		bits = append(bits, b&(1<<i) != 0)
	}
	return bits
}

// PreambleBits returns the J2497 preamble for the given MID byte: a start
// bit, two preamble zeros, the MID LSB-first, and a stop bit.
func PreambleBits(mid byte) []bool {
	bits := make([]bool, 0, 12)
	bits = append(bits, false) // start bit
	bits = append(bits, initialPreambleBits...)
	bits = appendByteLSBFirst(bits, mid)
	bits = append(bits, true) // stop bit
	return bits
}

// PayloadBits frames a J1708 message for the J2497 body: start sync, each
// byte LSB-first with start/stop bits, checksum byte and end sync unless
// truncated.
func PayloadBits(payload []byte, opts PayloadOptions) []bool {
	extra := opts.ExtraStopBits
	if len(extra) == 0 {
		extra = []int{0}
	}

	bits := make([]bool, 0, SyncBitCount+10*(len(payload)+1)+EndSyncBitCount)
	for i := 0; i < SyncBitCount; i++ {
		bits = append(bits, true)
	}

	for i, b := range payload {
		bits = append(bits, false) // start bit
		bits = appendByteLSBFirst(bits, b)
		bits = append(bits, true) // stop bit
		n := extra[len(extra)-1]
		if i < len(extra) {
			n = extra[i]
		}
		for j := 0; j < n; j++ {
			bits = append(bits, true)
		}
	}

	if opts.TruncateAtChecksum {
		return bits
	}

	checksum := opts.Checksum
	if checksum == nil {
		checksum = []byte{Checksum(payload)}
	}
	for _, b := range checksum {
		bits = append(bits, false)
		bits = appendByteLSBFirst(bits, b)
		bits = append(bits, true)
	}

	for i := 0; i < EndSyncBitCount; i++ {
		bits = append(bits, true)
	}
	return bits
}
