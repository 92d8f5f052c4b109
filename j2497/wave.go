package j2497

import "encoding/hex"

// PayloadWave maps framed body bits onto chirp symbols: a one is the
// symbol, a zero is the symbol inverted.
func PayloadWave(bits []bool, sampleRate float64) []float32 {
	symbol := ChirpSymbol(sampleRate)
	wave := make([]float32, 0, len(bits)*len(symbol))
	for _, bit := range bits {
		if bit {
			wave = append(wave, symbol...)
		} else {
			for _, s := range symbol {
				wave = append(wave, -s)
			}
		}
	}
	return wave
}

// PreambleWave maps preamble bits onto 114 us slots: a zero is the chirp
// symbol followed by silence to fill the slot, a one is a full slot of
// silence.
func PreambleWave(bits []bool, sampleRate float64) []float32 {
	symbol := ChirpSymbol(sampleRate)
	slot := SampleCount(PreambleSlotUS, sampleRate)
	wave := make([]float32, 0, len(bits)*slot)
	for _, bit := range bits {
		if bit {
			wave = append(wave, make([]float32, slot)...)
			continue
		}
		wave = append(wave, symbol...)
		wave = append(wave, make([]float32, slot-len(symbol))...)
	}
	return wave
}

// MessageOptions control MessageWave framing.
type MessageOptions struct {
	// PreambleMID overrides the preamble MID byte; by default the first
	// payload byte is used.
	PreambleMID *byte
	// Payload framing options, applied unchanged.
	PayloadOptions
}

// MessageWave synthesizes the complete transmit waveform for a J1708
// message: preamble slots followed by the chirp-modulated body.
func MessageWave(message []byte, sampleRate float64, opts MessageOptions) []float32 {
	mid := message[0]
	if opts.PreambleMID != nil {
		mid = *opts.PreambleMID
	}
	wave := PreambleWave(PreambleBits(mid), sampleRate)
	return append(wave, PayloadWave(PayloadBits(message, opts.PayloadOptions), sampleRate)...)
}

// MessageWaveFromHex is MessageWave for a hex-encoded message such as
// "89fe0757".
func MessageWaveFromHex(messageHex string, sampleRate float64) ([]float32, error) {
	message, err := hex.DecodeString(messageHex)
	if err != nil {
		return nil, err
	}
	return MessageWave(message, sampleRate, MessageOptions{}), nil
}
