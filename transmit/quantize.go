package transmit

// FullScale is the signed 8-bit full-scale value the FL2K DAC expects.
const FullScale = 127

// Int8Samples converts a normalized sample buffer to the DAC's signed
// 8-bit wire format by linear scaling. Inputs in [-1, 1] map to
// [-127, 127]; there is no framing, the bytes go to the device as-is.
func Int8Samples(buf []float32) []byte {
	out := make([]byte, len(buf))
	for i, x := range buf {
		out[i] = byte(int8(x * FullScale))
	}
	return out
}

// PWMSamples reduces a sample buffer to a 1-bit bang rule for playback on
// a bare GPIO pin: non-negative drives the pin high. Even this crude rule
// mitigates in practice.
func PWMSamples(buf []float32) []byte {
	out := make([]byte, len(buf))
	for i, x := range buf {
		if x >= 0 {
			out[i] = 1
		}
	}
	return out
}
