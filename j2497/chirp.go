package j2497

import "math"

// J2497 physical layer timing. These come from the SAE standard and from
// bench measurements of Intellon SSC P485 bridges; they are fixed
// properties of the protocol, scaled by the output sample rate at
// synthesis time.
const (
	// USPerSec converts microsecond durations to seconds.
	USPerSec = 1e6
	// BodyBitTimeUS is the J2497 body bit duration.
	BodyBitTimeUS = 100.0
	// UARTBitTimeUS is one bit at 9600 bps, the rate the powerline bridge
	// presents on its UART side.
	UARTBitTimeUS = 104.17
	// PreambleSlotUS is the bit slot width used in the preamble.
	PreambleSlotUS = 114.0
	// SymbolTimeUS is the duration of one chirp symbol.
	SymbolTimeUS = 100.0
)

// SampleCount converts a duration in microseconds to a sample count at the
// given rate, truncating. All continuous-to-discrete conversions in this
// package go through here so segment rounding stays consistent.
func SampleCount(us, sampleRate float64) int {
	return int(us * sampleRate / USPerSec)
}

// appendChirp appends n samples of a linear chirp evaluated at times spread
// evenly from t0 to tEnd inclusive. The instantaneous frequency ramps from
// f0 at time zero to f1 at time tRef, with the initial phase in degrees.
func appendChirp(dst []float32, n int, t0, tEnd, f0, f1, tRef, phiDeg float64) []float32 {
	if n <= 0 {
		return dst
	}
	phi := phiDeg * math.Pi / 180
	step := 0.0
	if n > 1 {
		step = (tEnd - t0) / float64(n-1)
	}
	for i := 0; i < n; i++ {
		t := t0 + step*float64(i)
		phase := 2 * math.Pi * (f0*t + (f1-f0)*t*t/(2*tRef))
		dst = append(dst, float32(math.Cos(phase+phi)))
	}
	return dst
}

// ChirpSymbol synthesizes the 100 us J2497 chirp symbol: an up-chirp from
// 203 kHz to 400 kHz over 63 us, a fast fall toward 100 kHz over 4 us, and
// a rise toward 200 kHz over the final 33 us, all at -90 degrees initial
// phase. The result is zero-padded to exactly SampleCount(100, rate)
// samples so symbol concatenation never drifts.
func ChirpSymbol(sampleRate float64) []float32 {
	target := SampleCount(SymbolTimeUS, sampleRate)
	wave := make([]float32, 0, target)
	wave = appendChirp(wave, SampleCount(63, sampleRate), 0, 63e-6, 203e3, 400e3, 63e-6, -90)
	wave = appendChirp(wave, SampleCount(4, sampleRate), 63e-6, 67e-6, 400e3, 100e3, 67e-6, -90)
	wave = appendChirp(wave, SampleCount(33, sampleRate), 67e-6, 100e-6, 100e3, 200e3, 100e-6, -90)
	for len(wave) < target {
		wave = append(wave, 0)
	}
	return wave
}

// ChirpSymbolAlt is an alternate symbol variant observed from some
// transmitters, with a slightly lower peak and a shallow final ramp.
func ChirpSymbolAlt(sampleRate float64) []float32 {
	target := SampleCount(SymbolTimeUS, sampleRate)
	wave := make([]float32, 0, target)
	wave = appendChirp(wave, SampleCount(63, sampleRate), 0, 63e-6, 203e3, 394e3, 63e-6, -90)
	wave = appendChirp(wave, SampleCount(4, sampleRate), 63e-6, 67e-6, 400e3, 100e3, 67e-6, -90)
	wave = appendChirp(wave, SampleCount(33, sampleRate), 67e-6, 100e-6, 1e3, 216e3, 100e-6, -30)
	for len(wave) < target {
		wave = append(wave, 0)
	}
	return wave
}

// ConstantCarrier synthesizes n samples of an unmodulated sinusoid at the
// given frequency, starting at zero phase.
func ConstantCarrier(sampleRate float64, n int, freq float64) []float32 {
	dur := float64(n) / sampleRate
	return appendChirp(make([]float32, 0, n), n, 0, dur, freq, freq, dur, -90)
}
