// Package keyhole computes the J2497 keyhole mitigation signal set: a
// fixed, precomputable group of waveforms that, looped continuously onto a
// powerline segment, jam injected command frames while leaving timed
// windows open for the regulation-required LAMP messages.
//
// Generation is pure and deterministic. The signals can be computed once,
// stored, and played back from non-volatile memory forever.
package keyhole

import (
	"math"

	"github.com/pkg/errors"

	"github.com/plc4trucks/keyholetx/j2497"
)

const (
	// MinSampleRate is the lowest rate at which the chirp symbol still
	// resolves; below it the 4 us segment drops under a handful of samples
	// and the waveform aliases into something that no longer mitigates.
	MinSampleRate = 800e3

	// MinPeriodUS is the shortest safe signal period. Bendix TABS6 units
	// verify their sends and retry on corruption, but carry a priority
	// inversion bug: driven faster than this they queue lower-priority
	// retries ahead of LAMP ON and no LAMP messages get out at all.
	MinPeriodUS = 32000

	// DefaultPeriodUS is the period used when Params.PeriodUS is zero.
	DefaultPeriodUS = MinPeriodUS

	// JamFreqHz is the constant-carrier interference frequency. Anything
	// in 300-400 kHz corrupts reception; this value tested best at 3/4
	// power of the target signal.
	JamFreqHz = 376.379e3

	// lampPeriodSec is the cadence at which controllers send LAMP
	// messages.
	lampPeriodSec = 0.5

	// uartLatencyUS is the measured J2497-over to UART-over latency of the
	// Intellon SSC P485 bridge. Expected delays are measured on the UART
	// side, so keyhole placement has to add it back.
	uartLatencyUS = 48.3

	// tailUS is the time occupied by the rest of a message after its
	// payload: start bit, checksum byte, stop bit and end sync.
	tailUS = (1 + 8 + 1 + j2497.EndSyncBitCount) * j2497.BodyBitTimeUS

	syncSymbolUS = j2497.SyncBitCount * j2497.BodyBitTimeUS
)

// Error conditions reported by Generate. All validation happens up front;
// no buffers are returned alongside an error.
var (
	ErrInvalidSampleRate      = errors.New("sample rate must be a positive, finite number")
	ErrInsufficientResolution = errors.New("sample rate too low to resolve the chirp symbol")
	ErrInvalidPeriod          = errors.New("period is shorter than the minimum safe period")
	ErrPeriodAlignment        = errors.New("period multiples align with the LAMP message cadence")
)

// doorPayload is the CRC-corrupted hold-off message body (after the 0x89
// MID). Correct CRC would be 0xb4; 0xcc keeps receivers from accepting it
// while the transmission still occupies the bus.
var doorPayload = []byte{
	0xfe, 0x07, 0x57, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa,
	0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xa7, 0x1c,
}

var doorChecksum = []byte{0xcc}

// Generate computes the complete keyhole mitigation signal set for the
// given output sample rate. Each returned buffer is exactly one period
// long; played back-to-back in order and looped indefinitely they form the
// continuous mitigation waveform. Samples are normalized to [-1, 1].
//
// Preparing the set for a signed 8-bit DAC is a single scaling pass, see
// transmit.Int8Samples. Even a 1-bit bang rule works, see
// transmit.PWMSamples.
func Generate(sampleRate float64, p Params) ([][]float32, error) {
	if math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) || sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if sampleRate < MinSampleRate {
		return nil, errors.Wrapf(ErrInsufficientResolution, "%.0f Hz is below the %.0f Hz minimum", sampleRate, float64(MinSampleRate))
	}
	p.applyDefaults()
	if p.PeriodUS < MinPeriodUS {
		return nil, errors.Wrapf(ErrInvalidPeriod, "%.0f us is below the %d us minimum", p.PeriodUS, MinPeriodUS)
	}

	periodSamples := j2497.SampleCount(p.PeriodUS, sampleRate)

	// Transmitters that never queue LAMP ON (Haldex) only get a message
	// through if some multiple of our period lands a keyhole inside the
	// 0.5 s LAMP cadence. Reject periods that stay phase-locked against
	// it, taking anything within one sync symbol as locked.
	remainder := math.Mod(lampPeriodSec*sampleRate, float64(periodSamples))
	alignLimit := syncSymbolUS * sampleRate / j2497.USPerSec
	if remainder <= alignLimit || float64(periodSamples)-remainder <= alignLimit {
		return nil, errors.Wrapf(ErrPeriodAlignment, "%.0f us period against the %.1f s LAMP cadence", p.PeriodUS, lampPeriodSec)
	}

	jamAmp := float32(1)
	keyholeAmp := float32(1)
	if p.Calibration {
		// Calibrating supplier parameters needs the keyholes suppressed to
		// measure expected delays, and the jams suppressed so the J1708
		// side is receivable at all.
		jamAmp = 0
		keyholeAmp = 0
	}

	doors := doorSignals(sampleRate)
	keyholes := keyholeSignals(sampleRate, p, keyholeAmp, jamAmp)
	if len(keyholes) < len(doors) {
		return nil, errors.Errorf("%d keyhole variants cannot cover %d door signals", len(keyholes), len(doors))
	}

	signals := make([][]float32, 0, len(keyholes)+1)
	for i, kh := range keyholes {
		door := doors[i%len(doors)]
		buf := make([]float32, 0, periodSamples)
		buf = append(buf, door...)
		buf = append(buf, kh...)
		if len(buf) >= periodSamples {
			return nil, errors.Wrapf(ErrInvalidPeriod, "door and keyhole span %d samples, period is %d", len(buf), periodSamples)
		}
		// The trailing jam absorbs every per-segment truncation above, so
		// each buffer closes at exactly one period and no timing error
		// carries across loop iterations.
		buf = append(buf, scaled(jamAmp, j2497.ConstantCarrier(sampleRate, periodSamples-len(buf), JamFreqHz))...)
		signals = append(signals, buf)
	}

	// One all-jam period on each loop lowers the odds of keyholes
	// corrupting a retry forever; see MinPeriodUS.
	door := doors[len(keyholes)%len(doors)]
	buf := make([]float32, 0, periodSamples)
	buf = append(buf, door...)
	buf = append(buf, scaled(jamAmp, j2497.ConstantCarrier(sampleRate, periodSamples-len(buf), JamFreqHz))...)
	signals = append(signals, buf)

	return signals, nil
}

// doorSignals synthesizes the hold-off waveforms. A door keeps every
// J2497 transmitter on the segment waiting, so their pending messages
// queue up and come out at the measured expected delays, right where the
// keyholes are cut.
func doorSignals(sampleRate float64) [][]float32 {
	// TODO: also cycle the MID through the other trailer ABS addresses
	// (0x8a, 0x8b, 0xf6, 0xf7) for address denial alongside the keyhole
	// protection; needs correct CRCs and re-measured supplier delays.
	mids := []byte{0x89}
	doors := make([][]float32, 0, len(mids))
	for _, mid := range mids {
		bits := j2497.PayloadBits(append([]byte{mid}, doorPayload...), j2497.PayloadOptions{Checksum: doorChecksum})
		doors = append(doors, j2497.PayloadWave(bits, sampleRate))
	}
	return doors
}

// keyholeSignals synthesizes one waveform per combination of allowed
// message, supplier, expected delay and phase: early jam up to the window,
// then the allowed message truncated at its checksum, then silence over
// the checksum and end sync. Receivers reject the messages we jam and
// accept the one that lands in the window.
func keyholeSignals(sampleRate float64, p Params, keyholeAmp, jamAmp float32) [][]float32 {
	blankAfterPayload := make([]float32, j2497.SampleCount(tailUS, sampleRate))

	var signals [][]float32
	for _, msg := range p.AllowedMessages {
		for _, supplier := range p.Suppliers {
			bits := j2497.PayloadBits(msg, j2497.PayloadOptions{
				ExtraStopBits:      supplier.ExtraStopBits,
				TruncateAtChecksum: true,
			})

			for _, delay := range supplier.ExpectedDelays {
				// Expected delays are measured UART-side at the far end of
				// the bridge, so convert back to line time: add the bridge
				// latency, drop the UART start bit, and back off by the
				// sync symbol the message opens with.
				startUS := delay*j2497.UARTBitTimeUS + uartLatencyUS - j2497.UARTBitTimeUS - syncSymbolUS
				startSamples := j2497.SampleCount(startUS, sampleRate)
				earlyJam := scaled(jamAmp, j2497.ConstantCarrier(sampleRate, startSamples, JamFreqHz))

				for _, phase := range supplier.ExpectedPhases {
					// All LAMP ON receivers seen so far reject messages
					// with a bad CRC, so blanking checksum and end sync is
					// enough of a mask.
					wave := scaled(keyholeAmp*float32(phase), j2497.PayloadWave(bits, sampleRate))
					signal := make([]float32, 0, len(earlyJam)+len(wave)+len(blankAfterPayload))
					signal = append(signal, earlyJam...)
					signal = append(signal, wave...)
					signal = append(signal, blankAfterPayload...)
					signals = append(signals, signal)
				}
			}
		}
	}
	return signals
}

func scaled(amp float32, wave []float32) []float32 {
	if amp == 1 {
		return wave
	}
	for i := range wave {
		wave[i] *= amp
	}
	return wave
}
