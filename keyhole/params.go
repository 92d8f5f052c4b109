package keyhole

// SupplierParams describe the measured transmit behavior of one brand of
// trailer ABS controller. A keyhole only lines up with a LAMP message if
// the controller sends it where we expect, so each supplier needs its own
// set of measured delays, stop-bit padding and chirp phases, and the
// generator emits one keyhole variant per combination.
//
// All values below were measured after a CRC-corrupted 16 byte door signal
// with the default period; changing either means re-calibrating (see
// Params.Calibration).
type SupplierParams struct {
	Label string
	// ExpectedDelays are candidate gaps between the end of the door signal
	// and the start of the queued LAMP message, in UART bit times.
	ExpectedDelays []float64
	// ExtraStopBits is the per-byte stop bit padding the controller uses.
	ExtraStopBits []int
	// ExpectedPhases are the chirp polarities the controller transmits
	// with, as +1 or -1.
	ExpectedPhases []int
}

// DefaultSuppliers returns the bench-measured parameter sets. Haldex TABS
// units are covered by the Bendix entry: they do not queue LAMP messages,
// so any expected delay works, and their other parameters match.
func DefaultSuppliers() []SupplierParams {
	return []SupplierParams{
		{
			Label:          "wabco tcs ii 2s1m basic msh 400 500 101 0",
			ExpectedDelays: []float64{45.0, 41.7},
			ExtraStopBits:  []int{2, 2},
			ExpectedPhases: []int{-1, 1},
		},
		{
			Label:          "bendix tabs6 5014016 ES1301 K003236",
			ExpectedDelays: []float64{47.2, 41.7, 40.6},
			ExtraStopBits:  []int{1, 0},
			ExpectedPhases: []int{-1, 1},
		},
	}
}

// DefaultAllowedMessages permits only LAMP ON.
func DefaultAllowedMessages() [][]byte {
	return [][]byte{{0x0a, 0x00}}
}

// Params configure Generate. The zero value selects the defaults.
type Params struct {
	// AllowedMessages are the J1708 messages keyholes are cut for.
	AllowedMessages [][]byte
	// Suppliers are the controller parameter sets to cover.
	Suppliers []SupplierParams
	// PeriodUS is the length of each generated buffer in microseconds.
	// Must be at least MinPeriodUS.
	PeriodUS float64
	// Calibration suppresses jam and keyhole amplitudes so supplier
	// parameters can be measured from real traffic.
	Calibration bool
}

func (p *Params) applyDefaults() {
	if p.AllowedMessages == nil {
		p.AllowedMessages = DefaultAllowedMessages()
	}
	if p.Suppliers == nil {
		p.Suppliers = DefaultSuppliers()
	}
	if p.PeriodUS == 0 {
		p.PeriodUS = DefaultPeriodUS
	}
}
