package config

type SignalConf struct {
	SampleRate      float64  `koanf:"sample_rate"`
	PeriodUS        float64  `koanf:"period_us"`
	AllowedMessages []string `koanf:"allowed_messages"`
	Calibration     bool     `koanf:"calibration"`
}

type SupplierConf struct {
	Label          string    `koanf:"label"`
	ExpectedDelays []float64 `koanf:"expected_delays"`
	ExtraStopBits  []int     `koanf:"extra_stop_bits"`
	ExpectedPhases []int     `koanf:"expected_phases"`
}

type TransmitConf struct {
	FL2KPath     string  `koanf:"fl2k_path"`
	ChunkSize    int     `koanf:"chunk_size"`
	WarmupSecs   float64 `koanf:"warmup_secs"`
	CooldownSecs float64 `koanf:"cooldown_secs"`
}

type TuiConf struct {
	RefreshMs       int  `koanf:"refresh_ms"`
	DoFFT           bool `koanf:"do_fft"`
	EnableLogOutput bool `koanf:"enable_log_output"`
}
