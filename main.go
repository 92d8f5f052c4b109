package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/knadh/koanf/parsers/hcl"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/plc4trucks/keyholetx/config"
	"github.com/plc4trucks/keyholetx/keyhole"
	"github.com/plc4trucks/keyholetx/transmit"
	"github.com/plc4trucks/keyholetx/tui"
)

var cli struct {
	Verbose bool `help:"Prints debug output"`
	Profile bool `help:"Output a pprof profile"`
	Probe   struct {
	} `cmd:"" help:"List candidate output devices (FL2K USB adapters and SoapySDR TX devices)"`
	Transmit struct {
		Calibrate bool `help:"Generate calibration waveforms with jams and keyholes suppressed"`
		NoTui     bool `help:"Stream without the status UI"`
	} `cmd:"" help:"Generate the keyhole signal set and stream it to an FL2K adapter on a loop"`
	Export struct {
		Dir string `help:"Directory for exported sample files" default:"."`
		Pwm bool   `help:"Also write 1-bit PWM bang files"`
	} `cmd:"" help:"Write the signal set as raw signed 8-bit sample files for offline playback"`
}

var configFile = koanf.New(".")

func getConfigPath() string {
	paths := []string{"/etc/keyholetx/config.hcl", "~/.config/keyholetx/config.hcl", "./config.hcl"}
	for _, path := range paths {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			log.Infof("Found config file: %s", path)
			return path
		}
	}
	log.Info("Config file not found!")
	return ""
}

func signalParams(calibrate bool) keyhole.Params {
	params := keyhole.Params{
		PeriodUS:    configFile.Float64("signal.period_us"),
		Calibration: calibrate || configFile.Bool("signal.calibration"),
	}

	for _, msgHex := range configFile.Strings("signal.allowed_messages") {
		msg, err := hex.DecodeString(msgHex)
		if err != nil {
			log.Fatalf("Bad allowed message %q in config: %v", msgHex, err)
		}
		params.AllowedMessages = append(params.AllowedMessages, msg)
	}

	var suppliers []config.SupplierConf
	if err := configFile.Unmarshal("suppliers", &suppliers); err != nil {
		log.Fatalf("Could not read supplier parameters: %v", err)
	}
	for _, s := range suppliers {
		params.Suppliers = append(params.Suppliers, keyhole.SupplierParams{
			Label:          s.Label,
			ExpectedDelays: s.ExpectedDelays,
			ExtraStopBits:  s.ExtraStopBits,
			ExpectedPhases: s.ExpectedPhases,
		})
	}
	return params
}

func sampleRate() float64 {
	rate := configFile.Float64("signal.sample_rate")
	if rate == 0 {
		rate = transmit.DefaultSampleRate
	}
	return rate
}

func generate(calibrate bool) (float64, [][]float32) {
	rate := sampleRate()
	params := signalParams(calibrate)
	log.Debugf("Generating keyhole signal set at %.0f sps: %##v", rate, params)
	signal, err := keyhole.Generate(rate, params)
	if err != nil {
		log.Fatalf("Could not generate signal set: %v", err)
	}
	log.Infof("Generated %d signal periods", len(signal))
	return rate, signal
}

func main() {
	log.Info("Starting keyholetx")
	flags := kong.Parse(&cli)
	if cli.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	if cli.Profile {
		prof, err := os.Create("./cpu.pprof")
		if err != nil {
			panic(err)
		}
		pprof.StartCPUProfile(prof)
		defer pprof.StopCPUProfile()
	}

	if err := configFile.Load(file.Provider(getConfigPath()), hcl.Parser(true)); err != nil {
		log.Errorf("Could not read config file: %v", err)
		log.Error("Attempting to use environment variables")
		configFile.Load(env.Provider("", env.Opt{
			Prefix: "KEYHOLETX_",
			TransformFunc: func(k, v string) (string, any) {
				key := strings.ToLower(strings.TrimPrefix(k, "KEYHOLETX_"))
				k = strings.Replace(key, "_", ".", 1)
				fmt.Printf("Found config env var: %s=%v\n", k, v)
				return k, v
			},
		}), nil)

	}

	switch flags.Command() {
	case "probe":
		if found, err := transmit.ProbeFL2K(); err != nil {
			log.Errorf("FL2K probe failed: %v", err)
		} else if !found {
			log.Info("No FL2K adapter found")
		}
		transmit.LogTXDevices()

	case "transmit":
		rate, sig := generate(cli.Transmit.Calibrate)

		buffers := make([][]byte, len(sig))
		for i, period := range sig {
			buffers[i] = transmit.Int8Samples(period)
		}

		if found, err := transmit.ProbeFL2K(); err != nil {
			log.Errorf("FL2K probe failed: %v", err)
		} else if !found {
			log.Warn("No FL2K adapter on the USB bus; fl2k_file will likely fail")
		}

		tconf := config.TransmitConf{
			FL2KPath:     configFile.String("transmit.fl2k_path"),
			ChunkSize:    configFile.Int("transmit.chunk_size"),
			WarmupSecs:   configFile.Float64("transmit.warmup_secs"),
			CooldownSecs: configFile.Float64("transmit.cooldown_secs"),
		}
		tuiConf := config.TuiConf{
			RefreshMs:       configFile.Int("tui.refresh_ms"),
			DoFFT:           configFile.Bool("tui.do_fft"),
			EnableLogOutput: configFile.Bool("tui.enable_log_output"),
		}

		tx := transmit.NewFL2K(tconf, rate)
		if err := tx.Start(); err != nil {
			log.Fatalf("Could not start FL2K streamer: %v", err)
		}
		defer tx.Close()

		if cli.Transmit.NoTui {
			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt)
			go func() {
				<-interrupt
				log.Info("Interrupted, stopping after the period in flight")
				tx.Stop()
			}()
			if err := tx.Stream(buffers); err != nil {
				log.Fatalf("Stream failed: %v", err)
			}
		} else {
			go func() {
				if err := tx.Stream(buffers); err != nil {
					log.Errorf("Stream failed: %v", err)
				}
			}()
			tui.StartUI(tx, sig, tuiConf)
		}

	case "export":
		_, sig := generate(false)
		for i, period := range sig {
			name := filepath.Join(cli.Export.Dir, fmt.Sprintf("keyhole_%02d.s8", i))
			if err := os.WriteFile(name, transmit.Int8Samples(period), 0o644); err != nil {
				log.Fatalf("Could not write %s: %v", name, err)
			}
			log.Infof("Wrote %s (%d samples)", name, len(period))
			if cli.Export.Pwm {
				name = filepath.Join(cli.Export.Dir, fmt.Sprintf("keyhole_%02d.pwm", i))
				if err := os.WriteFile(name, transmit.PWMSamples(period), 0o644); err != nil {
					log.Fatalf("Could not write %s: %v", name, err)
				}
			}
		}

	default:
		log.Info("Command not recognized")
	}
}
