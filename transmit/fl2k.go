package transmit

import (
	"io"
	"os"
	"os/exec"
	"strconv"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/plc4trucks/keyholetx/config"
)

const (
	// DefaultFL2KPath is the osmo-fl2k playback binary; it reads raw
	// signed 8-bit samples on stdin and clocks them out of the VGA DAC.
	DefaultFL2KPath = "fl2k_file"

	// DefaultSampleRate is the lowest rate the FL2K will actually run at.
	DefaultSampleRate = 7777777

	// DefaultChunkSize is the write size used when streaming to the
	// subprocess.
	DefaultChunkSize = 4096

	// DefaultWarmupSecs of zeros precede the waveform; without them the
	// FL2K corrupts the first transmissions. Cooldown zeros follow for the
	// same reason.
	DefaultWarmupSecs   = 4
	DefaultCooldownSecs = 4
)

// FL2K streams quantized sample buffers to an osmo-fl2k adapter through
// the fl2k_file subprocess, looping the buffer set until stopped. The
// exported counters are read live by the status UI.
type FL2K struct {
	SampleRate   float64
	Path         string
	ChunkSize    int
	WarmupSecs   float64
	CooldownSecs float64

	State        string
	Loops        int
	Periods      int
	BytesWritten int64
	Stopping     bool

	cmd   *exec.Cmd
	stdin io.WriteCloser
}

// NewFL2K builds a streamer from config, filling unset fields with the
// defaults above.
func NewFL2K(conf config.TransmitConf, sampleRate float64) *FL2K {
	t := FL2K{
		SampleRate:   sampleRate,
		Path:         conf.FL2KPath,
		ChunkSize:    conf.ChunkSize,
		WarmupSecs:   conf.WarmupSecs,
		CooldownSecs: conf.CooldownSecs,
		State:        "idle",
	}
	if t.Path == "" {
		t.Path = DefaultFL2KPath
	}
	if t.ChunkSize <= 0 {
		t.ChunkSize = DefaultChunkSize
	}
	if t.WarmupSecs <= 0 {
		t.WarmupSecs = DefaultWarmupSecs
	}
	if t.CooldownSecs <= 0 {
		t.CooldownSecs = DefaultCooldownSecs
	}
	return &t
}

// Start launches the subprocess and writes the warmup zeros.
//
// NB: the USB buffers usually need growing once per boot:
//
//	sudo sh -c 'echo 1000 > /sys/module/usbcore/parameters/usbfs_memory_mb'
func (t *FL2K) Start() error {
	t.cmd = exec.Command(t.Path, "-s", strconv.FormatFloat(t.SampleRate, 'f', -1, 64), "-r", "1", "-")
	t.cmd.Stderr = os.Stderr

	var err error
	if t.stdin, err = t.cmd.StdinPipe(); err != nil {
		return errors.Wrap(err, "opening fl2k_file stdin")
	}
	if err := t.cmd.Start(); err != nil {
		return errors.Wrapf(err, "starting %s", t.Path)
	}

	t.State = "warming up"
	warmup := make([]byte, int(t.WarmupSecs*t.SampleRate))
	if err := t.writeChunked(warmup); err != nil {
		return errors.Wrap(err, "writing warmup")
	}
	log.Info("Warmed up; expect at least one \"Underflow!\" message from fl2k_file")
	return nil
}

// Stream loops the buffer set into the subprocess until Stop is called or
// the subprocess goes away. A closed pipe is a normal shutdown, not an
// error.
func (t *FL2K) Stream(buffers [][]byte) error {
	t.State = "transmitting"
	for !t.Stopping {
		for _, buf := range buffers {
			if t.Stopping {
				break
			}
			if err := t.writeChunked(buf); err != nil {
				if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.EINVAL) {
					log.Debug("fl2k_file went away, stopping stream")
					t.State = "stopped"
					return nil
				}
				t.State = "error"
				return errors.Wrap(err, "streaming to fl2k_file")
			}
			t.Periods++
		}
		t.Loops++
	}
	t.State = "stopped"
	return nil
}

func (t *FL2K) writeChunked(buf []byte) error {
	for i := 0; i < len(buf); i += t.ChunkSize {
		end := min(i+t.ChunkSize, len(buf))
		n, err := t.stdin.Write(buf[i:end])
		t.BytesWritten += int64(n)
		if err != nil {
			return err
		}
	}
	return nil
}

// Stop makes Stream return after the buffer in flight.
func (t *FL2K) Stop() {
	t.Stopping = true
}

// Close writes the cooldown zeros and reaps the subprocess.
func (t *FL2K) Close() {
	t.Stopping = true
	if t.stdin != nil {
		t.State = "cooling down"
		cooldown := make([]byte, int(t.CooldownSecs*t.SampleRate))
		if err := t.writeChunked(cooldown); err != nil {
			log.Debugf("Cooldown write failed: %v", err)
		}
		t.stdin.Close()
	}
	if t.cmd != nil && t.cmd.Process != nil {
		t.cmd.Process.Kill()
		t.cmd.Wait()
	}
	t.State = "stopped"
}
