package transmit

// #cgo CFLAGS: -g -Wall
// #cgo LDFLAGS: -lSoapySDR
import (
	"github.com/charmbracelet/log"

	"github.com/pothosware/go-soapy-sdr/pkg/device"
	"github.com/pothosware/go-soapy-sdr/pkg/modules"
	"github.com/pothosware/go-soapy-sdr/pkg/sdrlogger"
	"github.com/pothosware/go-soapy-sdr/pkg/version"
)

// LogTXDevices lists every SoapySDR device and its transmit capabilities,
// for finding an SDR that can carry the waveform when no FL2K is on hand.
//
// TODO: add a native SoapySDR transmit backend next to the FL2K streamer;
// needs a TX stream setup plus per-driver sample-rate validation against
// the 800 kHz generator floor.
func LogTXDevices() {
	log.Infof("Using SoapySDR versions: ABI: %s API: %s Lib: %s", version.GetABIVersion(), version.GetAPIVersion(), version.GetLibVersion())
	log.Infof("SoapySDR modules root path: %v", modules.GetRootPath())

	modulesFound := modules.ListModules()
	if len(modulesFound) > 0 {
		for _, module := range modulesFound {
			moduleVersion := modules.GetModuleVersion(module)
			if len(moduleVersion) == 0 {
				moduleVersion = "[None]"
			}
			log.Infof("Found SoapySDR module: %v, version: %v", module, moduleVersion)
		}
	} else {
		log.Info("No SoapySDR modules found")
	}

	sdrlogger.SetLogLevel(sdrlogger.Error)

	devices := device.Enumerate(nil)
	log.Infof("Found %d SoapySDR devices", len(devices))
	args := make([]map[string]string, len(devices))
	for idx, dev := range devices {
		args[idx] = map[string]string{"driver": dev["driver"]}
	}
	devs, err := device.MakeList(args)
	if err != nil {
		log.Errorf("SoapySDR could not open devices: %v", err)
		return
	}
	for idx, dev := range devs {
		log.Infof("Driver: %s", args[idx]["driver"])
		logTXSettings(dev)
	}
	// Closing via UnmakeList double-frees inside the cgo wrapper, so the
	// devices are left for the OS to reap at exit.
}

func logTXSettings(dev *device.SDRDevice) {
	numChannels := dev.GetNumChannels(device.DirectionTX)
	if numChannels == 0 {
		log.Info("\tNo TX channels")
		return
	}
	for channel := uint(0); channel < numChannels; channel++ {
		log.Infof("TX channel %d:", channel)
		log.Infof("\tAvailable sample rates:")
		log.Infof("\t\t- %v", dev.GetSampleRate(device.DirectionTX, channel))
		for _, sampleRateRange := range dev.GetSampleRateRange(device.DirectionTX, channel) {
			log.Infof("\t\t- %v", sampleRateRange.ToString())
		}
		log.Infof("\tSample formats: %v", dev.GetStreamFormats(device.DirectionTX, channel))
	}
}
