package transmit

import (
	"github.com/charmbracelet/log"
	"github.com/google/gousb"
	"github.com/pkg/errors"
)

// FL2K adapters enumerate as a Fresco Logic FL2000 before the osmo-fl2k
// driver rebinds them.
const (
	FL2KVendorID  = 0x1d5c
	FL2KProductID = 0x2000
)

// ProbeFL2K reports whether an FL2K adapter is present on the USB bus.
func ProbeFL2K() (bool, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	devices, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == gousb.ID(FL2KVendorID) && desc.Product == gousb.ID(FL2KProductID)
	})
	for _, dev := range devices {
		defer dev.Close()
	}
	if err != nil {
		return len(devices) > 0, errors.Wrap(err, "enumerating USB devices")
	}

	for _, dev := range devices {
		product, perr := dev.Product()
		if perr != nil {
			product = "FL2000"
		}
		log.Infof("Found FL2K adapter: %s (bus %d, address %d)", product, dev.Desc.Bus, dev.Desc.Address)
	}
	return len(devices) > 0, nil
}
