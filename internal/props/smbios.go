package props

import (
	"strconv"

	"github.com/siderolabs/go-smbios/smbios"
)

// SMBIOSSource reads the SMBIOS tables directly and synthesizes the same
// property namespace udev's dmi_memory_id builtin exports, so hosts
// without a populated udev database still produce an inventory.
type SMBIOSSource struct{}

// Properties implements Source.
func (SMBIOSSource) Properties() ([]Property, error) {
	s, err := smbios.New()
	if err != nil {
		return nil, err
	}

	return memoryProperties(s), nil
}

func memoryProperties(s *smbios.SMBIOS) []Property {
	count := int(s.PhysicalMemoryArray.NumberOfMemoryDevices)
	if count == 0 {
		count = len(s.MemoryDevices)
	}

	list := []Property{
		{Name: "MEMORY_ARRAY_NUM_DEVICES", Value: strconv.Itoa(count)},
	}

	for i, d := range s.MemoryDevices {
		prefix := "MEMORY_DEVICE_" + strconv.Itoa(i) + "_"

		add := func(name, value string) {
			if value != "" {
				list = append(list, Property{Name: prefix + name, Value: value})
			}
		}

		add("MANUFACTURER", d.Manufacturer)
		add("FORM_FACTOR", d.FormFactor.String())
		add("TYPE", d.MemoryType.String())
		add("DEVICE_LOCATOR", d.DeviceLocator)
		add("BANK_LOCATOR", d.BankLocator)
		add("SERIAL_NUMBER", d.SerialNumber)
		add("PART_NUMBER", d.PartNumber)
		add("ASSET_TAG", d.AssetTag)

		if d.Speed != 0 {
			add("SPEED_MTS", strconv.FormatUint(uint64(d.Speed), 10))
		}
		if d.ConfiguredMemorySpeed != 0 {
			add("CONFIGURED_SPEED_MTS", strconv.FormatUint(uint64(d.ConfiguredMemorySpeed), 10))
		}

		// Size of 0 means an empty slot, 0xFFFF means unknown; 0x7FFF
		// redirects to the extended size field (SMBIOS 3.x, sizes >= 32 GiB).
		if d.Size != 0 && d.Size != 0xFFFF {
			sizeMB := uint64(d.Size)
			if d.Size == 0x7FFF {
				sizeMB = uint64(d.ExtendedSize)
			}
			add("SIZE_MB", strconv.FormatUint(sizeMB, 10))
		}
	}

	return list
}
