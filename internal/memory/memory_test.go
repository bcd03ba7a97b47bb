package memory

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotProps() map[string]string {
	return map[string]string{
		"MEMORY_ARRAY_NUM_DEVICES":             "2",
		"MEMORY_DEVICE_0_MANUFACTURER":         "Samsung",
		"MEMORY_DEVICE_0_CONFIGURED_SPEED_MTS": "4800",
		"MEMORY_DEVICE_0_FORM_FACTOR":          "SODIMM",
		"MEMORY_DEVICE_0_TYPE":                 "DDR5",
		"MEMORY_DEVICE_0_SERIAL_NUMBER":        "12345678",
		"MEMORY_DEVICE_1_MANUFACTURER":         "SK Hynix",
		"MEMORY_DEVICE_1_TYPE":                 "DDR5",
		"MEMORY_DEVICE_10_MANUFACTURER":        "out of range",
		"ID_VENDOR":                            "LENOVO",
	}
}

func TestFromProperties(t *testing.T) {
	mem, err := FromProperties(snapshotProps())
	require.NoError(t, err)
	require.Len(t, mem.Devices, 2)

	dev := mem.Devices[0]
	require.NotNil(t, dev.Manufacturer)
	assert.Equal(t, "Samsung", *dev.Manufacturer)
	require.NotNil(t, dev.Frequency)
	assert.Equal(t, uint64(4800), *dev.Frequency)
	require.NotNil(t, dev.FormFactor)
	assert.Equal(t, "SODIMM", *dev.FormFactor)
	assert.Equal(t, MemTypeDDR5, dev.MemType.Kind)

	// Named fields are lifted out; only the remainder stays behind.
	assert.Equal(t, map[string]string{"SERIAL_NUMBER": "12345678"}, dev.ExtraProps)

	dev = mem.Devices[1]
	require.NotNil(t, dev.Manufacturer)
	assert.Equal(t, "SK Hynix", *dev.Manufacturer)
	assert.Nil(t, dev.Frequency)
	assert.Nil(t, dev.FormFactor)
	assert.Empty(t, dev.ExtraProps)
}

func TestFromPropertiesInputUntouched(t *testing.T) {
	propmap := snapshotProps()

	_, err := FromProperties(propmap)
	require.NoError(t, err)

	assert.Equal(t, snapshotProps(), propmap)
}

func TestDeviceProperties(t *testing.T) {
	propmap := snapshotProps()

	slot := deviceProperties(propmap, 1)
	assert.Equal(t, map[string]string{
		"MANUFACTURER": "SK Hynix",
		"TYPE":         "DDR5",
	}, slot)

	// Index 1 must not pick up the index-10 keys by prefix accident.
	_, leaked := slot["0_MANUFACTURER"]
	assert.False(t, leaked)

	// An index with no keys yields an empty map, not nil.
	slot = deviceProperties(propmap, 7)
	require.NotNil(t, slot)
	assert.Empty(t, slot)
}

func TestSlotWithoutKeysYieldsEmptyDevice(t *testing.T) {
	mem, err := FromProperties(map[string]string{
		"MEMORY_ARRAY_NUM_DEVICES": "3",
		"MEMORY_DEVICE_0_TYPE":     "DDR4",
	})
	require.NoError(t, err)
	require.Len(t, mem.Devices, 3)

	for _, dev := range mem.Devices[1:] {
		assert.Nil(t, dev.Manufacturer)
		assert.Nil(t, dev.Frequency)
		assert.Nil(t, dev.FormFactor)
		assert.Equal(t, MemTypeUnknown, dev.MemType.Kind)
		assert.Empty(t, dev.ExtraProps)
	}
}

func TestDeviceCountMissing(t *testing.T) {
	_, err := FromProperties(map[string]string{"ID_VENDOR": "LENOVO"})
	require.ErrorIs(t, err, ErrDeviceCountMissing)
}

func TestDeviceCountNotAnInteger(t *testing.T) {
	_, err := FromProperties(map[string]string{"MEMORY_ARRAY_NUM_DEVICES": "abc"})
	require.Error(t, err)

	var numErr *strconv.NumError
	require.True(t, errors.As(err, &numErr))
	assert.NotErrorIs(t, err, ErrDeviceCountMissing)
}

func TestDeviceCountZero(t *testing.T) {
	mem, err := FromProperties(map[string]string{"MEMORY_ARRAY_NUM_DEVICES": "0"})
	require.NoError(t, err)
	assert.Empty(t, mem.Devices)
}

func TestDeviceCountSubstringFallback(t *testing.T) {
	mem, err := FromProperties(map[string]string{
		"DMI_MEMORY_ARRAY_NUM_DEVICES_0": "1",
	})
	require.NoError(t, err)
	assert.Len(t, mem.Devices, 1)
}

func TestFrequencyParseFailureIsSwallowed(t *testing.T) {
	mem, err := FromProperties(map[string]string{
		"MEMORY_ARRAY_NUM_DEVICES":             "1",
		"MEMORY_DEVICE_0_CONFIGURED_SPEED_MTS": "fast",
	})
	require.NoError(t, err)

	dev := mem.Devices[0]
	assert.Nil(t, dev.Frequency)
	// The garbled key was still consumed by the extraction.
	assert.Empty(t, dev.ExtraProps)
}

func TestClassifyMemType(t *testing.T) {
	assert.Equal(t, MemType{Kind: MemTypeDDR5}, ClassifyMemType("DDR5"))
	assert.Equal(t, MemType{Kind: MemTypeDDR4}, ClassifyMemType("DDR4"))
	assert.Equal(t, MemType{Kind: MemTypeDDR3}, ClassifyMemType("DDR3"))
	assert.Equal(t, MemType{Kind: MemTypeUnknown}, ClassifyMemType("Unknown"))
	assert.Equal(t, MemType{Kind: MemTypeOther, Raw: "LPDDR5"}, ClassifyMemType("LPDDR5"))

	// Case-sensitive by contract.
	assert.Equal(t, MemType{Kind: MemTypeOther, Raw: "ddr4"}, ClassifyMemType("ddr4"))
}

func TestMemTypeString(t *testing.T) {
	assert.Equal(t, "DDR4", MemType{Kind: MemTypeDDR4}.String())
	assert.Equal(t, "LPDDR5", MemType{Kind: MemTypeOther, Raw: "LPDDR5"}.String())
	assert.Equal(t, "Unknown", MemType{Kind: MemTypeUnknown}.String())
	assert.Equal(t, "Unknown", MemType{}.String())
}

func TestBuildIsIdempotent(t *testing.T) {
	propmap := snapshotProps()

	first, err := FromProperties(propmap)
	require.NoError(t, err)
	second, err := FromProperties(propmap)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
