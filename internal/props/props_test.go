package props

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource []Property

func (s staticSource) Properties() ([]Property, error) {
	return s, nil
}

func TestCollectLaterDuplicateWins(t *testing.T) {
	src := staticSource{
		{Name: "MEMORY_ARRAY_NUM_DEVICES", Value: "2"},
		{Name: "ID_VENDOR", Value: "old"},
		{Name: "ID_VENDOR", Value: "new"},
	}

	propmap, err := Collect(src)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"MEMORY_ARRAY_NUM_DEVICES": "2",
		"ID_VENDOR":                "new",
	}, propmap)
}

func TestUdevSourceParsesPropertyLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "+dmi:id")
	data := "" +
		"I:123456\n" +
		"E:MEMORY_ARRAY_NUM_DEVICES=2\n" +
		"E:MEMORY_DEVICE_0_TYPE=DDR5\n" +
		"E:MEMORY_DEVICE_0_MANUFACTURER=Samsung\n" +
		"G:dmi\n" +
		"not a property line\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	list, err := UdevSource{Path: path}.Properties()
	require.NoError(t, err)
	assert.Equal(t, []Property{
		{Name: "MEMORY_ARRAY_NUM_DEVICES", Value: "2"},
		{Name: "MEMORY_DEVICE_0_TYPE", Value: "DDR5"},
		{Name: "MEMORY_DEVICE_0_MANUFACTURER", Value: "Samsung"},
	}, list)
}

func TestUdevSourceMissingFile(t *testing.T) {
	_, err := UdevSource{Path: filepath.Join(t.TempDir(), "absent")}.Properties()
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestCollectWrapsSourceError(t *testing.T) {
	src := UdevSource{Path: filepath.Join(t.TempDir(), "absent")}

	_, err := Collect(src)
	require.Error(t, err)
	assert.ErrorContains(t, err, "read device properties")
}
