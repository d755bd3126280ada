package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/macvmio/rawflash/pkg/device"
)

var testDevices = []device.Descriptor{
	device.NewDescriptor("/dev/sdb", "Cruzer Blade", 32010928128, device.CategoryUSB),
	device.NewDescriptor("/dev/mmcblk0", "", 15931539456, device.CategorySDCard),
}

func TestPrintDevices_Table(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printDevices(&out, testDevices, "table"))
	assert.Equal(t, "PATH          SIZE   TYPE     NAME\n"+
		"/dev/sdb      32 GB  usb      Cruzer Blade\n"+
		"/dev/mmcblk0  16 GB  sd-card  \n", out.String())
}

func TestPrintDevices_JSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printDevices(&out, testDevices, "json"))
	var got []device.Descriptor
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, testDevices, got)
}

func TestPrintDevices_YAML(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printDevices(&out, testDevices, "yaml"))
	assert.Contains(t, out.String(), "path: /dev/sdb")
	var got []device.Descriptor
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, testDevices, got)
}

func TestPrintDevices_UnknownFormat(t *testing.T) {
	assert.Error(t, printDevices(&bytes.Buffer{}, testDevices, "xml"))
}
