package sensor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIlluminance(t *testing.T) {
	// -0.32466*1000 + 1.57837*2000 - 0.73191*500 = 2466.125
	assert.Equal(t, 2466, Illuminance(1000, 2000, 500))
	assert.Equal(t, 0, Illuminance(0, 0, 0))
}

func TestColorTemperature(t *testing.T) {
	// Equal channel counts read as a cold bluish light under the DN40
	// mapping; the McCamy polynomial lands near 8890 K.
	cct := ColorTemperature(1000, 1000, 1000)
	assert.InDelta(t, 8890, cct, 50)

	// Green-heavy daylight-ish channels land in the mid range.
	cct = ColorTemperature(1000, 2000, 500)
	assert.Greater(t, cct, 2500)
	assert.Less(t, cct, 4500)
}

func TestColorTemperatureAllZero(t *testing.T) {
	assert.Equal(t, 0, ColorTemperature(0, 0, 0))
}

func TestReadingFields(t *testing.T) {
	r := Reading{
		UID:              "deadbeef0001",
		Location:         "lab",
		Timestamp:        1700000000,
		Lux:              100,
		ColorTemperature: 4000,
		Uptime:           3600,
		Number:           42,
	}
	fields := r.Fields()
	require.Len(t, fields, 7)
	assert.Equal(t, []Field{
		{Name: "uid", Value: "deadbeef0001"},
		{Name: "location", Value: "lab"},
		{Name: "timeStamp", Value: "1700000000"},
		{Name: "lux", Value: "100"},
		{Name: "ct", Value: "4000"},
		{Name: "uptime", Value: "3600"},
		{Name: "readingCount", Value: "42"},
	}, fields)
}

type staticChannels struct {
	r, g, b, c uint16
	err        error
}

func (s staticChannels) ReadChannels() (uint16, uint16, uint16, uint16, error) {
	return s.r, s.g, s.b, s.c, s.err
}

type staticDevice struct {
	readings uint64
}

func (d *staticDevice) UID() string      { return "deadbeef0001" }
func (d *staticDevice) Location() string { return "lab" }
func (d *staticDevice) Epoch() int64     { return 1700000000 }
func (d *staticDevice) Uptime() int64    { return 60 }
func (d *staticDevice) NextReading() uint64 {
	d.readings++
	return d.readings
}

func TestReaderRead(t *testing.T) {
	reader := &Reader{
		Channels: staticChannels{r: 1000, g: 2000, b: 500, c: 3500},
		Device:   &staticDevice{},
	}
	reading, err := reader.Read()
	require.NoError(t, err)
	assert.Equal(t, "deadbeef0001", reading.UID)
	assert.Equal(t, "lab", reading.Location)
	assert.EqualValues(t, 1700000000, reading.Timestamp)
	assert.Equal(t, Illuminance(1000, 2000, 500), reading.Lux)
	assert.Equal(t, ColorTemperature(1000, 2000, 500), reading.ColorTemperature)
	assert.EqualValues(t, 60, reading.Uptime)
	assert.EqualValues(t, 1, reading.Number)

	reading, err = reader.Read()
	require.NoError(t, err)
	assert.EqualValues(t, 2, reading.Number)
}

func TestReaderReadError(t *testing.T) {
	dev := &staticDevice{}
	reader := &Reader{
		Channels: staticChannels{err: errors.New("i2c: device not responding")},
		Device:   dev,
	}
	_, err := reader.Read()
	require.Error(t, err)
	assert.EqualValues(t, 0, dev.readings)
}

func TestSimulatedChannels(t *testing.T) {
	var sim SimulatedChannels
	for i := 0; i < 100; i++ {
		r, g, b, c, err := sim.ReadChannels()
		require.NoError(t, err)
		assert.NotZero(t, r)
		assert.GreaterOrEqual(t, g, r)
		assert.LessOrEqual(t, b, r)
		assert.Equal(t, r+g+b, c)
	}
}
