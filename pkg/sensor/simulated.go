package sensor

import (
	"math/rand/v2"
)

// SimulatedChannels emulates a TCS34725 exposed to indoor daylight. It
// stands in for real I2C hardware on hosts without the sensor attached.
type SimulatedChannels struct{}

func (SimulatedChannels) ReadChannels() (r, g, b, c uint16, err error) {
	base := 2000 + rand.IntN(6000)
	r = uint16(base)
	g = uint16(base + rand.IntN(base/2))
	b = uint16(base - rand.IntN(base/3))
	c = r + g + b
	return
}
