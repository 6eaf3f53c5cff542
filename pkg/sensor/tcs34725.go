package sensor

import "math"

// ChannelReader yields raw RGBC channel counts from a TCS34725-class color
// sensor. Implementations talk to the hardware; tests and development use
// [SimulatedChannels].
type ChannelReader interface {
	ReadChannels() (r, g, b, c uint16, err error)
}

// ColorTemperature estimates correlated color temperature in Kelvin from raw
// RGB channel counts, using the RGB-to-XYZ mapping and McCamy approximation
// published in TAOS application note DN40.
func ColorTemperature(r, g, b uint16) int {
	rf, gf, bf := float64(r), float64(g), float64(b)
	x := -0.14282*rf + 1.54924*gf - 0.95641*bf
	y := -0.32466*rf + 1.57837*gf - 0.73191*bf
	z := -0.68202*rf + 0.77073*gf + 0.56332*bf
	sum := x + y + z
	if sum == 0 {
		// all-dark or failed read; avoid the division below
		return 0
	}
	xc := x / sum
	yc := y / sum
	n := (xc - 0.3320) / (0.1858 - yc)
	cct := 449.0*math.Pow(n, 3) + 3525.0*math.Pow(n, 2) + 6823.3*n + 5520.33
	return int(cct)
}

// Illuminance estimates illuminance in lux from raw RGB channel counts using
// the DN40 empirical coefficients.
func Illuminance(r, g, b uint16) int {
	return int(-0.32466*float64(r) + 1.57837*float64(g) - 0.73191*float64(b))
}
