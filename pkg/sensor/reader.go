package sensor

// DeviceContext supplies the non-optical fields of a reading. It is
// implemented by the device session.
type DeviceContext interface {
	UID() string
	Location() string
	Epoch() int64
	Uptime() int64
	NextReading() uint64
}

// Reader derives full readings from a raw channel source. Raw values are not
// validated; whatever the channels report is what gets derived.
type Reader struct {
	Channels ChannelReader
	Device   DeviceContext
}

// Read takes one measurement. The reading counter is advanced on every
// successful channel read.
func (r *Reader) Read() (Reading, error) {
	cr, cg, cb, _, err := r.Channels.ReadChannels()
	if err != nil {
		return Reading{}, err
	}
	return Reading{
		UID:              r.Device.UID(),
		Location:         r.Device.Location(),
		Timestamp:        r.Device.Epoch(),
		Lux:              Illuminance(cr, cg, cb),
		ColorTemperature: ColorTemperature(cr, cg, cb),
		Uptime:           r.Device.Uptime(),
		Number:           r.Device.NextReading(),
	}, nil
}
