package sensor

import (
	"strconv"
)

// Reading is one derived light measurement together with its device context.
type Reading struct {
	UID              string `json:"uid"`
	Location         string `json:"location"`
	Timestamp        int64  `json:"time_stamp"`
	Lux              int    `json:"lux"`
	ColorTemperature int    `json:"ct"`
	Uptime           int64  `json:"uptime"`
	Number           uint64 `json:"reading_count"`
}

// Field is one published name/value pair.
type Field struct {
	Name  string
	Value string
}

// Fields returns the reading as wire fields in publish order. Each field is
// published as its own message under the base topic.
func (r Reading) Fields() []Field {
	return []Field{
		{Name: "uid", Value: r.UID},
		{Name: "location", Value: r.Location},
		{Name: "timeStamp", Value: strconv.FormatInt(r.Timestamp, 10)},
		{Name: "lux", Value: strconv.Itoa(r.Lux)},
		{Name: "ct", Value: strconv.Itoa(r.ColorTemperature)},
		{Name: "uptime", Value: strconv.FormatInt(r.Uptime, 10)},
		{Name: "readingCount", Value: strconv.FormatUint(r.Number, 10)},
	}
}
