package parser

// Point is one decoded LAS point record with scale and offset applied.
//
// GpsTime, Red/Green/Blue and Nir are present only for point formats that
// carry them; absence is modeled with nil, never with sentinel values
// (zero is legal for every one of these fields). Color channels are divided
// by a per-chunk divisor chosen from the chunk's sampled records, which puts
// them in [0,1] unless a record outside the sample exceeds the sampled
// range. ExtraBytes holds the raw tail of the record beyond
// the standard format size, nil when the record has none.
type Point struct {
	X float64
	Y float64
	Z float64

	Intensity         uint16
	ReturnNumber      uint8
	NumberOfReturns   uint8
	ScanDirectionFlag bool
	EdgeOfFlightLine  bool
	Classification    uint8
	ScanAngle         float64
	UserData          uint8
	PointSourceID     uint16

	GpsTime *float64
	Red     *float64
	Green   *float64
	Blue    *float64
	Nir     *uint16

	ExtraBytes []byte
}

// HasColor reports whether the point carries RGB channels.
func (p *Point) HasColor() bool {
	return p.Red != nil && p.Green != nil && p.Blue != nil
}
