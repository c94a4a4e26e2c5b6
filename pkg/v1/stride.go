package copc

import (
	"container/list"

	"github.com/beetlebugorg/copc/internal/parser"
)

// StrideData is the cache's aggregate view: one flat array per attribute,
// one value (or small vector) per cached point, concatenated in LRU order
// at the moment of rebuild. The layout matches what a renderer uploads
// into separate vertex buffers.
//
// Positions and Colors carry four components per point ((x,y,z,1) and
// (r,g,b,1)); every other array is one float per point. ExtraDimensions
// holds ComponentCount values per point, interleaved, keyed by dimension
// name.
type StrideData struct {
	Positions       []float32
	Colors          []float32
	Intensities     []float32
	Classifications []float32
	ReturnNumbers   []float32
	NumberOfReturns []float32
	ScanAngles      []float32
	UserData        []float32
	PointSourceIDs  []float32
	GpsTimes        []float32

	ExtraDimensions map[string][]float32

	Count int
}

// StrideData returns the aggregate view of all cached points, rebuilding
// it only when the cache changed since the last call. Successive calls
// with no intervening mutation return the same object; callers must not
// modify the arrays. Rebuilds key on cache mutation alone: passing a
// different extraDims without an intervening mutation returns the
// previously built object.
func (c *PointCache) StrideData(extraDims []ExtraDimension) *StrideData {
	if !c.strideDirty && c.stride != nil {
		return c.stride
	}

	total := 0
	for e := c.lru.Front(); e != nil; e = e.Next() {
		total += len(e.Value.(*cacheEntry).points)
	}

	s := &StrideData{
		Positions:       make([]float32, 0, total*4),
		Colors:          make([]float32, 0, total*4),
		Intensities:     make([]float32, 0, total),
		Classifications: make([]float32, 0, total),
		ReturnNumbers:   make([]float32, 0, total),
		NumberOfReturns: make([]float32, 0, total),
		ScanAngles:      make([]float32, 0, total),
		UserData:        make([]float32, 0, total),
		PointSourceIDs:  make([]float32, 0, total),
		GpsTimes:        make([]float32, 0, total),
		Count:           total,
	}

	for e := c.lru.Front(); e != nil; e = e.Next() {
		appendEntry(s, e.Value.(*cacheEntry).points)
	}
	if len(extraDims) > 0 {
		s.ExtraDimensions = strideExtraDimensions(c.lru, extraDims, total)
	}

	c.stride = s
	c.strideDirty = false
	return s
}

func appendEntry(s *StrideData, points []Point) {
	for i := range points {
		p := &points[i]
		s.Positions = append(s.Positions, float32(p.X), float32(p.Y), float32(p.Z), 1)

		// Absent color channels default to white.
		r, g, b := float32(1), float32(1), float32(1)
		if p.Red != nil {
			r = float32(*p.Red)
		}
		if p.Green != nil {
			g = float32(*p.Green)
		}
		if p.Blue != nil {
			b = float32(*p.Blue)
		}
		s.Colors = append(s.Colors, r, g, b, 1)

		s.Intensities = append(s.Intensities, float32(p.Intensity)/65535)
		s.Classifications = append(s.Classifications, float32(p.Classification))
		s.ReturnNumbers = append(s.ReturnNumbers, float32(p.ReturnNumber))
		s.NumberOfReturns = append(s.NumberOfReturns, float32(p.NumberOfReturns))
		s.ScanAngles = append(s.ScanAngles, float32(p.ScanAngle))
		s.UserData = append(s.UserData, float32(p.UserData))
		s.PointSourceIDs = append(s.PointSourceIDs, float32(p.PointSourceID))

		gps := float32(0)
		if p.GpsTime != nil {
			gps = float32(*p.GpsTime)
		}
		s.GpsTimes = append(s.GpsTimes, gps)
	}
}

func strideExtraDimensions(lru *list.List, dims []ExtraDimension, total int) map[string][]float32 {
	out := make(map[string][]float32, len(dims))
	for _, dim := range dims {
		if dim.ComponentCount() > 0 {
			out[dim.Name] = make([]float32, 0, total*dim.ComponentCount())
		}
	}
	for e := lru.Front(); e != nil; e = e.Next() {
		points := e.Value.(*cacheEntry).points
		arrays := parser.ExtraDimensionArrays(dims, points)
		for name, values := range arrays {
			out[name] = append(out[name], values...)
		}
	}
	return out
}
