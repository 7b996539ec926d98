// Package model defines the core domain entities for the pallet service.
package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// DefaultUnit is the length unit assumed when a dimension carries none.
const DefaultUnit = "cm"

// Dimension is the physical size of a product or pallet.
//
// @Description Width, height and depth of a product or pallet
// @Example {"width": 120, "height": 40, "depth": 80, "unit": "cm"}
type Dimension struct {
	Width  float64 `json:"width" example:"120"`
	Height float64 `json:"height" example:"40"`
	Depth  float64 `json:"depth" example:"80"`
	Unit   string  `json:"unit,omitempty" example:"cm"`
}

// NewDimension builds a dimension in centimetres.
func NewDimension(width, height, depth float64) Dimension {
	return Dimension{Width: width, Height: height, Depth: depth, Unit: DefaultUnit}
}

// Safe returns a copy whose fields went through SafeNumber. Negative sizes become 0.
func (d Dimension) Safe() Dimension {
	return Dimension{
		Width:  nonNegative(SafeNumber(d.Width)),
		Height: nonNegative(SafeNumber(d.Height)),
		Depth:  nonNegative(SafeNumber(d.Depth)),
		Unit:   d.Unit,
	}
}

// Volume returns width x height x depth after safe-number coercion.
func (d Dimension) Volume() float64 {
	s := d.Safe()
	return s.Width * s.Height * s.Depth
}

// Footprint returns the floor area (width x depth).
func (d Dimension) Footprint() float64 {
	s := d.Safe()
	return s.Width * s.Depth
}

// UnmarshalJSON accepts numbers, numeric strings and nulls for every size field.
// Anything that cannot be read as a finite number decodes to 0.
func (d *Dimension) UnmarshalJSON(data []byte) error {
	var raw struct {
		Width  any `json:"width"`
		Height any `json:"height"`
		Depth  any `json:"depth"`
		Unit   any `json:"unit"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.Width = SafeNumberFrom(raw.Width)
	d.Height = SafeNumberFrom(raw.Height)
	d.Depth = SafeNumberFrom(raw.Depth)
	d.Unit = ""
	if unit, ok := raw.Unit.(string); ok {
		d.Unit = unit
	}
	return nil
}

// SafeNumber maps NaN and infinities to 0.
func SafeNumber(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// SafeNumberFrom coerces an arbitrary decoded value to a finite float.
// Unsupported types, nil and unparsable strings yield 0.
func SafeNumberFrom(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return SafeNumber(n)
	case float32:
		return SafeNumber(float64(n))
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return SafeNumber(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(n, ",", ".")), 64)
		if err != nil {
			return 0
		}
		return SafeNumber(f)
	default:
		return 0
	}
}

// Percentage returns part/whole as a rounded integer percentage, 0 when whole is not positive.
func Percentage(part, whole float64) int {
	part, whole = SafeNumber(part), SafeNumber(whole)
	if whole <= 0 {
		return 0
	}
	return int(math.Round(part / whole * 100))
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func formatSize(v float64) string {
	return strconv.FormatFloat(SafeNumber(v), 'f', -1, 64)
}
