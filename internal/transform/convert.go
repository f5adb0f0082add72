package transform

import (
	"math"
	"strings"
	"time"

	"gerencial/internal/etlerr"
	"gerencial/internal/source"
	"gerencial/internal/util"
)

const dateLayout = "2/1/2006"

// ParseDate reads DD/MM/YYYY. Anything else, including empty cells, becomes nil.
func ParseDate(v source.Value) *time.Time {
	if v.Null {
		return nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(v.Raw))
	if err != nil {
		return nil
	}
	return &t
}

// RescaleNumber strips '.' thousand separators, casts to kind and divides by divisor.
// A null cell stays nil for Float; Int cannot represent it and fails like bad text does.
func RescaleNumber(column string, v source.Value, kind util.NumericKind, divisor float64) (*float64, error) {
	if v.Null {
		if kind == util.Int {
			return nil, &etlerr.ConversionError{Column: column, Value: v.Raw}
		}
		return nil, nil
	}
	n, err := util.ParseQty(v.Raw, kind)
	if err != nil {
		return nil, &etlerr.ConversionError{Column: column, Value: v.Raw, Cause: err}
	}
	out := n / divisor
	return &out, nil
}

// castInt truncates a numeric cell to an integer, the way a column-wide integer cast does.
func castInt(column string, v source.Value) (int64, error) {
	f, err := v.Number()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &etlerr.ConversionError{Column: column, Value: v.Raw, Cause: err}
	}
	return int64(f), nil
}

// numberOrNil parses a plain numeric cell; null stays nil.
func numberOrNil(column string, v source.Value) (*float64, error) {
	f, err := v.NumberPtr()
	if err != nil {
		return nil, &etlerr.ConversionError{Column: column, Value: v.Raw, Cause: err}
	}
	return f, nil
}

func divide(num, den *float64) *float64 {
	if num == nil || den == nil {
		return nil
	}
	out := *num / *den
	return &out
}

func round(v *float64, places int) *float64 {
	if v == nil {
		return nil
	}
	p := math.Pow(10, float64(places))
	out := math.RoundToEven(*v*p) / p
	return &out
}

// joinDelivery concatenates city and state; a missing part makes the whole value nil.
func joinDelivery(city, state source.Value, sep, country string) *string {
	if city.Null || state.Null {
		return nil
	}
	s := city.Raw + sep + state.Raw + sep + country
	return &s
}
