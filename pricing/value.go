package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/souvik131/optionlab/option"
)

// Value is a valuation result as it travels in JSON. Degenerate inputs make
// the engines return NaN or an infinity, which JSON numbers cannot carry, so
// those are written as the strings "NaN", "+Inf" and "-Inf".
type Value float64

func (v Value) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return json.Marshal(strconv.FormatFloat(f, 'g', -1, 64))
	}
	return json.Marshal(f)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", option.ErrInvalidArgument, s)
		}
		*v = Value(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Value(f)
	return nil
}

// Values converts a batch of results for encoding.
func Values(xs []float64) []Value {
	out := make([]Value, len(xs))
	for i, x := range xs {
		out[i] = Value(x)
	}
	return out
}
