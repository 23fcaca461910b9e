package grid

import (
	"fmt"
	"math"

	"github.com/souvik131/optionlab/option"
	"golang.org/x/exp/constraints"
)

// snapTolerance is the fraction of a step under which a generated point is
// taken to be the end point itself.
const snapTolerance = 1e-9

// Mesh returns start, start+step, ... up to end inclusive. When the stepped
// sequence stops short of end, end is appended, so the final interval may be
// shorter than step. The first point is start and the last is end, exactly.
//
// Points are computed as start+i*step rather than by accumulation, and a
// point within a billionth of a step of end is replaced by end. This keeps
// 0.15..0.5 by 0.05 at eight points instead of picking up a spurious ninth.
func Mesh[F constraints.Float](start, end, step F) ([]F, error) {
	if err := checkMesh(start, end, step); err != nil {
		return nil, err
	}

	eps := step * snapTolerance
	var mesh []F
	if n := (end - start) / step; n < 1<<20 {
		mesh = make([]F, 0, int(n)+2)
	}
	for i := 0; ; i++ {
		v := start + F(i)*step
		if v > end {
			break
		}
		if end-v <= eps {
			v = end
		}
		mesh = append(mesh, v)
		if v == end {
			break
		}
	}
	if mesh[len(mesh)-1] < end {
		mesh = append(mesh, end)
	}
	return mesh, nil
}

func checkMesh[F constraints.Float](start, end, step F) error {
	for _, v := range [...]F{start, end, step} {
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: mesh bounds must be finite, got start=%v end=%v step=%v",
				option.ErrInvalidArgument, start, end, step)
		}
	}
	if !(step > 0) {
		return fmt.Errorf("%w: mesh step must be positive, got %v", option.ErrInvalidArgument, step)
	}
	if end < start {
		return fmt.Errorf("%w: mesh end %v is before start %v", option.ErrInvalidArgument, end, start)
	}
	if math.IsInf(float64((end-start)/step), 0) {
		return fmt.Errorf("%w: mesh from %v to %v by %v has no finite length", option.ErrInvalidArgument, start, end, step)
	}
	return nil
}

// Range is an inclusive sweep interval.
type Range struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Step  float64 `json:"step"`
}

func (r Range) Mesh() ([]float64, error) {
	return Mesh(r.Start, r.End, r.Step)
}

// Len is an upper bound on the number of points r.Mesh returns, or an error
// when r is not a valid mesh.
func (r Range) Len() (float64, error) {
	if err := checkMesh(r.Start, r.End, r.Step); err != nil {
		return 0, err
	}
	return math.Floor((r.End-r.Start)/r.Step) + 2, nil
}

// CheckCells fails with ErrInvalidArgument when the grid spanned by ranges
// would hold more than limit cells. It is meant for sizes taken from callers.
func CheckCells(limit float64, ranges ...Range) error {
	cells := 1.0
	for _, r := range ranges {
		n, err := r.Len()
		if err != nil {
			return err
		}
		cells *= n
	}
	if cells > limit {
		return fmt.Errorf("%w: %.0f cells exceeds the limit of %.0f", option.ErrInvalidArgument, cells, limit)
	}
	return nil
}
