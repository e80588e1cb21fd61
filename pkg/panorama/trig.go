package panorama

import (
	"fmt"
	gomath "math"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultAccuracyFactor is the table resolution used when none is configured.
const DefaultAccuracyFactor = 2048

// Trig evaluates the two inverse trigonometric functions the mapper needs.
type Trig interface {
	// Atan2 returns the angle of (x, y) like math.Atan2(y, x).
	Atan2(y, x float64) float64
	// Asin returns the arcsine of x, for x in [-1, 1].
	Asin(x float64) float64
	Name() string
}

// DirectTrig calls the math package.
type DirectTrig struct{}

func (DirectTrig) Atan2(y, x float64) float64 { return gomath.Atan2(y, x) }
func (DirectTrig) Asin(x float64) float64 { return gomath.Asin(x) }
func (DirectTrig) Name() string { return "direct" }

// TableLookup approximates asin and atan2 with tables quantized at
// 1/accuracyFactor over [-1, 1]. Inputs are expected to be components of
// unit vectors.
//
// Error bounds, with A the accuracy factor:
//   - Atan2 is off by about 1/(A·r) radians where r = sqrt(x²+y²). For ray
//     directions away from the poles r is close to 1, so about 1/A.
//   - Asin is off by about 1/A radians in the interior. Its slope diverges
//     at ±1, so within 1/A of the poles the error rises to about sqrt(2/A).
//
// At A = 2048 the interior error is about 0.03°, well under a texel of a
// 4096-wide panorama.
type TableLookup struct {
	accuracy float64
	size     int
	asin     []float64
	atan2    []float32 // float32 halves a (2A)² table; rounding is ~1e-7 rad
}

// NewTableLookup builds the tables for accuracy factor a.
func NewTableLookup(a int) (*TableLookup, error) {
	if a < 2 {
		return nil, fmt.Errorf("%w: accuracy factor must be at least 2, got %d", ErrInvalidConfiguration, a)
	}
	size := 2 * a
	t := &TableLookup{
		accuracy: float64(a),
		size:     size,
		asin:     make([]float64, size),
		atan2:    make([]float32, size*size),
	}

	for i := range t.asin {
		t.asin[i] = gomath.Asin(t.value(i))
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for j := 0; j < size; j++ {
		g.Go(func() error {
			x := t.value(j)
			row := t.atan2[j*size : (j+1)*size]
			for i := range row {
				row[i] = float32(gomath.Atan2(t.value(i), x))
			}
			return nil
		})
	}
	_ = g.Wait()

	return t, nil
}

// AccuracyFactor returns A.
func (t *TableLookup) AccuracyFactor() int {
	return int(t.accuracy)
}

// MaxError returns the nominal angular error, 1/A radians, which holds
// away from the poles. See the type documentation for the pole behavior.
func (t *TableLookup) MaxError() float64 {
	return 1 / t.accuracy
}

// PoleError returns a bound on the asin error next to ±1, sqrt(2/A) + 1/A.
func (t *TableLookup) PoleError() float64 {
	return gomath.Sqrt(2/t.accuracy) + 1/t.accuracy
}

// Atan2 looks up atan2(y, x).
func (t *TableLookup) Atan2(y, x float64) float64 {
	return float64(t.atan2[t.index(y)+t.index(x)*t.size])
}

// Asin looks up asin(x).
func (t *TableLookup) Asin(x float64) float64 {
	return t.asin[t.index(x)]
}

func (t *TableLookup) Name() string {
	return fmt.Sprintf("table(%d)", int(t.accuracy))
}

// value is the input represented by table index i.
func (t *TableLookup) value(i int) float64 {
	return (float64(i) - t.accuracy) / t.accuracy
}

// index quantizes c to the nearest table slot. NaN maps to the slot for 0.
func (t *TableLookup) index(c float64) int {
	if c != c {
		return int(t.accuracy)
	}
	c = clamp(c, -1, 1)
	i := int(gomath.Round((c + 1) * t.accuracy))
	return clampInt(i, 0, t.size-1)
}

// ParseTrig builds a strategy by name: "direct" or "table".
func ParseTrig(name string, accuracyFactor int) (Trig, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "direct":
		return DirectTrig{}, nil
	case "table", "lookup":
		if accuracyFactor == 0 {
			accuracyFactor = DefaultAccuracyFactor
		}
		return NewTableLookup(accuracyFactor)
	default:
		return nil, fmt.Errorf("%w: unknown trig strategy %q", ErrInvalidConfiguration, name)
	}
}
