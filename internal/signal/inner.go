package signal

import "fmt"

// Inner is the operation a windowing transform applies to each slice of
// the signal. It is either a full Transform or a raw series function,
// resolved once at construction rather than probed dynamically at apply
// time.
type Inner struct {
	t  Transform
	fn func([]float64) ([]float64, error)
}

// InnerTransform wraps a Transform as an inner operation. The transform
// is applied to each slice as a single-channel, single-sample batch and
// the result flattened.
func InnerTransform(t Transform) Inner { return Inner{t: t} }

// InnerFunc wraps a raw series function as an inner operation.
func InnerFunc(fn func([]float64) ([]float64, error)) Inner { return Inner{fn: fn} }

func (in Inner) valid() bool { return in.t != nil || in.fn != nil }

// applySeries runs the inner operation on one series.
func (in Inner) applySeries(x []float64) ([]float64, error) {
	switch {
	case in.fn != nil:
		return in.fn(x)
	case in.t != nil:
		out, err := in.t.Apply([]Sample{SingleChannel(x)})
		if err != nil {
			return nil, err
		}
		return out[0].Flatten(), nil
	default:
		return nil, fmt.Errorf("inner operation not configured")
	}
}
