package spectrum

import (
	"fmt"
	"strings"

	algofft "github.com/MeKo-Christian/algo-fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Backend selects the FFT implementation used by an Analyzer.
type Backend int

const (
	// BackendAlgoFFT uses a precomputed algo-fft complex plan.
	BackendAlgoFFT Backend = iota
	// BackendGonum uses gonum's real-input FFT.
	BackendGonum
)

// String returns the configuration name of the backend.
func (b Backend) String() string {
	switch b {
	case BackendAlgoFFT:
		return "algofft"
	case BackendGonum:
		return "gonum"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// ParseBackend resolves a backend by name. The empty string selects algo-fft.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "algofft", "algo-fft":
		return BackendAlgoFFT, nil
	case "gonum":
		return BackendGonum, nil
	default:
		return 0, fmt.Errorf("%w: %q", errUnknownFFT, name)
	}
}

// transformer computes the first len(dst) complex bins of a real frame.
type transformer interface {
	forward(dst []complex128, src []float64) error
}

func newTransformer(b Backend, size int) (transformer, error) {
	switch b {
	case BackendAlgoFFT:
		plan, err := algofft.NewPlan64(size)
		if err != nil {
			return nil, fmt.Errorf("spectrum init fft plan: %w", err)
		}
		return &algoTransformer{
			plan: plan,
			in:   make([]complex128, size),
			out:  make([]complex128, size),
		}, nil
	case BackendGonum:
		return &gonumTransformer{
			fft: fourier.NewFFT(size),
			out: make([]complex128, size/2+1),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %d", errUnknownFFT, int(b))
	}
}

type algoTransformer struct {
	plan *algofft.Plan[complex128]
	in   []complex128
	out  []complex128
}

func (t *algoTransformer) forward(dst []complex128, src []float64) error {
	for i, v := range src {
		t.in[i] = complex(v, 0)
	}
	if err := t.plan.Forward(t.out, t.in); err != nil {
		return err
	}
	copy(dst, t.out)
	return nil
}

type gonumTransformer struct {
	fft *fourier.FFT
	out []complex128
}

func (t *gonumTransformer) forward(dst []complex128, src []float64) error {
	t.out = t.fft.Coefficients(t.out, src)
	copy(dst, t.out)
	return nil
}
