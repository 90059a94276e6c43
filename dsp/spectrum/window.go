package spectrum

import (
	"fmt"
	"strings"

	"github.com/mjibson/go-dsp/window"
)

// WindowType selects the analysis window.
type WindowType int

const (
	WindowHann WindowType = iota
	WindowHamming
	WindowBlackman
	WindowBartlett
	WindowFlatTop
	WindowRectangular
)

var windowNames = map[WindowType]string{
	WindowHann:        "hann",
	WindowHamming:     "hamming",
	WindowBlackman:    "blackman",
	WindowBartlett:    "bartlett",
	WindowFlatTop:     "flattop",
	WindowRectangular: "rectangular",
}

// String returns the configuration name of the window.
func (w WindowType) String() string {
	if name, ok := windowNames[w]; ok {
		return name
	}
	return fmt.Sprintf("WindowType(%d)", int(w))
}

// ParseWindow resolves a window by name. The empty string selects Hann.
func ParseWindow(name string) (WindowType, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	switch key {
	case "", "hann", "hanning":
		return WindowHann, nil
	case "hamming":
		return WindowHamming, nil
	case "blackman":
		return WindowBlackman, nil
	case "bartlett", "triangle":
		return WindowBartlett, nil
	case "flattop":
		return WindowFlatTop, nil
	case "rectangular", "rect", "none":
		return WindowRectangular, nil
	default:
		return 0, fmt.Errorf("%w: %q", errUnknownWindow, name)
	}
}

// Coefficients returns the window of the given length.
func (w WindowType) Coefficients(size int) ([]float64, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be > 0: %d", size)
	}
	switch w {
	case WindowHann:
		return window.Hann(size), nil
	case WindowHamming:
		return window.Hamming(size), nil
	case WindowBlackman:
		return window.Blackman(size), nil
	case WindowBartlett:
		return window.Bartlett(size), nil
	case WindowFlatTop:
		return window.FlatTop(size), nil
	case WindowRectangular:
		return window.Rectangular(size), nil
	default:
		return nil, fmt.Errorf("%w: %d", errUnknownWindow, int(w))
	}
}
