// Package wavio reads and writes PCM WAV files as mono float64 samples.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var errInvalidWAV = errors.New("not a valid WAV file")

// Audio is a decoded mono signal in [-1, 1].
type Audio struct {
	SampleRate int
	// Channels is the channel count of the source before mixdown.
	Channels int
	BitDepth int
	Samples  []float64
}

// Duration returns the length in seconds.
func (a Audio) Duration() float64 {
	if a.SampleRate <= 0 {
		return 0
	}
	return float64(len(a.Samples)) / float64(a.SampleRate)
}

// Read decodes a PCM WAV stream and mixes all channels down to mono.
func Read(r io.ReadSeeker) (Audio, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Audio{}, errInvalidWAV
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Audio{}, fmt.Errorf("decode pcm: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}
	depth := int(dec.BitDepth)
	if depth <= 0 {
		depth = buf.SourceBitDepth
	}
	if depth <= 0 {
		return Audio{}, fmt.Errorf("%w: unknown bit depth", errInvalidWAV)
	}

	// 8-bit PCM is unsigned with silence at 128.
	var offset int
	if depth == 8 {
		offset = 128
	}
	scale := 1 / math.Pow(2, float64(depth-1)) / float64(channels)
	frames := len(buf.Data) / channels
	out := make([]float64, frames)
	for i := range out {
		var sum int
		for c := 0; c < channels; c++ {
			sum += buf.Data[i*channels+c] - offset
		}
		out[i] = float64(sum) * scale
	}

	return Audio{
		SampleRate: buf.Format.SampleRate,
		Channels:   channels,
		BitDepth:   depth,
		Samples:    out,
	}, nil
}

// ReadFile opens path and decodes it with Read.
func ReadFile(path string) (Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return Audio{}, err
	}
	defer f.Close()

	a, err := Read(f)
	if err != nil {
		return Audio{}, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// Write encodes mono samples as PCM WAV. Samples are clipped to [-1, 1].
func Write(w io.WriteSeeker, samples []float64, sampleRate, bitDepth int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("wav sample rate must be > 0: %d", sampleRate)
	}
	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("wav bit depth must be 16, 24 or 32: %d", bitDepth)
	}

	full := math.Pow(2, float64(bitDepth-1)) - 1
	data := make([]int, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		data[i] = int(math.Round(s * full))
	}

	enc := wav.NewEncoder(w, sampleRate, bitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode pcm: %w", err)
	}
	return enc.Close()
}

// WriteFile creates path and writes samples to it.
func WriteFile(path string, samples []float64, sampleRate, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, samples, sampleRate, bitDepth); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
