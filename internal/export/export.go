// Package export writes tracked peaks as flat rows in CSV, JSON lines or
// Parquet. Writers implement engine.Display, so they can be attached to an
// engine directly.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cwbudde/algo-partials/dsp/partial"
)

// Row is one peak of one frame.
type Row struct {
	Gen       uint64  `parquet:"gen" json:"gen"`
	Frame     uint64  `parquet:"frame" json:"frame"`
	Time      float64 `parquet:"time" json:"time"`
	PartialID uint64  `parquet:"partial_id" json:"partial_id"`
	Frequency float64 `parquet:"frequency" json:"frequency"`
	Energy    float64 `parquet:"energy" json:"energy"`
	Bin       float64 `parquet:"bin" json:"bin"`
	Birth     bool    `parquet:"birth" json:"birth"`
	Death     bool    `parquet:"death" json:"death"`
}

// Format selects the encoding of a Writer.
type Format int

const (
	FormatCSV Format = iota
	FormatJSON
	FormatParquet
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	case FormatParquet:
		return "parquet"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat resolves a format by name or file extension.
func ParseFormat(name string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".") {
	case "csv":
		return FormatCSV, nil
	case "json", "jsonl", "ndjson":
		return FormatJSON, nil
	case "parquet", "pq":
		return FormatParquet, nil
	default:
		return 0, fmt.Errorf("unknown export format: %q", name)
	}
}

var errClosed = errors.New("export writer is closed")

// rowEncoder is the format specific part of a Writer.
type rowEncoder interface {
	encode(rows []Row) error
	close() error
}

// Writer turns tracked frames into rows.
//
// Rows of a frame are emitted when the following frame arrives, because a
// peak's death is only known once the next frame has been matched. Close
// flushes the last frame, whose peaks all end with the stream.
type Writer struct {
	enc          rowEncoder
	frameSeconds float64

	pending partial.TrackedFrame
	have    bool
	rows    []Row
	closed  bool
}

// NewWriter creates a writer encoding to w. frameSeconds converts frame
// indices to the Time column.
func NewWriter(format Format, w io.Writer, frameSeconds float64) (*Writer, error) {
	var enc rowEncoder
	switch format {
	case FormatCSV:
		enc = newCSVEncoder(w)
	case FormatJSON:
		enc = newJSONEncoder(w)
	case FormatParquet:
		enc = newParquetEncoder(w)
	default:
		return nil, fmt.Errorf("unknown export format: %d", int(format))
	}
	return &Writer{enc: enc, frameSeconds: frameSeconds}, nil
}

// WriteFrame queues f and writes the rows of the previously queued frame.
func (w *Writer) WriteFrame(f partial.TrackedFrame) error {
	if w.closed {
		return errClosed
	}
	if w.have {
		if err := w.flush(&f); err != nil {
			return err
		}
	}
	w.pending = f.Clone()
	w.have = true
	return nil
}

// Close writes the last queued frame and finishes the encoding. It does not
// close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	var err error
	if w.have {
		err = w.flush(nil)
		w.have = false
	}
	return errors.Join(err, w.enc.close())
}

func (w *Writer) flush(next *partial.TrackedFrame) error {
	w.rows = Rows(w.pending, next, w.frameSeconds, w.rows[:0])
	return w.enc.encode(w.rows)
}

// Rows converts f into rows appended to dst. A peak dies when next is nil
// or has no peak linked back to it; when next is nil and f is sealed, the
// forward links of f decide instead.
func Rows(f partial.TrackedFrame, next *partial.TrackedFrame, frameSeconds float64, dst []Row) []Row {
	var linked map[int]bool
	if next != nil {
		linked = make(map[int]bool, len(next.Peaks))
		for _, p := range next.Peaks {
			if p.Back.Valid() && p.Back.Gen == f.Gen {
				linked[p.Back.Slot] = true
			}
		}
	}

	for i, p := range f.Peaks {
		death := true
		switch {
		case next != nil:
			death = !linked[i]
		case f.Sealed:
			death = !p.Forward.Valid()
		}
		dst = append(dst, Row{
			Gen:       f.Gen,
			Frame:     f.Index,
			Time:      float64(f.Index) * frameSeconds,
			PartialID: uint64(p.ID),
			Frequency: p.Frequency,
			Energy:    p.Energy,
			Bin:       p.Bin,
			Birth:     p.IsBirth(),
			Death:     death,
		})
	}
	return dst
}
