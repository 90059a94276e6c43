package export

import (
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{"gen", "frame", "time", "partial_id", "frequency", "energy", "bin", "birth", "death"}

type csvEncoder struct {
	w      *csv.Writer
	header bool
	record []string
}

func newCSVEncoder(w io.Writer) *csvEncoder {
	return &csvEncoder{w: csv.NewWriter(w), record: make([]string, len(csvHeader))}
}

func (e *csvEncoder) encode(rows []Row) error {
	if !e.header {
		if err := e.w.Write(csvHeader); err != nil {
			return err
		}
		e.header = true
	}
	for _, r := range rows {
		e.record[0] = strconv.FormatUint(r.Gen, 10)
		e.record[1] = strconv.FormatUint(r.Frame, 10)
		e.record[2] = strconv.FormatFloat(r.Time, 'f', 6, 64)
		e.record[3] = strconv.FormatUint(r.PartialID, 10)
		e.record[4] = strconv.FormatFloat(r.Frequency, 'f', 3, 64)
		e.record[5] = strconv.FormatFloat(r.Energy, 'f', 3, 64)
		e.record[6] = strconv.FormatFloat(r.Bin, 'f', 4, 64)
		e.record[7] = strconv.FormatBool(r.Birth)
		e.record[8] = strconv.FormatBool(r.Death)
		if err := e.w.Write(e.record); err != nil {
			return err
		}
	}
	e.w.Flush()
	return e.w.Error()
}

func (e *csvEncoder) close() error {
	if !e.header {
		if err := e.w.Write(csvHeader); err != nil {
			return err
		}
		e.header = true
	}
	e.w.Flush()
	return e.w.Error()
}
