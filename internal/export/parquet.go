package export

import (
	"errors"
	"io"

	parquet "github.com/parquet-go/parquet-go"
)

type parquetEncoder struct {
	pw *parquet.GenericWriter[Row]
}

func newParquetEncoder(w io.Writer) *parquetEncoder {
	return &parquetEncoder{pw: parquet.NewGenericWriter[Row](w, parquet.Compression(&parquet.Snappy))}
}

func (e *parquetEncoder) encode(rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := e.pw.Write(rows)
	return err
}

func (e *parquetEncoder) close() error { return e.pw.Close() }

// ReadParquet decodes every row of a Parquet file written by a Writer.
func ReadParquet(r io.ReaderAt) ([]Row, error) {
	gr := parquet.NewGenericReader[Row](r)
	defer gr.Close()

	out := make([]Row, 0, 256)
	batch := make([]Row, 256)
	for {
		n, err := gr.Read(batch)
		if n > 0 {
			out = append(out, batch[:n]...)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
