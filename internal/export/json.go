package export

import (
	"encoding/json"
	"io"
)

// jsonEncoder writes one JSON object per row and line.
type jsonEncoder struct {
	enc *json.Encoder
}

func newJSONEncoder(w io.Writer) *jsonEncoder {
	return &jsonEncoder{enc: json.NewEncoder(w)}
}

func (e *jsonEncoder) encode(rows []Row) error {
	for i := range rows {
		if err := e.enc.Encode(&rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func (e *jsonEncoder) close() error { return nil }
