package nool

import (
	"encoding/csv"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/jszwec/csvutil"

	"github.com/plvacc/vdgs/internal/config"
	"github.com/plvacc/vdgs/internal/httpjson"
)

// Reporter writes results as they arrive. Close flushes whatever is buffered.
type Reporter interface {
	Report(r Result) error
	Close() error
}

// NewReporter returns the reporter for one of the config output formats
func NewReporter(format string, w io.Writer) (Reporter, error) {
	switch format {
	case config.OutputText, "":
		return &TextReporter{w: w}, nil
	case config.OutputCSV:
		return NewCSVReporter(w), nil
	case config.OutputJSON:
		return &JSONReporter{enc: httpjson.API.NewEncoder(w)}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// TextReporter prints one human readable line per airport
type TextReporter struct {
	w io.Writer
}

func (t *TextReporter) Report(r Result) error {
	_, err := fmt.Fprintln(t.w, r.Line())
	return err
}

func (t *TextReporter) Close() error {
	return nil
}

// record is the machine readable form of a Result
type record struct {
	ICAO     string `csv:"icao" json:"icao"`
	Endpoint string `csv:"endpoint" json:"endpoint"`
	Flights  *int   `csv:"flights" json:"flights,omitempty"`
	Error    string `csv:"error" json:"error,omitempty"`
}

func newRecord(r Result) record {
	rec := record{ICAO: r.ICAO, Endpoint: r.Endpoint}
	if r.Err != nil {
		rec.Error = httpjson.SingleLine(r.Err.Error())
	} else {
		n := r.Flights
		rec.Flights = &n
	}
	return rec
}

// CSVReporter writes a header and one row per airport
type CSVReporter struct {
	cw   *csv.Writer
	enc  *csvutil.Encoder
	rows int
}

func NewCSVReporter(w io.Writer) *CSVReporter {
	cw := csv.NewWriter(w)
	return &CSVReporter{
		cw:  cw,
		enc: csvutil.NewEncoder(cw),
	}
}

func (c *CSVReporter) Report(r Result) error {
	if err := c.enc.Encode(newRecord(r)); err != nil {
		return err
	}
	c.rows++

	// Flush per row so lines show up while polling.
	c.cw.Flush()
	return c.cw.Error()
}

func (c *CSVReporter) Close() error {
	if c.rows == 0 {
		if err := c.enc.EncodeHeader(record{}); err != nil {
			return err
		}
	}
	c.cw.Flush()
	return c.cw.Error()
}

// JSONReporter writes one JSON object per line
type JSONReporter struct {
	enc *jsoniter.Encoder
}

func (j *JSONReporter) Report(r Result) error {
	return j.enc.Encode(newRecord(r))
}

func (j *JSONReporter) Close() error {
	return nil
}
