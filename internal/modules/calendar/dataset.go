package calendar

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"

	"github.com/aristath/b3cal/pkg/embedded"
)

// datasetRow is one line of the holiday CSV. Only Data is required.
type datasetRow struct {
	Data    string `csv:"Data"`
	Feriado string `csv:"Feriado"`
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadDataset decodes a holiday CSV with a "Data" column and an optional
// "Feriado" (name) column.
func ReadDataset(r io.Reader) ([]Holiday, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyDataset
	}

	var rows []datasetRow
	if err := gocsv.UnmarshalBytes(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}

	holidays := make([]Holiday, 0, len(rows))
	for i, row := range rows {
		if row.Data == "" {
			return nil, fmt.Errorf("dataset row %d: missing Data column value", i+2)
		}
		d, err := ParseDate(row.Data)
		if err != nil {
			return nil, fmt.Errorf("dataset row %d: %w", i+2, err)
		}
		holidays = append(holidays, Holiday{Date: d, Name: row.Feriado})
	}
	if len(holidays) == 0 {
		return nil, ErrEmptyDataset
	}
	return holidays, nil
}

// WriteDataset encodes holidays as CSV with a "Data,Feriado" header.
func WriteDataset(w io.Writer, holidays []Holiday) error {
	rows := make([]*datasetRow, 0, len(holidays))
	for _, h := range holidays {
		rows = append(rows, &datasetRow{Data: FormatDate(h.Date), Feriado: h.Name})
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	return nil
}

// LoadEmbedded builds a Calendar from the dataset compiled into the binary.
func LoadEmbedded(log zerolog.Logger) (*Calendar, error) {
	data, err := embedded.Holidays()
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded dataset: %w", err)
	}
	holidays, err := ReadDataset(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return New(holidays, log), nil
}

// LoadFile builds a Calendar from a dataset file on disk.
func LoadFile(path string, log zerolog.Logger) (*Calendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	holidays, err := ReadDataset(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return New(holidays, log), nil
}

// Load reads path when it is set and exists, otherwise the embedded dataset.
func Load(path string, log zerolog.Logger) (*Calendar, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			log.Debug().Str("path", path).Msg("Loading holiday dataset from file")
			return LoadFile(path, log)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat dataset: %w", err)
		}
		log.Info().Str("path", path).Msg("Dataset file not found, using embedded dataset")
	}
	return LoadEmbedded(log)
}
