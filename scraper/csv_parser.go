// scraper/csv_parser.go
package scraper

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"

	"github.com/tecenergy/tecingest/models"
)

// ParseSnapshot takes an io.Reader containing a capacity snapshot CSV and
// returns the decoded records. The file's own header row is consumed and
// decoding runs against the canonical labels instead: csvutil matches
// headers to csv tags by exact string, while upstream validation accepts
// case/whitespace variants, so a file with e.g. an upper-cased header must
// still decode by position. Blank capacity cells decode to nil.
func ParseSnapshot(reader io.Reader) ([]models.CapacityRecord, error) {
	csvReader := csv.NewReader(reader)

	if _, err := csvReader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("snapshot is empty: %w", err)
		}
		return nil, fmt.Errorf("failed to read snapshot header: %w", err)
	}

	decoder, err := csvutil.NewDecoder(csvReader, models.ExpectedHeader...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV decoder: %w", err)
	}

	var records []models.CapacityRecord
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot CSV: %w", err)
	}
	return records, nil
}
