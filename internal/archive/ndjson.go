package archive

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"chessvault/pkg/models"
)

// maxLineBytes bounds one NDJSON line. Records carry the raw payload
// with full PGN text, so lines run well past bufio's default.
const maxLineBytes = 8 << 20

// WriteNDJSON writes one record per line to path, creating or
// truncating the file. Returns the number of records written.
func WriteNDJSON(path string, records []models.GameRecord) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	count := 0
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			_ = f.Close()
			return count, fmt.Errorf("encode record %d: %w", i, err)
		}
		count++
	}

	if err := w.Flush(); err != nil {
		_ = f.Close()
		return count, fmt.Errorf("flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return count, fmt.Errorf("close %s: %w", path, err)
	}
	return count, nil
}

// ReadNDJSON reads records back from an NDJSON file written by
// WriteNDJSON. Blank lines are skipped.
func ReadNDJSON(path string) ([]models.GameRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var records []models.GameRecord
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec models.GameRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return records, fmt.Errorf("decode line %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return records, fmt.Errorf("scan %s: %w", path, err)
	}
	return records, nil
}
