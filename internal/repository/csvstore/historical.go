package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/healthsurge/backend/internal/domain"
	"github.com/healthsurge/backend/pkg/utils"
)

// HistoricalRepository implements domain.HistoricalRepository over rows read
// once from a CSV file. It is read-only after construction.
type HistoricalRepository struct {
	rows []domain.HistoricalRecord
}

// Load reads the dataset at path. A missing or unreadable file is logged and
// yields an empty repository; it never fails the caller.
func Load(path string, logger *slog.Logger) *HistoricalRepository {
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("historical dataset unavailable", "path", path, "error", fmt.Errorf("%w: %v", domain.ErrDataLoad, err))
		return &HistoricalRepository{}
	}
	defer f.Close()

	rows, err := Parse(f)
	if err != nil {
		logger.Warn("historical dataset unreadable", "path", path, "error", err)
		return &HistoricalRepository{}
	}

	logger.Info("historical dataset loaded", "path", path, "rows", len(rows))
	return &HistoricalRepository{rows: rows}
}

// NewHistoricalRepository wraps rows that are already in memory.
func NewHistoricalRepository(rows []domain.HistoricalRecord) *HistoricalRepository {
	return &HistoricalRepository{rows: rows}
}

// Parse decodes a CSV with a header row into records. Cells are converted to
// numbers where possible; empty cells become nil.
func Parse(r io.Reader) ([]domain.HistoricalRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []domain.HistoricalRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: csvstore: failed to read header: %v", domain.ErrDataLoad, err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	var rows []domain.HistoricalRecord
	for line := 2; ; line++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: csvstore: line %d: %v", domain.ErrDataLoad, line, err)
		}

		rec := make(domain.HistoricalRecord, len(header))
		for i, col := range header {
			if i < len(fields) {
				rec[col] = utils.ParseScalar(fields[i])
			} else {
				rec[col] = nil
			}
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// Tail returns the last n rows in stored order
func (r *HistoricalRepository) Tail(n int) []domain.HistoricalRecord {
	if n <= 0 || len(r.rows) == 0 {
		return []domain.HistoricalRecord{}
	}
	start := len(r.rows) - n
	if start < 0 {
		start = 0
	}
	out := make([]domain.HistoricalRecord, len(r.rows)-start)
	copy(out, r.rows[start:])
	return out
}

// Len reports the number of loaded rows
func (r *HistoricalRepository) Len() int {
	return len(r.rows)
}
