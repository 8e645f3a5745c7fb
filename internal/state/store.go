// Package state persists the single heater mode record. Every backend keys the
// record by a fixed identifier, so a store holds at most one row/item.
package state

import (
	"context"
	"strings"
	"time"

	"heaterwatch/internal/types"
)

// DefaultRecordID is the key of the mode record when none is configured.
const DefaultRecordID = "main"

// Record is the persisted mode. A nil *Record from Get means the monitor has
// never classified a forecast.
type Record struct {
	Mode      types.Mode
	UpdatedAt time.Time
}

// Store reads and writes the mode record. Implementations wrap backend
// failures in an AppError with ErrCodeStateStore and report unrecognized
// stored modes with ErrCodeStateCorrupt.
type Store interface {
	Get(ctx context.Context) (*Record, error)
	Put(ctx context.Context, mode types.Mode, at time.Time) error
}

// decodeRecord validates raw stored fields into a Record. A record without a
// mode has never been classified and decodes as absent.
func decodeRecord(rawMode string, updatedAt time.Time) (*Record, error) {
	if strings.TrimSpace(rawMode) == "" {
		return nil, nil
	}
	mode, err := types.ParseMode(rawMode)
	if err != nil {
		return nil, err
	}
	return &Record{Mode: mode, UpdatedAt: updatedAt}, nil
}
