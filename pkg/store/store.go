// Package store persists sweep results.
//
// Every executed study becomes a [Record] identified by a random UUID. The
// CLI uses [NullStore] unless a MongoDB URI is given; the HTTP server keeps
// records so clients can fetch a run again by ID.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/tipscan/pkg/errors"
	"github.com/matzehuels/tipscan/pkg/sweep"
)

// ErrNotFound is returned by Get for unknown run IDs.
var ErrNotFound = errs.New(errs.ErrCodeInvalidInput, "run not found")

// Store saves and loads run records.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	Close(ctx context.Context) error
}

// Record is one executed study.
type Record struct {
	ID          string         `bson:"_id" json:"id"`
	CreatedAt   time.Time      `bson:"created_at" json:"created_at"`
	Device      string         `bson:"device" json:"device"`
	Model       string         `bson:"model" json:"model"`
	Energy      float64        `bson:"energy" json:"energy"`
	From        int            `bson:"from" json:"from"`
	To          int            `bson:"to" json:"to"`
	Series      []SeriesRecord `bson:"series" json:"series"`
	Stats       sweep.Stats    `bson:"stats" json:"stats"`
	Interrupted bool           `bson:"interrupted" json:"interrupted,omitempty"`
}

// SeriesRecord is a stored transmission curve.
type SeriesRecord struct {
	Label    string    `bson:"label" json:"label"`
	Coupling float64   `bson:"coupling" json:"coupling"`
	Variable string    `bson:"variable" json:"variable"`
	X        []float64 `bson:"x" json:"x"`
	T        []float64 `bson:"t" json:"t"`
	Complete bool      `bson:"complete" json:"complete"`
	Error    string    `bson:"error,omitempty" json:"error,omitempty"`
}

// NewRecord captures res under a fresh run ID.
func NewRecord(device, fingerprint string, res *sweep.Result) *Record {
	rec := &Record{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Device:      device,
		Model:       fingerprint,
		Energy:      res.Energy,
		From:        res.From,
		To:          res.To,
		Series:      make([]SeriesRecord, len(res.Series)),
		Stats:       res.Stats,
		Interrupted: res.Interrupted,
	}
	for i := range res.Series {
		s := &res.Series[i]
		sr := SeriesRecord{
			Label:    s.Label,
			Coupling: s.Coupling,
			Variable: s.Variable,
			X:        s.X(),
			T:        s.T(),
			Complete: s.Complete,
		}
		if s.Err != nil {
			sr.Error = s.Err.Error()
		}
		rec.Series[i] = sr
	}
	return rec
}

// ValidID reports whether id looks like a run ID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
