// Package cli implements the tipscan command-line interface.
//
// The commands load a study file (TOML pipeline options), build the device
// it describes and either sweep its transmission, draw its geometry or serve
// the same pipeline over HTTP. Points are cached on disk by default, in
// Redis with --redis, and runs can be stored in MongoDB with --mongo.
//
// # Commands
//
//   - sweep: compute transmission curves and write JSON/CSV results
//   - graph: draw the device geometry as DOT, SVG, PDF or PNG
//   - view: browse a written result in the terminal
//   - serve: expose the pipeline over HTTP
//   - cache: manage the point cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging through
// charmbracelet/log.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Swept 200 points (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
