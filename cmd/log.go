package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// newLogger returns a logger at the given level, tagged with a fresh run id.
func newLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("--log_level: %w", err)
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           lvl,
	})
	return logger.With("run", uuid.NewString()[:8]), nil
}
