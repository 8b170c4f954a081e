package pipeline

import (
	"fmt"

	"github.com/matzehuels/tipscan/pkg/device"
	"github.com/matzehuels/tipscan/pkg/qpc"
)

// Build constructs and finalizes the device described by cfg.
func Build(cfg qpc.Config) (*device.Model, error) {
	m, err := qpc.Build(cfg)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", cfg, err)
	}
	return m, nil
}
