package catalog

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/starford/depot/internal/models"
)

// orderProber fails the test if two probes ever overlap.
type orderProber struct {
	t        *testing.T
	inFlight atomic.Int32
}

func (p *orderProber) Probe(_ context.Context, f models.FileDescriptor) models.ProbeResult {
	if p.inFlight.Add(1) != 1 {
		p.t.Errorf("probe for %q overlapped another probe", f.Name)
	}
	defer p.inFlight.Add(-1)
	return models.ProbeResult{Exists: true, Size: 1}
}
