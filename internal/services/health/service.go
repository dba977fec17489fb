package health

import (
	"context"
	"time"
)

// Probe checks one dependency. A nil Check always reports "ok".
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	info   map[string]string
	probes []Probe
	now    func() time.Time
}

// NewService constructs a health service reporting the static backend info
// and the given probes.
func NewService(info map[string]string, probes ...Probe) *Service {
	return &Service{info: info, probes: probes, now: time.Now}
}

// Status returns the health payload. Status is "OK" when every probe passes
// and "DEGRADED" otherwise.
func (s *Service) Status(ctx context.Context) map[string]any {
	out := map[string]any{
		"status":    "OK",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	}
	for k, v := range s.info {
		out[k] = v
	}
	if len(s.probes) == 0 {
		return out
	}

	checks := make(map[string]string, len(s.probes))
	for _, p := range s.probes {
		if p.Check == nil {
			checks[p.Name] = "ok"
			continue
		}
		if err := p.Check(ctx); err != nil {
			checks[p.Name] = err.Error()
			out["status"] = "DEGRADED"
			continue
		}
		checks[p.Name] = "ok"
	}
	out["checks"] = checks
	return out
}
