package scheduler

import (
	"context"

	"github.com/groupalarm/alarmd/internal/store"
	"github.com/groupalarm/alarmd/pkg/logger"
)

// RecoverAll re-arms every enabled alarm after a daemon restart. Each
// schedule call is independent and idempotent, so order is irrelevant and
// a failure on one alarm does not stop the rest. A partially completed
// pass is acceptable; missed arms are not retried here.
//
// Returns how many alarms were armed.
func RecoverAll(ctx context.Context, st store.Store, s *Scheduler, l logger.Logger) int {
	alarms, err := st.EnabledAlarms(ctx)
	if err != nil {
		l.Error("boot recovery: list enabled alarms: %v", err)
		return 0
	}

	armed := 0
	for _, a := range alarms {
		if err := s.Schedule(a); err != nil {
			l.Error("boot recovery: alarm %d: %v", a.ID, err)
			continue
		}
		armed++
	}
	l.Info("boot recovery: armed %d of %d enabled alarms", armed, len(alarms))
	return armed
}
