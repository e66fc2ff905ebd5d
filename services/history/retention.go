package history

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// StartRetention schedules a job that prunes saved searches older than
// retention. The returned stop function waits for a running prune to finish.
func (s *Service) StartRetention(schedule string, retention time.Duration) (func(), error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		cutoff := s.now().Add(-retention)
		removed, err := s.Prune(context.Background(), cutoff)
		if err != nil {
			s.logger.Error("failed to prune saved searches", "err", err.Error())
			return
		}
		s.logger.Info("pruned saved searches", "removed", removed, "cutoff", cutoff)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}

	c.Start()
	return func() { <-c.Stop().Done() }, nil
}
