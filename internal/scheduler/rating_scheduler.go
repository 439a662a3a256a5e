package scheduler

import (
	"context"
	"time"

	"github.com/gamevault/storefront-backend/internal/app/service"
	"github.com/gamevault/storefront-backend/pkg/logger"
	"github.com/gamevault/storefront-backend/pkg/metrics"
	"github.com/robfig/cron/v3"
)

const (
	ratingJobName    = "rating-recompute"
	ratingJobTimeout = 10 * time.Minute
)

// RatingScheduler periodically rebuilds product rating aggregates from their
// reviews.
type RatingScheduler struct {
	cron          *cron.Cron
	spec          string
	reviewService service.ReviewService
	metrics       *metrics.CronJobMetrics
}

func NewRatingScheduler(spec string, reviewService service.ReviewService, jobMetrics *metrics.CronJobMetrics) *RatingScheduler {
	return &RatingScheduler{
		cron:          cron.New(),
		spec:          spec,
		reviewService: reviewService,
		metrics:       jobMetrics,
	}
}

func (s *RatingScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.Run); err != nil {
		logger.Error("Failed to add cron job for rating recompute", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Rating scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// Run executes one recompute pass. Exposed so it can be triggered outside
// the schedule.
func (s *RatingScheduler) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), ratingJobTimeout)
	defer cancel()

	start := time.Now()
	logger.Info("Starting scheduled rating recompute", nil)

	result, err := s.reviewService.RecomputeAll(ctx)
	s.metrics.ObserveDuration(ratingJobName, time.Since(start))
	if err != nil {
		s.metrics.IncFailure(ratingJobName)
		logger.Error("Rating recompute finished with errors", err, map[string]interface{}{
			"scanned": result.Scanned,
			"updated": result.Updated,
		})
		return
	}

	s.metrics.IncSuccess(ratingJobName)
	logger.Info("Rating recompute completed", map[string]interface{}{
		"scanned": result.Scanned,
		"updated": result.Updated,
	})
}

// Stop waits for a running job to finish.
func (s *RatingScheduler) Stop() {
	logger.Info("Stopping rating scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Rating scheduler stopped", nil)
}
