package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scanlink/scanlink-server-go/internal/metrics"
	"github.com/scanlink/scanlink-server-go/internal/model"
	"github.com/scanlink/scanlink-server-go/internal/repository"
)

// StatsJob periodically refreshes the population gauges from the store.
type StatsJob struct {
	codeRepo    repository.CodeRepository
	accountRepo repository.AccountRepository
	interval    time.Duration
	done        chan struct{}
}

func NewStatsJob(codeRepo repository.CodeRepository, accountRepo repository.AccountRepository, interval time.Duration) *StatsJob {
	return &StatsJob{
		codeRepo:    codeRepo,
		accountRepo: accountRepo,
		interval:    interval,
		done:        make(chan struct{}),
	}
}

func (j *StatsJob) Start() {
	log.Info().Dur("interval", j.interval).Msg("starting stats job")

	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		j.run()

		for {
			select {
			case <-ticker.C:
				j.run()
			case <-j.done:
				log.Info().Msg("stats job stopped")
				return
			}
		}
	}()
}

func (j *StatsJob) Stop() {
	close(j.done)
}

func (j *StatsJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	statuses := []model.CodeStatus{
		model.CodeStatusActive,
		model.CodeStatusPaused,
		model.CodeStatusArchived,
	}

	for _, status := range statuses {
		count, err := j.codeRepo.CountByStatus(ctx, status)
		if err != nil {
			log.Error().Err(err).Str("status", string(status)).Msg("failed to count codes")
			continue
		}
		metrics.CodesByStatus.WithLabelValues(string(status)).Set(float64(count))
	}

	accounts, err := j.accountRepo.Count(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to count accounts")
		return
	}
	metrics.Accounts.Set(float64(accounts))
}
