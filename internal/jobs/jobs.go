package jobs

import (
	"errors"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"
)

// StartScheduler submits jobID to the manager every intervalMinutes. It
// returns nil when the interval is 0. Scheduled runs go through the manager
// so they never overlap with manually started ones.
func StartScheduler(jm *Manager, jobID string, intervalMinutes int) *gocron.Scheduler {
	if intervalMinutes <= 0 {
		log.Info().Str("job", jobID).Msg("Scheduled runs are disabled")
		return nil
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	log.Info().Str("job", jobID).Int("interval_minutes", intervalMinutes).Msg("Scheduling job")
	_, err := s.Every(intervalMinutes).Minutes().WaitForSchedule().Do(func() {
		triggerScheduled(jm, jobID)
	})
	if err != nil {
		log.Error().Err(err).Str("job", jobID).Msg("Could not schedule job")
		return nil
	}

	log.Info().Msg("Starting background job scheduler...")
	s.StartAsync()
	return s
}

func triggerScheduled(jm *Manager, jobID string) {
	log.Debug().Str("job", jobID).Msg("Scheduler is triggering job")
	err := jm.RunJob(jobID, nil)
	switch {
	case err == nil:
	case errors.Is(err, ErrJobRunning):
		log.Debug().Str("job", jobID).Msg("Skipping scheduled run, a job is already running")
	default:
		log.Warn().Err(err).Str("job", jobID).Msg("Scheduled job could not start")
	}
}
