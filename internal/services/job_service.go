package services

import (
	"github.com/sjperalta/gymflow-api/internal/jobs"
)

type JobService struct {
	worker    *jobs.Worker
	scheduler *jobs.Scheduler
}

func NewJobService(worker *jobs.Worker, scheduler *jobs.Scheduler) *JobService {
	return &JobService{
		worker:    worker,
		scheduler: scheduler,
	}
}

func (s *JobService) GetStatus() map[string]interface{} {
	stats := s.worker.GetStats()
	status := map[string]interface{}{
		"active_jobs":    stats.ActiveJobs,
		"completed_jobs": stats.CompletedJobs,
		"failed_jobs":    stats.FailedJobs,
		"queue_length":   stats.QueueLength,
		"max_concurrent": stats.MaxConcurrent,
	}
	if s.scheduler != nil {
		status["scheduled_jobs"] = s.scheduler.Entries()
	}
	return status
}
