package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/example/studybot/internal/workflow"
	"github.com/example/studybot/pkg/models"
	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
)

// Notifier delivers generated plans to the learner.
type Notifier interface {
	SendPlans(plans []models.DayPlan) error
}

// Scheduler runs the daily study-plan job.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *workflow.Service
	notifier  Notifier
	horizon   int
	log       *logrus.Logger
}

// New creates a scheduler instance around the review workflow.
func New(service *workflow.Service, notifier Notifier, horizonDays int, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		service:   service,
		notifier:  notifier,
		horizon:   horizonDays,
		log:       log,
	}
}

// Start schedules the daily plan generation at the given hour and begins
// running in the background.
func (s *Scheduler) Start(planHour int) error {
	at := fmt.Sprintf("%02d:00", planHour)
	if _, err := s.scheduler.Every(1).Day().At(at).Do(s.runDailyPlan); err != nil {
		return fmt.Errorf("failed to schedule daily plan job: %v", err)
	}
	s.scheduler.StartAsync()
	s.log.Infof("daily plan job scheduled at %s", at)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// RunDailyPlan forces one plan-and-deliver cycle outside the schedule.
func (s *Scheduler) RunDailyPlan() error {
	return s.runDailyPlan()
}

func (s *Scheduler) runDailyPlan() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Сначала применяем накопившиеся события, чтобы план строился на
	// актуальных датах повторения.
	if _, err := s.service.ProcessEvents(ctx); err != nil {
		s.log.Errorf("daily job: processing events failed: %v", err)
	}

	plans, err := s.service.GeneratePlan(ctx, time.Now(), s.horizon)
	if err != nil {
		s.log.Errorf("daily job: plan generation failed: %v", err)
		if plans == nil {
			return err
		}
	}

	if s.notifier != nil {
		if err := s.notifier.SendPlans(plans); err != nil {
			s.log.Errorf("daily job: plan delivery failed: %v", err)
			return err
		}
	}
	return nil
}
