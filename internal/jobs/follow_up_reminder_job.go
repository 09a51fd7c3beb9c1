package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"github.com/tripdesk/agency-api/internal/domain"
	"go.uber.org/zap"
)

const FollowUpReminderJobName = "follow_up_reminders"

// DueFollowUps lists the leads whose next follow-up falls today
type DueFollowUps interface {
	DueToday(ctx context.Context) ([]domain.SalesClient, error)
}

// ReminderNotifier creates a notification unless an equal one already
// exists for the entity since the given time
type ReminderNotifier interface {
	CreateOnce(
		ctx context.Context,
		userID uuid.UUID,
		notificationType domain.NotificationType,
		title, message, entityType string,
		entityID uuid.UUID,
		since time.Time,
	) (bool, error)
}

// FollowUpReminderJob notifies each sales person of the leads they have to
// call back today. Running it twice on the same day sends nothing new.
type FollowUpReminderJob struct {
	followUps DueFollowUps
	notifier  ReminderNotifier
	loc       *time.Location
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewFollowUpReminderJob(followUps DueFollowUps, notifier ReminderNotifier, loc *time.Location, timeout time.Duration, logger *zap.Logger) *FollowUpReminderJob {
	if loc == nil {
		loc = time.UTC
	}
	return &FollowUpReminderJob{
		followUps: followUps,
		notifier:  notifier,
		loc:       loc,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

// Run is the cron entry point
func (j *FollowUpReminderJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	sent, err := j.RunOnce(ctx)
	if err != nil {
		j.logger.Error("follow-up reminder job failed", zap.Int("sent", sent), zap.Error(err))
		return
	}
	j.logger.Info("follow-up reminders sent", zap.Int("sent", sent))
}

// RunOnce sends today's reminders and returns how many were created
func (j *FollowUpReminderJob) RunOnce(ctx context.Context) (int, error) {
	due, err := j.followUps.DueToday(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load due follow-ups: %w", err)
	}

	startOfDay := now.With(j.now().In(j.loc)).BeginningOfDay()
	sent := 0
	var firstErr error
	for _, lead := range due {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		created, err := j.notifier.CreateOnce(ctx,
			lead.SalesPersonID,
			domain.NotificationTypeFollowUpDue,
			"Follow-up due today",
			reminderMessage(&lead),
			"sales_client",
			lead.ID,
			startOfDay,
		)
		if err != nil {
			j.logger.Warn("failed to send follow-up reminder",
				zap.String("salesClientId", lead.ID.String()),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if created {
			sent++
		}
	}
	return sent, firstErr
}

func reminderMessage(lead *domain.SalesClient) string {
	msg := lead.Name
	if lead.Destination != "" {
		msg += " (" + lead.Destination + ")"
	}
	if lead.NextFollowUpTime != "" {
		return fmt.Sprintf("%s is due for a follow-up at %s", msg, lead.NextFollowUpTime)
	}
	return msg + " is due for a follow-up today"
}
