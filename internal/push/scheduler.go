package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/store"
)

// Scheduler periodically scans for calendar reminders and due chores and
// pushes them out. Deliveries are deduplicated through the push_sent table
// so a restart never re-sends a reminder.
type Scheduler struct {
	mu          sync.RWMutex
	service     *Service
	push        *store.PushStore
	events      *store.EventStore
	assignments *store.AssignmentStore
	logger      *slog.Logger
	interval    time.Duration
	cancel      context.CancelFunc
	done        chan struct{}
}

func NewScheduler(svc *Service, pushStore *store.PushStore, eventStore *store.EventStore, assignmentStore *store.AssignmentStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service:     svc,
		push:        pushStore,
		events:      eventStore,
		assignments: assignmentStore,
		logger:      logger.With("component", "push_scheduler"),
		interval:    60 * time.Second,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(time.Now().UTC())
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(now time.Time) {
	s.sendCalendarReminders(now)
	s.sendDueChoreReminders(now)
}

func (s *Scheduler) sendCalendarReminders(now time.Time) {
	events, err := s.events.ListUpcomingReminders(now, now.Add(s.interval))
	if err != nil {
		s.logger.Error("list calendar reminders", "error", err)
		return
	}

	for _, event := range events {
		refID := fmt.Sprintf("event-%d-%s", event.ID, event.StartTime.Format(time.RFC3339))
		sent, err := s.push.WasSent(event.FamilyID, model.NotifCalendarReminder, refID)
		if err != nil {
			s.logger.Error("check reminder sent", "error", err)
			continue
		}
		if sent {
			continue
		}

		minutes := 0
		if event.ReminderMinutes != nil {
			minutes = *event.ReminderMinutes
		}
		payload := Payload{
			Title: "Calendar reminder",
			Body:  fmt.Sprintf("%s starts in %d minutes", event.Title, minutes),
			URL:   "/calendar",
			Tag:   fmt.Sprintf("calendar-%d", event.ID),
		}

		subs, err := s.push.ListByFamily(event.FamilyID)
		if err != nil {
			s.logger.Error("list subscriptions", "error", err)
			continue
		}
		for i := range subs {
			// Member-scoped events only ping the member.
			if event.MemberID != nil && subs[i].UserID != *event.MemberID {
				continue
			}
			s.deliver(&subs[i], model.NotifCalendarReminder, payload)
		}

		if err := s.push.RecordSent(event.FamilyID, model.NotifCalendarReminder, refID); err != nil {
			s.logger.Error("record reminder sent", "error", err)
		}
	}
}

// sendDueChoreReminders pushes each assignee a morning digest of their
// pending assignments due today. Runs once per family per day.
func (s *Scheduler) sendDueChoreReminders(now time.Time) {
	if now.Hour() < 8 {
		return
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	due, err := s.assignments.ListPendingDueBetween(dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		s.logger.Error("list due assignments", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}

	byUser := make(map[int64][]string)
	familyOf := make(map[int64]int64)
	for _, a := range due {
		byUser[a.AssignedTo] = append(byUser[a.AssignedTo], a.Title)
		familyOf[a.AssignedTo] = a.FamilyID
	}

	refDay := dayStart.Format("2006-01-02")
	for userID, titles := range byUser {
		familyID := familyOf[userID]
		refID := fmt.Sprintf("chores-due-%d-%s", userID, refDay)
		sent, err := s.push.WasSent(familyID, model.NotifChoreAssigned, refID)
		if err != nil || sent {
			continue
		}

		body := fmt.Sprintf("You have %d chores due today", len(titles))
		if len(titles) == 1 {
			body = fmt.Sprintf("Chore due today: %s", titles[0])
		}
		payload := Payload{
			Title: "Chores due",
			Body:  body,
			URL:   "/chores",
			Tag:   "chores-due",
		}

		subs, err := s.push.ListByUser(userID)
		if err != nil {
			s.logger.Error("list subscriptions", "error", err)
			continue
		}
		for i := range subs {
			s.deliver(&subs[i], model.NotifChoreAssigned, payload)
		}

		if err := s.push.RecordSent(familyID, model.NotifChoreAssigned, refID); err != nil {
			s.logger.Error("record digest sent", "error", err)
		}
	}
}

func (s *Scheduler) deliver(sub *model.PushSubscription, notifType string, payload Payload) {
	enabled, err := s.push.PreferenceEnabled(sub.UserID, notifType)
	if err != nil || !enabled {
		return
	}

	if err := s.service.Send(sub, payload); err != nil {
		if errors.Is(err, ErrExpired) {
			if err := s.push.DeleteByEndpoint(sub.Endpoint); err != nil {
				s.logger.Error("prune expired subscription", "error", err)
			}
			return
		}
		s.logger.Error("send push", "endpoint", sub.Endpoint, "error", err)
	}
}
