// Package notify fans a single event out to in-app notifications and web
// push. Delivery is best effort; failures are logged and never surface to
// the operation that triggered them.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/push"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/store"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
)

const (
	maxConcurrentSends = 4
	sendTimeout        = 30 * time.Second
)

type Service struct {
	notifications *store.NotificationStore
	subscriptions *store.PushStore
	users         *store.UserStore
	sender        *push.Service // nil disables web push
	logger        *slog.Logger
}

func New(notifications *store.NotificationStore, subscriptions *store.PushStore, users *store.UserStore, sender *push.Service, logger *slog.Logger) *Service {
	return &Service{
		notifications: notifications,
		subscriptions: subscriptions,
		users:         users,
		sender:        sender,
		logger:        logger.With("component", "notify"),
	}
}

// Notify records an in-app notification for one user and pushes it to their
// registered devices in the background.
func (s *Service) Notify(familyID, userID int64, notifType, title, message string) {
	if _, err := s.notifications.Create(familyID, userID, notifType, title, message); err != nil {
		s.logger.Error("create notification", "user_id", userID, "error", err)
	}

	if s.sender == nil {
		return
	}
	go s.pushToUser(userID, notifType, push.Payload{Title: title, Body: message, Tag: notifType})
}

// NotifyFamily notifies every family member except the acting user. Pass
// excludeUserID 0 to notify everyone.
func (s *Service) NotifyFamily(familyID, excludeUserID int64, notifType, title, message string) {
	members, err := s.users.ListByFamily(familyID)
	if err != nil {
		s.logger.Error("list family members", "family_id", familyID, "error", err)
		return
	}
	for _, m := range members {
		if m.ID == excludeUserID {
			continue
		}
		s.Notify(familyID, m.ID, notifType, title, message)
	}
}

func (s *Service) pushToUser(userID int64, notifType string, payload push.Payload) {
	enabled, err := s.subscriptions.PreferenceEnabled(userID, notifType)
	if err != nil {
		s.logger.Error("check push preference", "user_id", userID, "error", err)
		return
	}
	if !enabled {
		return
	}

	subs, err := s.subscriptions.ListByUser(userID)
	if err != nil {
		s.logger.Error("list push subscriptions", "user_id", userID, "error", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentSends)
	for i := range subs {
		sub := subs[i]
		g.Go(func() error {
			s.send(ctx, &sub, payload)
			return nil
		})
	}
	g.Wait()
}

// send delivers to one endpoint with exponential backoff. A 410 from the
// push service means the browser dropped the subscription; prune it.
func (s *Service) send(ctx context.Context, sub *model.PushSubscription, payload push.Payload) {
	backoff := retry.WithMaxRetries(2, retry.NewExponential(500*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.sender.Send(sub, payload)
		if err == nil {
			return nil
		}
		if errors.Is(err, push.ErrExpired) {
			return err
		}
		return retry.RetryableError(err)
	})
	if err == nil {
		return
	}

	if errors.Is(err, push.ErrExpired) {
		if err := s.subscriptions.DeleteByEndpoint(sub.Endpoint); err != nil {
			s.logger.Error("prune expired subscription", "error", err)
		}
		return
	}
	s.logger.Error("send push", "endpoint", sub.Endpoint, "error", err)
}
