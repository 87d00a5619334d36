package userservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/sushihentaime/quill/internal/common"
)

const publishTimeout = 5 * time.Second

// publish sends a user event when a broker is configured. Failures are logged and counted only.
func (s *UserService) publish(ctx context.Context, key common.BindingKey, u *User) {
	if s.mb == nil {
		return
	}

	body, err := json.Marshal(UserEvent{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		OccurredAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.Error("could not encode user event", slog.String("event", string(key)), slog.String("error", err.Error()))
		common.UserEventsTotal.WithLabelValues(string(key), "failed").Inc()
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := s.mb.Publish(ctx, body, key, common.UserExchange); err != nil {
		s.logger.Error("could not publish user event", slog.String("event", string(key)), slog.String("error", err.Error()))
		common.UserEventsTotal.WithLabelValues(string(key), "failed").Inc()
		return
	}

	common.UserEventsTotal.WithLabelValues(string(key), "published").Inc()
}
