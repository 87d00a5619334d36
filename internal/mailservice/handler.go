package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sushihentaime/quill/internal/common"
	"golang.org/x/exp/rand"
)

func NewMailService(mb common.MessageConsumer, cfg MailConfig, logger *slog.Logger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:        mb,
		m:         NewMailer(cfg, NewTemplate()),
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		retries:   defaultRetries,
		baseDelay: defaultBaseDelay,
	}
}

// SendWelcomeEmail consumes user.created events and mails every new user until Close is called.
func (s *MailService) SendWelcomeEmail() error {
	msgs, err := s.mb.Consume(common.UserCreatedKey, common.UserExchange, common.UserCreatedQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				s.handleUserCreated(msg)

			case <-s.ctx.Done():
				s.logger.Info("stopping welcome email consumer")
				return
			}
		}
	}()

	return nil
}

func (s *MailService) handleUserCreated(msg amqp.Delivery) {
	var event struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	if err := json.Unmarshal(msg.Body, &event); err != nil || event.Email == "" {
		s.logger.Error("dropping malformed user.created message", slog.String("body", string(msg.Body)))
		_ = msg.Nack(false, false)
		return
	}

	data := welcomeData{Name: event.Name, Email: event.Email}

	// exponential backoff with jitter
	for attempt := 0; attempt < s.retries; attempt++ {
		err := s.m.send(event.Email, data, WelcomeTemplate)
		if err == nil {
			s.logger.Info("welcome email sent", slog.String("email", event.Email))
			_ = msg.Ack(false)
			return
		}

		delay := time.Duration(rand.Int63n(int64(s.baseDelay) << uint(attempt)))
		s.logger.Info("delaying welcome email", slog.String("email", event.Email), slog.Int("attempt", attempt), slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			_ = msg.Nack(false, true)
			return
		}
	}

	s.logger.Error("could not send welcome email", slog.String("email", event.Email))
	_ = msg.Ack(false)
}

// Close stops the consumer and waits for the message in flight.
func (s *MailService) Close() {
	s.cancel()
	s.wg.Wait()
}
