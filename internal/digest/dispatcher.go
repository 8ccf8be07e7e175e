package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/config"
	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/models"
	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/platform/logger"
)

// NewSender builds the transport selected by EMAIL_TRANSPORT.
func NewSender(cfg config.Config, log *logger.Logger) (Sender, error) {
	if err := cfg.ValidateEmail(); err != nil {
		return nil, err
	}
	switch cfg.EmailTransport {
	case config.TransportSendGrid:
		s, err := NewSendGridSender(log, SendGridConfig{
			APIKey:     cfg.SendGridAPIKey,
			BaseURL:    cfg.SendGridBaseURL,
			From:       cfg.EmailUser,
			To:         cfg.Recipient,
			Timeout:    cfg.EmailTimeout,
			MaxRetries: cfg.SendGridMaxRetries,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		s, err := NewSMTPSender(SMTPConfig{
			Host:     cfg.EmailHost,
			Port:     cfg.EmailPort,
			Username: cfg.EmailUser,
			Password: cfg.EmailPass,
			From:     cfg.EmailUser,
			To:       cfg.Recipient,
			Timeout:  cfg.EmailTimeout,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Dispatcher renders a digest and hands it to a Sender.
type Dispatcher struct {
	sender Sender
	log    *logger.Logger
}

func NewDispatcher(sender Sender, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{sender: sender, log: log}
}

// Dispatch succeeds only once the transport accepted the message.
func (d *Dispatcher) Dispatch(ctx context.Context, day time.Time, problems []models.Problem) error {
	msg, err := Render(day, problems)
	if err != nil {
		return err
	}
	if d.sender == nil {
		return fmt.Errorf("digest: no sender configured")
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	d.log.Info("digest sent", "subject", msg.Subject, "problems", len(problems))
	return nil
}
