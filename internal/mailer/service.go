package mailer

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/mateenikhtiyar/cim-backend/config"
	"github.com/mateenikhtiyar/cim-backend/internal/logging"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Attachment is an optional file sent along with a message.
type Attachment struct {
	Filename string
	Content  []byte
}

// Dispatcher is the outbound-mail collaborator consumed by the identity core.
// Failures are always reported to the caller; whether they are fatal is the
// caller's decision.
type Dispatcher interface {
	Send(ctx context.Context, to, recipientKind, subject, htmlBody string, attachments ...Attachment) error
}

type Service struct {
	config *config.MailConfig
	client *mail.Client
	logger *logging.Service
}

var _ Dispatcher = (*Service)(nil)

func NewService(cfg *config.MailConfig, logger *logging.Service) (*Service, error) {
	if cfg.FromAddress == "" {
		logger.Error("mail service initialization failed: FROM_ADDRESS is required")
		return nil, fmt.Errorf("CIM_MAIL_FROM_ADDRESS is required")
	}

	clientOpts := []mail.Option{
		mail.WithPort(cfg.Port),
	}

	if cfg.Username != "" {
		clientOpts = append(clientOpts, mail.WithSMTPAuth(mail.SMTPAuthPlain), mail.WithUsername(cfg.Username))
	}
	if cfg.Password != "" {
		clientOpts = append(clientOpts, mail.WithPassword(cfg.Password))
	}

	switch cfg.Encryption {
	case "ssl":
		clientOpts = append(clientOpts, mail.WithSSL())
	case "none":
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.NoTLS))
	default:
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(cfg.Host, clientOpts...)
	if err != nil {
		logger.Error("failed to create mail client",
			zap.Error(err),
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port))
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	logger.Info("mail service initialized",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("from_address", cfg.FromAddress))

	return &Service{config: cfg, client: client, logger: logger}, nil
}

func (s *Service) Send(ctx context.Context, to, recipientKind, subject, htmlBody string, attachments ...Attachment) error {
	message := mail.NewMsg()

	fromAddr := s.config.FromAddress
	if s.config.FromName != "" {
		fromAddr = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress)
	}
	if err := message.From(fromAddr); err != nil {
		return fmt.Errorf("failed to set FROM address: %w", err)
	}
	if err := message.To(to); err != nil {
		return fmt.Errorf("failed to set TO address: %w", err)
	}

	message.Subject(subject)
	message.SetBodyString(mail.TypeTextHTML, htmlBody)

	for _, att := range attachments {
		if err := message.AttachReader(att.Filename, bytes.NewReader(att.Content)); err != nil {
			return fmt.Errorf("failed to attach %s: %w", att.Filename, err)
		}
	}

	startTime := time.Now()
	err := s.client.DialAndSendWithContext(ctx, message)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("failed to send email",
			zap.Error(err),
			zap.String("recipient_kind", recipientKind),
			zap.Duration("attempt_duration", duration))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		zap.String("recipient_kind", recipientKind),
		zap.String("subject", subject),
		zap.Duration("send_duration", duration))
	return nil
}
