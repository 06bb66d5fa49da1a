package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"kafila-ticketing/internal/config"

	"github.com/wneessen/go-mail"
)

// SMTPSender is a long-lived mail client built once at startup. A go-mail
// client holds one connection, so sends are serialized.
type SMTPSender struct {
	mu     sync.Mutex
	client *mail.Client
}

func NewSMTPSender(cfg config.EmailConfig) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTimeout(15 * time.Second),
		mail.WithTLSConfig(&tls.Config{
			ServerName:         cfg.SMTPHost,
			InsecureSkipVerify: cfg.SkipTLSVerify,
			MinVersion:         tls.VersionTLS12,
		}),
	}
	if cfg.ImplicitTLS {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &SMTPSender{client: client}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msgs ...*mail.Msg) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client.DialAndSendWithContext(ctx, msgs...)
}

// Close drops any connection left open by a failed send.
func (s *SMTPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client.Close()
}
