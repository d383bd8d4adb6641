package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/storefront/pkg/circuitbreaker"
	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPSender delivers messages over authenticated SMTP with STARTTLS.
type SMTPSender struct {
	client  *mail.Client
	from    string
	breaker *circuitbreaker.Breaker
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	return &SMTPSender{
		client:  client,
		from:    from,
		breaker: circuitbreaker.New("smtp"),
	}, nil
}

// Send delivers all messages over a single connection.
func (s *SMTPSender) Send(ctx context.Context, msgs ...Message) error {
	built := make([]*mail.Msg, 0, len(msgs))
	for _, m := range msgs {
		if m.From == "" {
			m.From = s.from
		}
		msg, err := build(m)
		if err != nil {
			return err
		}
		built = append(built, msg)
	}

	return s.breaker.Do(func() error {
		if err := s.client.DialAndSendWithContext(ctx, built...); err != nil {
			return fmt.Errorf("smtp send failed: %w", err)
		}
		return nil
	})
}

func build(m Message) (*mail.Msg, error) {
	if m.To == "" {
		return nil, ErrNoRecipient
	}

	msg := mail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", m.From, err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("invalid to address %q: %w", m.To, err)
	}
	if m.ReplyTo != "" {
		if err := msg.ReplyTo(m.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to address %q: %w", m.ReplyTo, err)
		}
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Text)
	if m.HTML != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, m.HTML)
	}
	return msg, nil
}
