package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"

	"github.com/houseoftheai/server/internal/config"
)

type postmarkSender struct {
	client *postmark.Client
	cfg    config.EmailConfig
}

// NewPostmarkSender creates a Postmark-backed sender. The server token is
// required; configuration without one should use NewDevSender instead.
func NewPostmarkSender(cfg config.EmailConfig) (Sender, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: POSTMARK_SERVER_TOKEN is required", ErrInvalidParams)
	}
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("%w: SENDER_EMAIL is required", ErrInvalidParams)
	}

	return &postmarkSender{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		cfg:    cfg,
	}, nil
}

// Send dispatches the message through Postmark's transactional API
func (s *postmarkSender) Send(ctx context.Context, params SendParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:     fmt.Sprintf("%s <%s>", s.cfg.SenderName, s.cfg.SenderEmail),
		ReplyTo:  params.ReplyTo,
		To:       params.To,
		Subject:  params.Subject,
		HTMLBody: params.BodyHTML,
	})
	if err != nil {
		return errors.Join(ErrFailedToSend, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrFailedToSend, fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return nil
}
