package email

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DevSender writes emails to disk instead of sending them. Used in local
// development where no Postmark token is configured.
type DevSender struct {
	dir string
}

// NewDevSender creates a development sender saving emails under dir.
func NewDevSender(dir string) *DevSender {
	return &DevSender{dir: dir}
}

type devMetadata struct {
	Timestamp string `json:"timestamp"`
	To        string `json:"to"`
	ReplyTo   string `json:"reply_to,omitempty"`
	Subject   string `json:"subject"`
}

// Send saves the message as an HTML file plus a JSON metadata file
func (s *DevSender) Send(ctx context.Context, params SendParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create dir: %v", ErrFailedToSend, err)
	}

	now := time.Now()
	base := fmt.Sprintf("%s_%s", now.Format("2006_01_02_150405"), sanitizeFilename(params.Subject))

	if err := os.WriteFile(filepath.Join(s.dir, base+".html"), []byte(params.BodyHTML), 0o644); err != nil {
		return fmt.Errorf("%w: write html: %v", ErrFailedToSend, err)
	}

	meta, err := json.MarshalIndent(devMetadata{
		Timestamp: now.Format(time.RFC3339),
		To:        params.To,
		ReplyTo:   params.ReplyTo,
		Subject:   params.Subject,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal metadata: %v", ErrFailedToSend, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, base+".json"), meta, 0o644); err != nil {
		return fmt.Errorf("%w: write metadata: %v", ErrFailedToSend, err)
	}

	return nil
}

var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = sanitizeRegex.ReplaceAllString(s, "")
	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
