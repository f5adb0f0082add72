package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"gerencial/internal"
	"gerencial/internal/config"
	"gerencial/internal/connectors"
)

// extractQuery narrows the listing to messages that can carry an extract.
const extractQuery = "has:attachment filename:csv"

type Connector struct {
	service  *gmail.Service
	lookback int
	limiter  *rateLimiter
}

func NewConnector(ctx context.Context, cfg config.Config) (*Connector, error) {
	if err := cfg.Require("GMAIL_CLIENT_ID", cfg.GmailClientID); err != nil {
		return nil, err
	}
	if err := cfg.Require("GMAIL_CLIENT_SECRET", cfg.GmailClientSecret); err != nil {
		return nil, err
	}
	if err := cfg.Require("GMAIL_REFRESH_TOKEN", cfg.GmailRefreshToken); err != nil {
		return nil, err
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GmailClientID,
		ClientSecret: cfg.GmailClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.GmailRedirectURI,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}

	tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.GmailRefreshToken})
	svc, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &Connector{
		service:  svc,
		lookback: cfg.MailLookbackDays,
		limiter:  newRateLimiter(cfg.GmailRequestsPerSec),
	}, nil
}

func (c *Connector) FetchInbox(ctx context.Context, label string, max int) ([]internal.FetchedMailMessage, error) {
	query := extractQuery
	if c.lookback > 0 {
		query = fmt.Sprintf("%s newer_than:%dd", query, c.lookback)
	}
	if err := c.limiter.wait(ctx); err != nil {
		return nil, err
	}
	listResp, err := c.service.Users.Messages.List("me").LabelIds(label).Q(query).MaxResults(int64(max)).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	out := make([]internal.FetchedMailMessage, 0, len(listResp.Messages))
	for _, msgRef := range listResp.Messages {
		if msgRef.Id == "" {
			continue
		}

		if err := c.limiter.wait(ctx); err != nil {
			return nil, err
		}
		rawResp, err := c.service.Users.Messages.Get("me", msgRef.Id).Format("raw").Context(ctx).Do()
		if err != nil {
			return nil, err
		}
		if rawResp.Raw == "" {
			continue
		}
		rawBytes, err := decodeBase64URL(rawResp.Raw)
		if err != nil {
			return nil, err
		}

		headers, err := connectors.HeadersFromRaw(rawBytes)
		if err != nil {
			return nil, fmt.Errorf("parse gmail message %s: %w", msgRef.Id, err)
		}

		received := time.UnixMilli(rawResp.InternalDate).UTC()
		if rawResp.InternalDate == 0 {
			received = time.Now().UTC()
			if t, err := mailDate(headers.Date); err == nil {
				received = t.UTC()
			}
		}

		messageID := headers.MessageID
		if messageID == "" {
			messageID = msgRef.Id
		}

		out = append(out, internal.FetchedMailMessage{
			Provider:   "gmail",
			MessageID:  messageID,
			Subject:    headers.Subject,
			From:       headers.From,
			ReceivedAt: received.Format(time.RFC3339),
			Raw:        rawBytes,
		})
	}

	return out, nil
}

func decodeBase64URL(input string) ([]byte, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(input)
	if err == nil {
		return decoded, nil
	}
	decoded, err = base64.URLEncoding.DecodeString(input)
	if err == nil {
		return decoded, nil
	}
	return nil, fmt.Errorf("decode gmail raw payload: %w", err)
}

func mailDate(value string) (time.Time, error) {
	layouts := []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822, time.RFC850, time.ANSIC}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format")
}
