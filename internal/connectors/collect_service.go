package connectors

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhillyerd/enmime"
	"go.uber.org/zap"

	"gerencial/internal"
	"gerencial/internal/storage"
)

// CollectService fetches messages and saves every attachment named like a
// configured extract into the data directory, replacing the older extract.
type CollectService struct {
	db        *storage.DB
	connector MailConnector
	store     *MailStoreService
	basePath  string
	wanted    map[string]string
	log       *zap.Logger
}

type CollectResult struct {
	Fetched int
	Stored  int
	Saved   []string
}

// NewCollectService takes wanted as returned by config.Config.ExtractFileNames.
func NewCollectService(db *storage.DB, rawMailDir, basePath string, wanted map[string]string, connector MailConnector, log *zap.Logger) *CollectService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CollectService{
		db:        db,
		connector: connector,
		store:     NewMailStoreService(db, rawMailDir),
		basePath:  basePath,
		wanted:    wanted,
		log:       log,
	}
}

func (s *CollectService) Collect(ctx context.Context, label string, max int) (CollectResult, error) {
	messages, err := s.connector.FetchInbox(ctx, label, max)
	if err != nil {
		return CollectResult{}, err
	}

	result := CollectResult{Fetched: len(messages)}
	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		email, err := s.store.Store(msg)
		if err != nil {
			return result, err
		}
		result.Stored++
		if email.Status == EmailCollected {
			continue
		}

		saved, err := s.SaveAttachments(email, msg.Raw)
		if err != nil {
			return result, fmt.Errorf("message %s: %w", msg.MessageID, err)
		}
		result.Saved = append(result.Saved, saved...)
		if err := s.db.UpdateEmailStatus(email.ID, EmailCollected); err != nil {
			return result, err
		}
	}

	s.log.Info("extracts collected",
		zap.String("label", label),
		zap.Int("fetched", result.Fetched),
		zap.Int("stored", result.Stored),
		zap.Strings("saved", result.Saved))
	return result, nil
}

// SaveAttachments writes the message's extract attachments under the data directory
// and returns their paths. Attachments already recorded for the message are skipped.
func (s *CollectService) SaveAttachments(email internal.EmailRow, raw []byte) ([]string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	recorded, err := s.db.ListAttachments(email.ID)
	if err != nil {
		return nil, err
	}
	done := map[string]bool{}
	for _, r := range recorded {
		done[r.FileName] = true
	}

	parts := append(append([]*enmime.Part{}, env.Attachments...), env.Inlines...)
	var saved []string
	for _, att := range parts {
		name := strings.TrimSpace(att.FileName)
		if name == "" {
			continue
		}
		rel, ok := s.wanted[strings.ToLower(filepath.Base(name))]
		if !ok {
			s.log.Debug("attachment ignored", zap.String("file", name), zap.String("message_id", email.MessageID))
			continue
		}

		if done[rel] {
			continue
		}

		path := filepath.Join(s.basePath, rel)
		if err := writeFileAtomic(path, att.Content); err != nil {
			return saved, err
		}
		if _, err := s.db.InsertAttachment(email.ID, rel, path, sha256Hex(att.Content)); err != nil {
			return saved, err
		}
		done[rel] = true
		saved = append(saved, path)
	}
	return saved, nil
}

func writeFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".extract-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

type MessageHeaders struct {
	MessageID string
	Subject   string
	From      string
	Date      string
}

// HeadersFromRaw reads the identifying headers out of a raw message.
func HeadersFromRaw(raw []byte) (MessageHeaders, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return MessageHeaders{}, err
	}
	return MessageHeaders{
		MessageID: strings.TrimSpace(env.GetHeader("Message-ID")),
		Subject:   env.GetHeader("Subject"),
		From:      env.GetHeader("From"),
		Date:      env.GetHeader("Date"),
	}, nil
}
