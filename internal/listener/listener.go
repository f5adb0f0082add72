// Package listener polls the mailbox for fresh extracts and rebuilds the report
// whenever one arrives.
package listener

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"gerencial/internal/config"
	"gerencial/internal/connectors"
	gmailconnector "gerencial/internal/connectors/gmail"
	imapconnector "gerencial/internal/connectors/imap"
	"gerencial/internal/pipeline"
	"gerencial/internal/storage"
)

// Runner rebuilds the report. *pipeline.Service satisfies it.
type Runner interface {
	Run(ctx context.Context) (pipeline.RunResult, error)
}

type Service struct {
	db        *storage.DB
	cfg       config.Config
	log       *zap.Logger
	runner    Runner
	connector connectors.MailConnector
}

func NewService(db *storage.DB, cfg config.Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		db:     db,
		cfg:    cfg,
		log:    log,
		runner: pipeline.NewService(cfg, db, log.Named("pipeline")),
	}
}

func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.ListenerIntervalSec) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	for {
		if err := s.RunCycle(ctx); err != nil {
			s.log.Error("listener cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// RunCycle collects extracts once and runs the pipeline when any were saved.
func (s *Service) RunCycle(ctx context.Context) error {
	conn := s.connector
	if conn == nil {
		provider := strings.ToLower(strings.TrimSpace(s.cfg.ListenerProvider))
		var err error
		conn, err = MakeConnector(ctx, s.cfg, provider)
		if err != nil {
			return err
		}
	}

	collect := connectors.NewCollectService(s.db, s.cfg.RawMailDir, s.cfg.BasePath, s.cfg.ExtractFileNames(), conn, s.log.Named("collect"))
	collected, err := collect.Collect(ctx, s.cfg.ListenerLabel, s.cfg.ListenerFetchMax)
	if err != nil {
		return err
	}
	if len(collected.Saved) == 0 {
		s.log.Debug("no new extracts", zap.Int("fetched", collected.Fetched))
		return nil
	}

	result, err := s.runner.Run(ctx)
	if err != nil {
		return err
	}
	s.log.Info("listener cycle done",
		zap.Int("fetched", collected.Fetched),
		zap.Int("saved", len(collected.Saved)),
		zap.String("run_id", result.ID))
	return nil
}

func MakeConnector(ctx context.Context, cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(ctx, cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}
