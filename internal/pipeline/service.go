// Package pipeline runs the extract, transform and report stages end to end.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gerencial/internal"
	"gerencial/internal/config"
	"gerencial/internal/report"
	"gerencial/internal/source"
	"gerencial/internal/storage"
	"gerencial/internal/transform"
)

type Service struct {
	cfg        config.Config
	db         *storage.DB
	log        *zap.Logger
	reader     *source.Reader
	normalizer *transform.Normalizer
	now        func() time.Time
}

type RunResult struct {
	ID         string
	OutputPath string
	Counts     map[string]int
}

// companyTables holds one company's normalized datasets.
type companyTables struct {
	products   []internal.CatalogEntry
	production []internal.ProductionRecord
	invoices   []internal.InvoiceLine
	backlog    []internal.BacklogLine
	approvals  []internal.ApprovalRecord
}

// NewService wires the stages from cfg. db may be nil, in which case runs are not recorded.
func NewService(cfg config.Config, db *storage.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		cfg:        cfg,
		db:         db,
		log:        log,
		reader:     source.NewReader(cfg.SourceDelimiter, cfg.SourceEncoding),
		normalizer: transform.NewNormalizer(transform.DefaultRules(), log.Named("transform")),
		now:        time.Now,
	}
}

func (s *Service) Run(ctx context.Context) (RunResult, error) {
	result := RunResult{ID: uuid.New().String(), OutputPath: s.cfg.OutputPath()}
	start := s.now()
	log := s.log.With(zap.String("run_id", result.ID))

	if s.db != nil {
		if err := s.db.StartRun(result.ID, start); err != nil {
			return result, fmt.Errorf("record run start: %w", err)
		}
	}

	counts, err := s.run(ctx, result.OutputPath)
	result.Counts = counts

	if s.db != nil {
		if ferr := s.db.FinishRun(result.ID, s.now(), result.OutputPath, counts, err); ferr != nil {
			log.Warn("record run finish failed", zap.Error(ferr))
		}
		if err == nil {
			stamp := fmt.Sprintf("%s %s", s.now().Format(time.RFC3339), result.OutputPath)
			if merr := s.db.SetMetadata(storage.MetaLastSuccess, stamp); merr != nil {
				log.Warn("record last success failed", zap.Error(merr))
			}
		}
	}

	if err != nil {
		return result, err
	}
	log.Info("run done",
		zap.String("output", result.OutputPath),
		zap.Any("rows", counts),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (s *Service) run(ctx context.Context, outputPath string) (map[string]int, error) {
	if len(s.cfg.Companies) == 0 {
		return nil, fmt.Errorf("no companies configured")
	}

	perCompany := make([]companyTables, len(s.cfg.Companies))
	g, gctx := errgroup.WithContext(ctx)
	if !s.cfg.ParallelCompanies {
		g.SetLimit(1)
	}
	for i, company := range s.cfg.Companies {
		i, company := i, company
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tables, err := s.loadCompany(company)
			if err != nil {
				return err
			}
			perCompany[i] = tables
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all companyTables
	for _, t := range perCompany {
		all.products = append(all.products, t.products...)
		all.production = append(all.production, t.production...)
		all.invoices = append(all.invoices, t.invoices...)
		all.backlog = append(all.backlog, t.backlog...)
		all.approvals = append(all.approvals, t.approvals...)
	}

	relabeled := s.normalizer.RelabelProductionGroups(all.products)
	s.log.Debug("production groups relabeled", zap.Int("rows", relabeled))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	backlog, err := s.normalizer.EnrichCarteira(all.backlog, all.products)
	if err != nil {
		return nil, err
	}

	sheets := []report.Sheet{
		report.ProdutosSheet(all.products),
		report.ProducaoSheet(all.production),
		report.FaturamentoSheet(all.invoices),
		report.CarteiraSheet(backlog),
		report.F9Sheet(all.approvals),
		report.AtualizacaoSheet(s.now()),
	}
	if err := report.Write(outputPath, sheets); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(sheets))
	for _, sh := range sheets {
		counts[sh.Name] = len(sh.Rows)
	}
	return counts, nil
}

func (s *Service) loadCompany(company config.Company) (companyTables, error) {
	read := func(ds internal.Dataset) (*source.Table, error) {
		return s.reader.Read(company.File(s.cfg.BasePath, ds), company.Name)
	}

	var out companyTables
	t, err := read(internal.DatasetProdutos)
	if err != nil {
		return out, err
	}
	products, idx, err := s.normalizer.Produtos(t, company.Name)
	if err != nil {
		return out, err
	}
	out.products = products

	if t, err = read(internal.DatasetProducao); err != nil {
		return out, err
	}
	if out.production, err = s.normalizer.Producao(t, idx, company.Name); err != nil {
		return out, err
	}

	if t, err = read(internal.DatasetFaturamento); err != nil {
		return out, err
	}
	if out.invoices, err = s.normalizer.Faturamento(t, company.Name); err != nil {
		return out, err
	}

	if t, err = read(internal.DatasetCarteira); err != nil {
		return out, err
	}
	if out.backlog, err = s.normalizer.Carteira(t, idx, company.Name); err != nil {
		return out, err
	}

	if t, err = read(internal.DatasetF9); err != nil {
		return out, err
	}
	if out.approvals, err = s.normalizer.F9(t, company.Name); err != nil {
		return out, err
	}

	s.log.Info("company loaded",
		zap.String("company", company.Name),
		zap.Int("products", len(out.products)),
		zap.Int("production", len(out.production)),
		zap.Int("invoices", len(out.invoices)),
		zap.Int("backlog", len(out.backlog)),
		zap.Int("approvals", len(out.approvals)))
	return out, nil
}
