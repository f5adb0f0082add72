package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"gerencial/internal/config"
	"gerencial/internal/connectors"
	"gerencial/internal/listener"
	"gerencial/internal/logging"
	"gerencial/internal/pipeline"
	"gerencial/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	log, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	must(err)
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := os.Args[1]
	switch cmd {
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		base := fs.String("base", "", "directory holding the extracts (overrides BASE_PATH)")
		out := fs.String("out", "", "report file (overrides OUTPUT_FILE)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*base) != "" {
			cfg.BasePath = *base
		}
		if strings.TrimSpace(*out) != "" {
			cfg.OutputFile = *out
		}

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		result, err := pipeline.NewService(cfg, db, log).Run(ctx)
		must(err)
		fmt.Printf("report written run=%s output=%s %s\n", result.ID, result.OutputPath, formatCounts(result.Counts))
	case "extracts:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", cfg.ListenerProvider, "gmail|imap")
		label := fs.String("label", cfg.ListenerLabel, "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		conn, err := listener.MakeConnector(ctx, cfg, strings.ToLower(strings.TrimSpace(*provider)))
		must(err)
		collect := connectors.NewCollectService(db, cfg.RawMailDir, cfg.BasePath, cfg.ExtractFileNames(), conn, log)
		result, err := collect.Collect(ctx, *label, *max)
		must(err)
		fmt.Printf("extracts fetched provider=%s fetched=%d stored=%d saved=%d\n", *provider, result.Fetched, result.Stored, len(result.Saved))
		for _, path := range result.Saved {
			fmt.Printf("  %s\n", path)
		}
	case "listen":
		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		must(listener.NewService(db, cfg, log).Run(ctx))
	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "number of runs")
		_ = fs.Parse(os.Args[2:])

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		runs, err := db.ListRuns(*limit)
		must(err)
		for _, r := range runs {
			finished := "-"
			if r.FinishedAt != nil {
				finished = r.FinishedAt.Local().Format("2006-01-02 15:04:05")
			}
			line := fmt.Sprintf("%s  %s  %s  %-7s %s", r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), finished, r.Status, formatCounts(r.Counts))
			if r.Error != "" {
				line += "  error=" + r.Error
			}
			fmt.Println(line)
		}
	default:
		log.Error("unknown command", zap.String("command", cmd))
		usage()
		os.Exit(1)
	}
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}

func usage() {
	fmt.Println("usage: gerencial <command>")
	fmt.Println("commands:")
	fmt.Println("  run [--base=data/] [--out=output.xlsx]")
	fmt.Println("  extracts:fetch --provider=gmail|imap --label=INBOX --max=50")
	fmt.Println("  listen")
	fmt.Println("  runs:list --limit=20")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
