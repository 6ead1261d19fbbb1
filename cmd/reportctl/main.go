package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/marketplace-reports/cmd/reportctl/cli"
	"github.com/odyssey-erp/marketplace-reports/internal/app"
	"github.com/odyssey-erp/marketplace-reports/internal/document"
	"github.com/odyssey-erp/marketplace-reports/internal/sink"
	"github.com/odyssey-erp/marketplace-reports/jobs"
)

var (
	outDir    string
	format    string
	backend   string
	olderThan time.Duration
	queueName string
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "reportctl",
		Short:        "Render marketplace reports and manage export jobs",
		SilenceUsage: true,
	}

	render := &cobra.Command{
		Use:   "render <input.json>",
		Short: "Render a JSON input file to HTML or PDF",
		Long:  "Reads {role, options, appointment|appointments|analytics} from a file (or - for stdin) and writes the document into --out.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}
	render.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	render.Flags().StringVarP(&format, "format", "f", string(cli.FormatPDF), "html or pdf")
	render.Flags().StringVar(&backend, "backend", app.BackendRod, "PDF backend: rod, chromedp or gotenberg")

	config := &cobra.Command{
		Use:   "config <role>",
		Short: "Print the resolved render configuration for a role",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfig,
	}

	jobsCmd := &cobra.Command{Use: "jobs", Short: "Inspect and trigger export jobs"}
	sweep := &cobra.Command{
		Use:   "sweep",
		Short: "Enqueue removal of generated PDFs past retention",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweep.Flags().DurationVar(&olderThan, "older-than", 72*time.Hour, "remove files older than this")
	retry := &cobra.Command{
		Use:   "retry <export-id>",
		Short: "Re-enqueue a pending or failed export",
		Args:  cobra.ExactArgs(1),
		RunE:  runRetry,
	}
	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show queue counters",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
	stats.Flags().StringVar(&queueName, "queue", jobs.QueueExports, "queue to inspect")
	jobsCmd.AddCommand(sweep, retry, stats)

	root.AddCommand(render, config, jobsCmd)
	return root
}

func loadConfig() (*app.Config, *slog.Logger, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, app.NewLogger(cfg), nil
}

func readInput(path string, stdin io.Reader) (cli.Input, error) {
	if path == "-" {
		return cli.ReadInput(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return cli.Input{}, err
	}
	defer f.Close()
	return cli.ReadInput(f)
}

func runRender(cmd *cobra.Command, args []string) error {
	f, err := cli.ParseFormat(format)
	if err != nil {
		return err
	}
	in, err := readInput(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	assembler, err := app.NewAssembler(cfg, logger)
	if err != nil {
		return err
	}
	env, err := sink.NewDirEnvironment(outDir, logger)
	if err != nil {
		return err
	}

	var out sink.Sink
	if f == cli.FormatHTML {
		out = sink.NewPrintWindowSink(env, logger)
	} else {
		cfg.PDFBackend = backend
		cfg.ExportStorageDir = outDir
		if err := cfg.Validate(); err != nil {
			return err
		}
		pdf, err := app.NewPDFBackend(cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := pdf.Close(); err != nil {
				logger.Warn("pdf backend close", slog.Any("error", err))
			}
		}()
		out = pdf.Sink(env)
	}

	res, err := cli.Render(cmd.Context(), assembler, in, out)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func runConfig(cmd *cobra.Command, args []string) error {
	role, err := document.ParseRole(args[0])
	if err != nil {
		return err
	}
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	assembler, err := app.NewAssembler(cfg, logger)
	if err != nil {
		return err
	}
	resolved, err := assembler.Resolve(role, document.Options{})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resolved)
}

func jobsCLI() (*cli.JobsCLI, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cli.NewJobsCLI(cfg.Redis().AsynqOpt())
}

func runSweep(cmd *cobra.Command, _ []string) error {
	c, err := jobsCLI()
	if err != nil {
		return err
	}
	defer c.Close()
	info, err := c.Sweep(cmd.Context(), olderThan)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s (%s)\n", info.ID, info.Queue)
	return nil
}

func runRetry(cmd *cobra.Command, args []string) error {
	c, err := jobsCLI()
	if err != nil {
		return err
	}
	defer c.Close()
	info, err := c.Retry(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s (%s)\n", info.ID, info.Queue)
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	c, err := jobsCLI()
	if err != nil {
		return err
	}
	defer c.Close()
	stats, err := c.InspectQueue(cmd.Context(), queueName)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: pending=%d active=%d scheduled=%d retry=%d failed=%d\n",
		stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Failed)
	return nil
}
