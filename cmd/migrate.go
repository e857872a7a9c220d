package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/my2lite/my2lite/internal/aws"
	"github.com/my2lite/my2lite/internal/config"
	"github.com/my2lite/my2lite/internal/ddl"
	"github.com/my2lite/my2lite/internal/lock"
	"github.com/my2lite/my2lite/internal/migration"
	"github.com/my2lite/my2lite/internal/report"
	"github.com/my2lite/my2lite/internal/source"
	"github.com/my2lite/my2lite/internal/state"
	"github.com/my2lite/my2lite/internal/target"
	"github.com/my2lite/my2lite/internal/tui"
	"github.com/my2lite/my2lite/internal/typemap"
)

var (
	migrateStrict    bool
	migrateReport    string
	migrateValidate  bool
	migrateNoTUI     bool
	migrateNoVacuum  bool
	migrateUpload    string
	migrateBatchSize int
	migrateInclude   []string
	migrateExclude   []string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy every MySQL table into the SQLite file",
	Long: `Translate each base table's CREATE TABLE statement, recreate the table in the
SQLite file and copy its rows in batches. A table that fails is reported and
skipped; the run exits 0 unless --strict is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyMigrateFlags(cmd, cfg)

		if problems := cfg.Validate(); len(problems) > 0 {
			for _, p := range problems {
				fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", p)
			}
			return fmt.Errorf("%d configuration error(s); set them in the config file or with flags", len(problems))
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runMigrate(ctx, stop, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func applyMigrateFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("batch-size") {
		cfg.Migration.BatchSize = migrateBatchSize
	}
	if f.Changed("include") {
		cfg.Migration.Include = migrateInclude
	}
	if f.Changed("exclude") {
		cfg.Migration.Exclude = migrateExclude
	}
	if f.Changed("validate") {
		cfg.Migration.Validate = migrateValidate
	}
	if f.Changed("upload") {
		if cfg.Target.Upload == nil {
			cfg.Target.Upload = &config.UploadConfig{}
		}
		cfg.Target.Upload.Bucket = migrateUpload
	}
	cfg.ApplyDefaults()
}

func runMigrate(ctx context.Context, cancel func(), cfg *config.Config, stdout, stderr io.Writer) error {
	logger, closeLog := setupLogger(cfg, stderr)
	defer closeLog()

	tm, err := typemap.Load(cfg.Migration.TypeMapping)
	if err != nil {
		return fmt.Errorf("loading type mapping: %w", err)
	}

	var publisher *aws.Publisher
	if up := cfg.Target.Upload; up != nil {
		client, err := aws.NewRealClient(ctx, up.Profile, up.Region)
		if err != nil {
			return fmt.Errorf("creating AWS client: %w", err)
		}
		id, err := aws.CheckCredentials(ctx, client)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Uploading to s3://%s as %s\n", up.Bucket, id.ARN)
		publisher = aws.NewPublisher(client, up.Bucket, up.Key)
	}

	lockPath := lock.PathFor(cfg.Target.Path)
	if err := lock.Acquire(lockPath); err != nil {
		return err
	}
	defer lock.Release(lockPath)

	fmt.Fprintf(stdout, "Connecting to %s...\n", sourceLabel(cfg.Source))
	reader := source.NewMySQLReader(cfg.Source)
	if err := reader.Connect(ctx); err != nil {
		return fmt.Errorf("connecting to source: %w", err)
	}
	defer reader.Close()

	writer, err := target.OpenSQLite(ctx, cfg.Target.Path)
	if err != nil {
		return err
	}
	defer writer.Close()

	runner := &migration.Runner{
		Source:     reader,
		Target:     writer,
		Translator: ddl.NewTranslator(tm),
		PageSize:   cfg.Migration.BatchSize,
		Include:    cfg.Migration.Include,
		Exclude:    cfg.Migration.Exclude,
		Validate:   cfg.Migration.Validate,
		Logger:     logger,
	}

	var result *migration.Result
	var runErr error
	if !migrateNoTUI && tui.IsTerminal(os.Stdout) {
		var cancelled bool
		result, cancelled, runErr = tui.Run("my2lite migrate", cancel, func(cb migration.StatusCallback) (*migration.Result, error) {
			return runner.Run(ctx, cb)
		})
		if cancelled {
			fmt.Fprintln(stderr, "Migration cancelled; tables copied so far are kept.")
		}
	} else {
		result, runErr = runner.Run(ctx, tui.NewPlain(stdout).Update)
	}

	run := state.NewRun(sourceLabel(cfg.Source), cfg.Target.Path, result, runErr)
	defer saveRun(run, stderr)

	if result == nil {
		return runErr
	}

	if runErr == nil && !migrateNoVacuum {
		if err := writer.Vacuum(ctx); err != nil {
			logger.Warn("vacuum failed", "error", err)
			fmt.Fprintf(stderr, "warning: %v\n", err)
		}
	}
	writer.Close()

	printSummary(stdout, result)

	rep := report.GenerateReport(cfg.Source.Host, cfg.Source.Database, cfg.Target.Path, result)
	if publisher != nil && runErr == nil {
		data, err := report.Marshal(rep)
		if err != nil {
			return err
		}
		uploaded, err := publisher.Publish(ctx, cfg.Target.Path, data)
		if err != nil {
			return fmt.Errorf("publishing database: %w", err)
		}
		rep.Target.UploadURI = uploaded.DatabaseURI
		run.UploadURI = uploaded.DatabaseURI
		logger.Info("database uploaded", "uri", uploaded.DatabaseURI)
		fmt.Fprintf(stdout, "Uploaded %s\n", uploaded.DatabaseURI)
	}

	if migrateReport != "" {
		write := report.WriteJSON
		if strings.HasSuffix(migrateReport, ".txt") {
			write = report.WriteText
		}
		if err := write(rep, migrateReport); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		run.ReportPath = migrateReport
		fmt.Fprintf(stdout, "Report written to %s\n", migrateReport)
	}

	if runErr != nil {
		return runErr
	}
	if migrateStrict && !result.OK() {
		return fmt.Errorf("%d table(s) failed", len(result.Failed()))
	}
	return nil
}

func printSummary(w io.Writer, result *migration.Result) {
	failed := result.Failed()
	if len(failed) > 0 {
		fmt.Fprintln(w, "\nFailed tables:")
		for _, t := range failed {
			fmt.Fprintf(w, "  %s: %v\n", t.Name, t.Error)
		}
	}

	elapsed := result.CompletedAt.Sub(result.StartedAt).Round(time.Millisecond)
	fmt.Fprintf(w, "\nMigration complete: %d of %d tables, %d rows in %s\n",
		len(result.Succeeded()), len(result.Tables), result.TotalRows(), elapsed)
}

func saveRun(run *state.Run, stderr io.Writer) {
	st, err := state.Load("")
	if err != nil {
		st = &state.State{}
	}
	st.LastRun = run
	if err := st.Save(""); err != nil {
		fmt.Fprintf(stderr, "warning: saving state: %v\n", err)
	}
}

func init() {
	addSourceFlags(migrateCmd.Flags())
	addTargetFlag(migrateCmd.Flags())
	f := migrateCmd.Flags()
	f.BoolVar(&migrateStrict, "strict", false, "exit non-zero when any table fails")
	f.StringVar(&migrateReport, "report", "", "write a run report to this path (text when it ends in .txt, JSON otherwise)")
	f.BoolVar(&migrateValidate, "validate", false, "compare source and target row counts after each table")
	f.BoolVar(&migrateNoTUI, "no-tui", false, "print plain progress lines instead of the progress view")
	f.BoolVar(&migrateNoVacuum, "no-vacuum", false, "skip VACUUM of the SQLite file after the run")
	f.StringVar(&migrateUpload, "upload", "", "S3 bucket to upload the finished database to")
	f.IntVar(&migrateBatchSize, "batch-size", config.DefaultBatchSize, "rows per fetch and insert batch")
	f.StringSliceVar(&migrateInclude, "include", nil, "only migrate tables matching these globs")
	f.StringSliceVar(&migrateExclude, "exclude", nil, "skip tables matching these globs")
	rootCmd.AddCommand(migrateCmd)
}
