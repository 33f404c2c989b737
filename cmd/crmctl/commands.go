package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xavierca1/donor-crm/internal/config"
	"github.com/xavierca1/donor-crm/internal/entity"
	"github.com/xavierca1/donor-crm/internal/infra/database"
	"github.com/xavierca1/donor-crm/internal/infra/export"
	"github.com/xavierca1/donor-crm/internal/logger"
	"github.com/xavierca1/donor-crm/internal/usecase"
)

// env holds what every subcommand needs; it is filled lazily so that --help
// works without a database.
type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *sql.DB
}

func (e *env) load() error {
	if e.cfg != nil {
		return nil
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	e.cfg, e.log = cfg, log
	return nil
}

func (e *env) open() error {
	if err := e.load(); err != nil {
		return err
	}
	db, err := database.NewDBConnection(e.cfg.DatabaseURL)
	if err != nil {
		return err
	}
	e.db = db
	return nil
}

func (e *env) close() {
	if e.db != nil {
		e.db.Close()
	}
	if e.log != nil {
		_ = e.log.Sync()
	}
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "crmctl",
		Short:         "Donor CRM maintenance tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(*cobra.Command, []string) {
			e.close()
		},
	}
	root.AddCommand(newMigrateCmd(e), newReconcileCmd(e), newExportCmd(e))
	return root
}

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.load(); err != nil {
				return err
			}
			if err := database.RunMigrations(e.cfg.DatabaseURL, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations %s: ok\n", args[0])
			return nil
		},
	}
}

func newReconcileCmd(e *env) *cobra.Command {
	var (
		donorID string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute donor aggregates from the donation ledger",
		Long:  "Without --donor, repairs every donor whose stored aggregates disagree with the ledger.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.open(); err != nil {
				return err
			}
			reconciler := usecase.NewDonorReconciler(
				database.NewDonorRepository(e.db),
				database.NewDonationRepository(e.db),
				nil,
				e.log,
			)
			return runReconcile(cmd.Context(), cmd, reconciler, donorID, limit)
		},
	}
	cmd.Flags().StringVar(&donorID, "donor", "", "reconcile a single donor by id")
	cmd.Flags().IntVar(&limit, "limit", 1000, "maximum stale donors to repair")
	return cmd
}

type reconciler interface {
	Reconcile(ctx context.Context, donorID string) (entity.DonorAggregates, error)
	ReconcileStale(ctx context.Context, limit int) (int, error)
}

func runReconcile(ctx context.Context, cmd *cobra.Command, r reconciler, donorID string, limit int) error {
	out := cmd.OutOrStdout()
	if donorID != "" {
		agg, err := r.Reconcile(ctx, donorID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "donor %s: total_given_cents=%d gifts=%d\n", donorID, agg.TotalGivenCents, agg.GiftsCount)
		return nil
	}
	fixed, err := r.ReconcileStale(ctx, limit)
	fmt.Fprintf(out, "reconciled %d donor(s)\n", fixed)
	return err
}

func newExportCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export donor reports",
	}

	var orgID, bucket, asOf string
	lapsedCmd := &cobra.Command{
		Use:   "lapsed",
		Short: "Upload the organization's LYBUNT donors as CSV to S3",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.open(); err != nil {
				return err
			}
			if bucket == "" {
				bucket = e.cfg.ExportBucket
			}
			uploader, err := export.NewS3Uploader(cmd.Context(), e.cfg.AWSRegion, bucket)
			if err != nil {
				return err
			}
			lapsed := usecase.NewLapsedDonors(
				database.NewDonorRepository(e.db),
				database.NewDonationRepository(e.db),
				database.NewOrganizationRepository(e.db),
				usecase.SystemClock{},
			)
			res, err := export.NewLapsedExporter(lapsed, uploader, nil).Export(cmd.Context(), orgID, asOf)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d donor(s) to s3://%s/%s\n", res.Count, uploader.Bucket(), res.Key)
			return nil
		},
	}
	lapsedCmd.Flags().StringVar(&orgID, "org", "", "organization id")
	lapsedCmd.Flags().StringVar(&bucket, "bucket", "", "destination bucket (default EXPORT_S3_BUCKET)")
	lapsedCmd.Flags().StringVar(&asOf, "as-of", "", "reference date YYYY-MM-DD (default today)")
	_ = lapsedCmd.MarkFlagRequired("org")

	cmd.AddCommand(lapsedCmd)
	return cmd
}
