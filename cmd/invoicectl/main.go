// Command invoicectl runs invoice maintenance tasks against the configured
// database: importing exported rows, peeking at the next invoice number and
// exporting revenue reports.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	invoiceapp "github.com/invoicer/backend/internal/application/invoice"
	reportapp "github.com/invoicer/backend/internal/application/report"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/infrastructure/config"
	"github.com/invoicer/backend/internal/infrastructure/logger"
	"github.com/invoicer/backend/internal/infrastructure/persistence"
	"github.com/invoicer/backend/internal/infrastructure/printing"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var version = "dev"

// services is what the commands need from the backend
type services struct {
	invoices *invoiceapp.Service
	payments *invoiceapp.PaymentInfoService
	reports  *reportapp.ReportService
	log      *zap.Logger
	close    func() error
}

// openServices wires services from configuration. Tests replace it.
var openServices = func(ctx context.Context) (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logCfg := logger.ForEnvironment(cfg.App.Env, cfg.Log.Level)
	logCfg.Service = cfg.App.Name + "-ctl"
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), 500*time.Millisecond)
	db, err := persistence.NewDatabase(ctx, &cfg.Database, gormLog, log)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	location := cfg.App.Location()
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	numberer := invoiceapp.NewNumberer(invoiceRepo,
		invoiceapp.WithNumbererLocation(location),
		invoiceapp.WithNumbererLogger(log),
	)
	payments := invoiceapp.NewPaymentInfoService(persistence.NewGormPaymentInfoRepository(db.DB), nil, invoice.PaymentInfo{
		AccountName:   cfg.Payment.AccountName,
		AccountNumber: cfg.Payment.AccountNumber,
		IFSC:          cfg.Payment.IFSC,
	}, log)

	return &services{
		invoices: invoiceapp.NewService(invoiceRepo, numberer, payments, printing.NewGofpdfRenderer(log),
			invoiceapp.WithLogger(log),
			invoiceapp.WithLocation(location),
		),
		payments: payments,
		reports: reportapp.NewReportService(persistence.NewGormRevenueReportRepository(db.DB),
			reportapp.WithLocation(location),
			reportapp.WithLogger(log),
		),
		log: log,
		close: func() error {
			_ = log.Sync()
			return db.Close()
		},
	}, nil
}

func newApp() *cli.App {
	userFlag := &cli.StringFlag{
		Name:     "user",
		Aliases:  []string{"u"},
		Usage:    "owner user ID (UUID)",
		Required: true,
		EnvVars:  []string{"INVOICECTL_USER"},
	}

	return &cli.App{
		Name:    "invoicectl",
		Usage:   "maintenance tasks for the invoicer backend",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "import invoices exported from the hosted store",
				Flags: []cli.Flag{
					userFlag,
					&cli.PathFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSON array of exported invoice rows",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "normalize rows and report without writing",
					},
				},
				Action: runImport,
			},
			{
				Name:   "next-number",
				Usage:  "print the next invoice number for a user",
				Flags:  []cli.Flag{userFlag},
				Action: runNextNumber,
			},
			{
				Name:  "report",
				Usage: "export a revenue report as CSV",
				Flags: []cli.Flag{
					userFlag,
					&cli.StringFlag{
						Name:  "preset",
						Usage: "last_30_days, this_month or last_month",
					},
					&cli.StringFlag{
						Name:  "start",
						Usage: "first day of the range (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:  "end",
						Usage: "last day of the range (YYYY-MM-DD)",
					},
				},
				Action: runReport,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "invoicectl:", err)
		os.Exit(1)
	}
}
