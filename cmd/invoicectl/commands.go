package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	invoiceapp "github.com/invoicer/backend/internal/application/invoice"
	reportapp "github.com/invoicer/backend/internal/application/report"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/infrastructure/persistence"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func parseUser(c *cli.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.String("user"))
	if err != nil {
		return uuid.Nil, errors.Newf("--user must be a UUID, got %q", c.String("user"))
	}
	return id, nil
}

// withServices opens the backend for the duration of fn
func withServices(c *cli.Context, fn func(*services) error) error {
	svc, err := openServices(c.Context)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.close(); err != nil {
			svc.log.Warn("Error closing services", zap.Error(err))
		}
	}()
	return fn(svc)
}

// readRows decodes a JSON array of exported invoice rows
func readRows(path string) ([]persistence.StoreInvoiceRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	var rows []persistence.StoreInvoiceRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrapf(err, "decode rows in %s", path)
	}
	return rows, nil
}

// normalizeRows converts rows for userID. Rows that fail normalization or
// validation are reported by index and left out.
func normalizeRows(rows []persistence.StoreInvoiceRow, userID uuid.UUID, fallback invoice.PaymentInfo) ([]*invoice.Invoice, []string) {
	invoices := make([]*invoice.Invoice, 0, len(rows))
	var problems []string
	for i, row := range rows {
		inv, err := persistence.NormalizeStoreRow(row, userID, fallback)
		if err == nil {
			err = inv.Validate()
		}
		if err != nil {
			problems = append(problems, fmt.Sprintf("row %d: %s", i, err.Error()))
			continue
		}
		invoices = append(invoices, inv)
	}
	return invoices, problems
}

func runImport(c *cli.Context) error {
	userID, err := parseUser(c)
	if err != nil {
		return err
	}
	rows, err := readRows(c.Path("file"))
	if err != nil {
		return err
	}

	return withServices(c, func(svc *services) error {
		invoices, problems := normalizeRows(rows, userID, svc.payments.Defaults())

		var result *invoiceapp.ImportResult
		if c.Bool("dry-run") {
			result = &invoiceapp.ImportResult{Outcome: shared.OutcomeIdeal}
		} else {
			result, err = svc.invoices.Import(c.Context, userID, invoices)
			if err != nil {
				return err
			}
		}
		if len(problems) > 0 {
			result.Errors = append(problems, result.Errors...)
			result.Outcome = shared.OutcomeDegraded
		}

		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	})
}

func runNextNumber(c *cli.Context) error {
	userID, err := parseUser(c)
	if err != nil {
		return err
	}

	return withServices(c, func(svc *services) error {
		resp, err := svc.invoices.NextNumber(c.Context, userID)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, resp.Number)
		if resp.Outcome.IsDegraded() {
			fmt.Fprintf(c.App.ErrWriter, "warning: %s\n", resp.Reason)
		}
		return nil
	})
}

func runReport(c *cli.Context) error {
	userID, err := parseUser(c)
	if err != nil {
		return err
	}

	return withServices(c, func(svc *services) error {
		return svc.reports.ExportCSV(c.Context, userID, reportapp.RevenueRequest{
			Preset:    c.String("preset"),
			StartDate: c.String("start"),
			EndDate:   c.String("end"),
		}, c.App.Writer)
	})
}
