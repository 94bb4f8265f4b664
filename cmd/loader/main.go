package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/xuri/excelize/v2"

	"github.com/tesouro-direto/titulo_tesouro_app/internal/core/domain"
	"github.com/tesouro-direto/titulo_tesouro_app/internal/platform/config"
	"github.com/tesouro-direto/titulo_tesouro_app/pkg/database"
)

// One-shot loader for the Tesouro Direto balance spreadsheet. Each data
// column is one (action, category) series: the header row names both, the
// unit row carries the amount multiplier and the data rows hold one amount
// per expiry month.
const (
	headerRow    = 7
	unitRow      = 10
	firstDataRow = 12
	lastDataRow  = 135

	firstDataColumn = 'C'
	lastDataColumn  = 'N'

	headerSeparator = " - Tesouro Direto - "
	dateColumn      = "B"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	file := flag.String("file", "input-data.xlsx", "path to the Tesouro Direto spreadsheet")
	sheet := flag.String("sheet", "Planilha1", "worksheet name")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()

	logger.Info("Reading spreadsheet", slog.String("file", *file), slog.String("sheet", *sheet))
	rows, err := readSeries(*file, *sheet, cfg.UnitMultipliers)
	if err != nil {
		logger.Error("Failed to read spreadsheet", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("All values read", slog.Int("rows", len(rows)))

	copied, err := dbPool.CopyFrom(ctx,
		pgx.Identifier{"tesouro_direto_series"},
		[]string{"category", "action", "expire_at", "amount"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		logger.Error("Failed to load rows", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("System loaded", slog.Int64("rows", copied))
}

func readSeries(path, sheet string, units map[string]float64) ([][]any, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows [][]any
	for col := firstDataColumn; col <= lastDataColumn; col++ {
		column := string(col)

		header, err := f.GetCellValue(sheet, fmt.Sprintf("%s%d", column, headerRow))
		if err != nil {
			return nil, err
		}
		category, action, err := parseHeader(header)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", column, err)
		}

		unitCell, err := f.GetCellValue(sheet, fmt.Sprintf("%s%d", column, unitRow))
		if err != nil {
			return nil, err
		}
		multiplier := lookupMultiplier(unitCell, units)

		for row := firstDataRow; row <= lastDataRow; row++ {
			rawDate, err := f.GetCellValue(sheet, fmt.Sprintf("%s%d", dateColumn, row))
			if err != nil {
				return nil, err
			}
			expireAt, err := parseExpireAt(rawDate)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", row, err)
			}

			rawAmount, err := f.GetCellValue(sheet, fmt.Sprintf("%s%d", column, row))
			if err != nil {
				return nil, err
			}
			amount, err := strconv.ParseFloat(strings.TrimSpace(rawAmount), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", row, column, err)
			}

			rows = append(rows, []any{category, string(action), expireAt, amount * multiplier})
		}
	}
	return rows, nil
}

// parseHeader splits a header like
// "Balanço de Vendas - Tesouro Direto - NTN-B" into category and action.
func parseHeader(header string) (string, domain.Action, error) {
	parts := strings.SplitN(header, headerSeparator, 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("unexpected header %q", header)
	}
	category := strings.TrimSpace(parts[1])

	switch {
	case strings.Contains(parts[0], "Vendas"):
		return category, domain.ActionVenda, nil
	case strings.Contains(parts[0], "Resgates"):
		return category, domain.ActionResgate, nil
	}
	return "", "", fmt.Errorf("unexpected action in header %q", header)
}

// lookupMultiplier matches the unit cell (e.g. "Saldo R$ (milhões)")
// against the configured labels. An unlabeled column loads as-is.
func lookupMultiplier(unitCell string, units map[string]float64) float64 {
	best := ""
	for label := range units {
		if label != "" && strings.Contains(unitCell, label) && len(label) > len(best) {
			best = label
		}
	}
	if best == "" {
		return 1
	}
	return units[best]
}

var expireAtLayouts = []string{
	"2006-01-02",
	"2006-01",
	"01/2006",
	"01-02-06",
	"01/02/06",
}

func parseExpireAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range expireAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}
