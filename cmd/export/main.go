package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"plandash/internal/config"
	"plandash/internal/exporter"
	"plandash/internal/infrastructure"
	"plandash/internal/services"
	"plandash/internal/workbook"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		slog.Error("Export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run writes the tables of the requested sections as CSV files, plus the
// profitability workbook for costs and the scorecard PDF for goals
func run(args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("export", flag.ContinueOnError)
	configFile := flags.String("config", "", "YAML config file (defaults to the usual search locations)")
	workbookPath := flags.String("workbook", "", "planning workbook (overrides the configured path)")
	sectionList := flags.String("sections", "all", "comma separated section ids, or all")
	out := flags.String("out", "exports", "output directory")
	year := flags.Int("year", 0, "year filter for demand and costs")
	if err := flags.Parse(args); err != nil {
		return err
	}

	var cfg *config.Config
	var err error
	if *configFile != "" {
		cfg, err = config.LoadFrom(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if *workbookPath != "" {
		cfg.Workbook.Path = *workbookPath
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	sections, err := selectSections(*sectionList)
	if err != nil {
		return err
	}

	cache := workbook.NewCache(workbook.NewLoader(cfg.Workbook, logger), cfg.Workbook.Path, nil, logger)
	svc := services.NewDashboardService(cache, services.SettingsFrom(cfg), nil, logger)
	csvWriter := exporter.NewCSVWriter(logger)

	ctx := context.Background()
	filters := services.Filters{Year: *year}
	written := 0

	for _, s := range sections {
		view, err := svc.View(ctx, string(s.ID), filters)
		if err != nil {
			return fmt.Errorf("section %s: %w", s.ID, err)
		}
		for _, w := range view.Warnings {
			infrastructure.LogWorkbookWarning(ctx, logger, w.Sheet, w.Reason)
		}

		for _, t := range view.Tables {
			path := filepath.Join(*out, fmt.Sprintf("%s_%s.csv", s.ID, t.ID))
			if err := csvWriter.WriteFile(path, exporter.WriteOptions{Headers: t.Headers, Records: t.Records(), BOMPrefix: true}); err != nil {
				return err
			}
			fmt.Fprintln(stdout, path)
			written++
		}

		var doc []byte
		var name string
		switch s.ID {
		case services.SectionCosts:
			doc, err = svc.ProfitabilityWorkbook(ctx, filters)
			name = "rentabilidad.xlsx"
		case services.SectionGoals:
			doc, err = svc.ScorecardPDF(ctx)
			name = "programacion_metas.pdf"
		default:
			continue
		}
		if err != nil {
			logger.Warn("Skipping document", slog.String("file", name), slog.String("error", err.Error()))
			continue
		}
		path := filepath.Join(*out, name)
		if err := os.WriteFile(path, doc, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintln(stdout, path)
		written++
	}

	logger.Info("Export complete",
		slog.String("workbook", cfg.Workbook.Path),
		slog.Int("files", written))
	return nil
}

func selectSections(list string) ([]services.SectionInfo, error) {
	if list == "" || list == "all" {
		return services.Sections(), nil
	}

	var out []services.SectionInfo
	for _, id := range strings.Split(list, ",") {
		s, err := services.ParseSection(strings.TrimSpace(id))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
