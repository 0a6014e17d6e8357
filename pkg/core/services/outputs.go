package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-roster/internal/config"
	"github.com/jakechorley/shift-roster/pkg/core/decoder"
	"github.com/jakechorley/shift-roster/pkg/core/model"
	"github.com/jakechorley/shift-roster/pkg/tables"
)

// TablePublisher writes a table to a spreadsheet tab, replacing what the tab held
type TablePublisher interface {
	PublishTable(spreadsheetID, tab string, t *tables.Table) error
}

// WriteOutputs writes schedule.csv and statistics.csv to dir and returns their paths
func WriteOutputs(dir string, schedule *model.Schedule, statistics []model.WorkerStatistics, logger *zap.Logger) ([]string, error) {
	var paths []string
	for _, t := range []*tables.Table{
		decoder.ToScheduleTable(schedule),
		decoder.ToStatisticsTable(statistics),
	} {
		path, err := tables.WriteCSVFile(dir, t)
		if err != nil {
			return nil, fmt.Errorf("failed to write %s table: %w", t.Name, err)
		}
		logger.Debug("Wrote output table", zap.String("path", path))
		paths = append(paths, path)
	}

	return paths, nil
}

// PublishTables writes the schedule and statistics tables to the output spreadsheet
func PublishTables(publisher TablePublisher, cfg config.SheetsConfig, schedule *model.Schedule, statistics []model.WorkerStatistics, logger *zap.Logger) error {
	if cfg.OutputSheetID == "" {
		return fmt.Errorf("no output spreadsheet configured (sheets.outputSheetID)")
	}

	logger.Debug("Publishing schedule", zap.String("spreadsheet_id", cfg.OutputSheetID), zap.String("tab", cfg.ScheduleTab))
	if err := publisher.PublishTable(cfg.OutputSheetID, cfg.ScheduleTab, decoder.ToScheduleTable(schedule)); err != nil {
		return fmt.Errorf("failed to publish schedule: %w", err)
	}

	logger.Debug("Publishing statistics", zap.String("spreadsheet_id", cfg.OutputSheetID), zap.String("tab", cfg.StatisticsTab))
	if err := publisher.PublishTable(cfg.OutputSheetID, cfg.StatisticsTab, decoder.ToStatisticsTable(statistics)); err != nil {
		return fmt.Errorf("failed to publish statistics: %w", err)
	}

	return nil
}
