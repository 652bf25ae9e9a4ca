package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/scoring"
	"github.com/xuri/excelize/v2"
)

const (
	modulesSheet  = "Modules"
	attemptsSheet = "Attempts"
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

func (s *exportService) ExportHistory(ctx context.Context, userID uint, w io.Writer) error {
	modules, err := s.repo.Module().ListByUser(ctx, nil, userID, repositories.ModuleFilters{})
	if err != nil {
		return fmt.Errorf("failed to list modules: %w", err)
	}
	attempts, err := s.repo.Attempt().ListByUser(ctx, nil, userID, 0)
	if err != nil {
		return fmt.Errorf("failed to list attempts: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	// Rename the default sheet rather than leaving an empty Sheet1 behind
	if err := f.SetSheetName(f.GetSheetName(0), modulesSheet); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if _, err := f.NewSheet(attemptsSheet); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	moduleRows := make([][]interface{}, 0, len(modules))
	for _, m := range modules {
		moduleRows = append(moduleRows, []interface{}{
			m.ID, m.Topic, string(m.Kind), string(m.Difficulty),
			m.IsCompleted, m.RetryCount, string(m.ContentSource), m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	if err := writeSheet(f, modulesSheet, []string{
		"Module ID", "Topic", "Kind", "Difficulty", "Completed", "Retries", "Content Source", "Created At",
	}, moduleRows); err != nil {
		return err
	}

	attemptRows := make([][]interface{}, 0, len(attempts))
	for _, a := range attempts {
		topic := ""
		if a.Module != nil {
			topic = a.Module.Topic
		}
		attemptRows = append(attemptRows, []interface{}{
			a.ID, a.ModuleID, topic, a.Score, a.TotalQuestions,
			scoring.DisplayPercentage(a.Percentage), a.Passed, a.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	if err := writeSheet(f, attemptsSheet, []string{
		"Attempt ID", "Module ID", "Topic", "Score", "Questions", "Percentage", "Passed", "Submitted At",
	}, attemptRows); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Learning history exported",
		"user_id", userID,
		"modules", len(modules),
		"attempts", len(attempts))
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
