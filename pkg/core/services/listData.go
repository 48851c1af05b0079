package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/exam-timetabler/pkg/db"
)

// ListData returns the dataset the store currently serves
func ListData(ctx context.Context, store db.DatasetStore, logger *zap.Logger) (*db.Dataset, error) {
	logger.Debug("Fetching dataset")
	dataset, err := db.LoadDataset(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	logger.Debug("Dataset fetched",
		zap.Int("courses", len(dataset.Courses)),
		zap.Int("rooms", len(dataset.Rooms)))

	return dataset, nil
}

// ImportData copies the dataset served by source into dest, replacing what dest held
func ImportData(ctx context.Context, source db.DatasetStore, dest db.DatasetWriter, logger *zap.Logger) (*db.Dataset, error) {
	dataset, err := db.LoadDataset(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	if err := dataset.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Replacing stored dataset",
		zap.Int("departments", len(dataset.Departments)),
		zap.Int("courses", len(dataset.Courses)),
		zap.Int("rooms", len(dataset.Rooms)),
		zap.Int("constraints", len(dataset.Constraints)))

	if err := dest.ReplaceDataset(ctx, dataset); err != nil {
		return nil, fmt.Errorf("failed to replace dataset: %w", err)
	}

	return dataset, nil
}
