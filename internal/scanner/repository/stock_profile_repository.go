package repository

import (
	"context"
	"fmt"

	"golang-market-scanner/internal/entity"

	"gorm.io/gorm"
)

type stockProfileRepository struct {
	db *gorm.DB
}

// NewStockProfileRepository creates a gorm-backed result sink.
func NewStockProfileRepository(db *gorm.DB) StockProfileRepository {
	return &stockProfileRepository{db: db}
}

func (r *stockProfileRepository) Create(ctx context.Context, profiles []*entity.StockProfile) error {
	if len(profiles) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(profiles, 100).Error; err != nil {
		return fmt.Errorf("failed to create stock profiles: %w", err)
	}
	return nil
}
