// Package postgresgrid backs the Grid port with a Postgres table, one
// record per sheet row.
package postgresgrid

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/Marshallsbest/OrderSystem/internal/domain"
)

// Row is one sheet row. Position is the 0-based row index within its
// sheet; cells marshal to a jsonb column.
type Row struct {
	ID       uint     `gorm:"primaryKey"`
	Sheet    string   `gorm:"index:idx_sheet_position,unique;size:64"`
	Position int      `gorm:"index:idx_sheet_position,unique"`
	Cells    []string `gorm:"serializer:json;type:jsonb"`
}

func (Row) TableName() string { return "grid_rows" }

type Store struct {
	db *gorm.DB
}

// Open connects, migrates and seeds the ledger header row when the
// orders sheet is empty.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.AutoMigrate(&Row{}); err != nil {
		return nil, fmt.Errorf("migrate grid schema: %w", err)
	}
	s := &Store{db: db}

	var count int64
	if err := db.Model(&Row{}).Where("sheet = ?", domain.SheetOrders).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		if err := s.AppendRow(context.Background(), domain.SheetOrders, domain.OrdersHeader); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) Rows(ctx context.Context, sheet string) ([][]string, error) {
	var rows []Row
	err := s.db.WithContext(ctx).
		Where("sheet = ?", sheet).
		Order("position asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = r.Cells
	}
	return out, nil
}

func (s *Store) AppendRow(ctx context.Context, sheet string, row []string) error {
	return s.AppendRows(ctx, sheet, [][]string{row})
}

func (s *Store) AppendRows(ctx context.Context, sheet string, rows [][]string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextPosition(tx, sheet)
		if err != nil {
			return err
		}
		recs := make([]Row, len(rows))
		for i, r := range rows {
			recs[i] = Row{Sheet: sheet, Position: next + i, Cells: r}
		}
		return tx.Create(&recs).Error
	})
}

func nextPosition(tx *gorm.DB, sheet string) (int, error) {
	var max *int
	err := tx.Model(&Row{}).
		Where("sheet = ?", sheet).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("max(position)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("next position for %s: %w", sheet, err)
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

func (s *Store) SetRow(ctx context.Context, sheet string, index int, row []string) error {
	rec := Row{Sheet: sheet, Position: index, Cells: row}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sheet"}, {Name: "position"}},
			DoUpdates: clause.AssignmentColumns([]string{"cells"}),
		}).
		Create(&rec).Error
}

func (s *Store) DeleteRows(ctx context.Context, sheet string, indices []int) error {
	if len(indices) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sheet = ? AND position IN ?", sheet, indices).
			Delete(&Row{}).Error; err != nil {
			return err
		}
		// Renumber so positions stay dense and row indices remain
		// stable addresses for SetRow callers.
		var remaining []Row
		if err := tx.Where("sheet = ?", sheet).Order("position asc").Find(&remaining).Error; err != nil {
			return err
		}
		for i := range remaining {
			if remaining[i].Position != i {
				if err := tx.Model(&Row{}).
					Where("id = ?", remaining[i].ID).
					Update("position", i).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

var _ domain.Grid = (*Store)(nil)
