package database

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"stock-journal/models"
)

// SaveReflection writes the reflection for its date. If the user already
// has one for that date, its content and profit/loss are overwritten and
// overwritten is true.
func (s *Store) SaveReflection(ctx context.Context, userID uint, r *models.DailyReflection) (overwritten bool, err error) {
	r.Content = strings.TrimSpace(r.Content)
	if r.ReflectionDate.IsZero() {
		return false, &ValidationError{Field: "reflection_date", Reason: "is required"}
	}
	if r.Content == "" {
		return false, &ValidationError{Field: "content", Reason: "is required"}
	}
	r.UserID = userID
	r.ReflectionDate = models.Day(r.ReflectionDate)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.DailyReflection
		err := tx.Where("user_id = ? AND reflection_date = ?", userID, r.ReflectionDate).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(r).Error
		}
		if err != nil {
			return err
		}

		overwritten = true
		existing.Content = r.Content
		existing.ProfitLoss = r.ProfitLoss
		if err := tx.Model(&existing).Select("content", "profit_loss").Updates(&existing).Error; err != nil {
			return err
		}
		*r = existing
		return nil
	})
	return overwritten, err
}

func (s *Store) reflectionsOf(ctx context.Context, userID uint) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.DailyReflection{}).Where("user_id = ?", userID)
}

// ListReflections returns one page of the user's reflections, newest first.
func (s *Store) ListReflections(ctx context.Context, userID uint, page, perPage int) (Page[models.DailyReflection], error) {
	page, perPage = normalizePage(page, perPage)
	out := Page[models.DailyReflection]{Page: page, PerPage: perPage}
	if err := s.reflectionsOf(ctx, userID).Count(&out.Total).Error; err != nil {
		return out, err
	}
	err := s.reflectionsOf(ctx, userID).
		Order("reflection_date DESC").
		Limit(perPage).Offset((page - 1) * perPage).
		Find(&out.Items).Error
	return out, err
}

func (s *Store) RecentReflections(ctx context.Context, userID uint, limit int) ([]models.DailyReflection, error) {
	var out []models.DailyReflection
	err := s.reflectionsOf(ctx, userID).Order("reflection_date DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (s *Store) CountReflections(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.reflectionsOf(ctx, userID).Count(&n).Error
	return n, err
}

// DeleteReflection removes a reflection owned by userID.
func (s *Store) DeleteReflection(ctx context.Context, userID, reflectionID uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", reflectionID, userID).Delete(&models.DailyReflection{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
