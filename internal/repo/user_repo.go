// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for users and
// their derived wellness state.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborwell/wellness-backend/internal/domain"
)

// CreateUser inserts a new user together with its zero-valued wellness state.
// Both rows are written in one transaction so the state-exists-iff-user-exists
// invariant holds from the first write.
func CreateUser(ctx context.Context, db *gorm.DB, email, name, department, role string) (*domain.User, error) {
	u := &domain.User{
		ID:         uuid.NewString(),
		Email:      email,
		Name:       name,
		Department: department,
		Role:       role,
		Active:     true,
		CreatedAt:  time.Now().UTC(),
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		return tx.Create(&domain.WellnessState{
			UserID:    u.ID,
			RiskLevel: domain.RiskLow,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser fetches a user by id, or ErrNotFound if missing.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// DeactivateUser flips the active flag off (soft deactivation). The user's
// events and state are retained but the user drops out of analytics scope.
func DeactivateUser(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActiveUsers returns active users, optionally restricted to a
// department, ordered by id for deterministic iteration.
func ListActiveUsers(ctx context.Context, db *gorm.DB, department string) ([]domain.User, error) {
	q := db.WithContext(ctx).Where("active = ?", true)
	if department != "" {
		q = q.Where("department = ?", department)
	}
	var out []domain.User
	err := q.Order("id asc").Find(&out).Error
	return out, err
}

// CountActiveUsers returns the number of active users, optionally scoped to
// a department.
func CountActiveUsers(ctx context.Context, db *gorm.DB, department string) (int64, error) {
	q := db.WithContext(ctx).Model(&domain.User{}).Where("active = ?", true)
	if department != "" {
		q = q.Where("department = ?", department)
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}

// ListDepartments returns the distinct departments of active users in
// ascending order.
func ListDepartments(ctx context.Context, db *gorm.DB) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("active = ?", true).
		Distinct("department").
		Order("department asc").
		Pluck("department", &out).Error
	return out, err
}
