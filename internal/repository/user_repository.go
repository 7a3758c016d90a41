package repository

import (
	"context"

	"jobfair-live/internal/domain/user"
	jobfair_errors "jobfair-live/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Upsert(ctx context.Context, u *user.User) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(u).Error
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if isNotFound(err) {
			return user.User{}, jobfair_errors.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) ListInterpreters(ctx context.Context, boothID uuid.UUID) ([]user.User, error) {
	var booth []user.User
	err := r.db.WithContext(ctx).
		Where("active = ? AND role = ? AND booth_id = ?", true, user.RoleInterpreter, boothID).
		Order("name ASC").
		Find(&booth).Error
	if err != nil {
		return nil, err
	}

	var global []user.User
	err = r.db.WithContext(ctx).
		Where("active = ? AND role = ?", true, user.RoleGlobalInterpreter).
		Order("name ASC").
		Find(&global).Error
	if err != nil {
		return nil, err
	}
	return append(booth, global...), nil
}
