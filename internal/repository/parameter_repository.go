package repository

import (
	"context"

	"github.com/straye-as/presales-api/internal/domain"
	"gorm.io/gorm"
)

type ParameterRepository struct {
	db *gorm.DB
}

func NewParameterRepository(db *gorm.DB) *ParameterRepository {
	return &ParameterRepository{db: db}
}

func (r *ParameterRepository) List(ctx context.Context) ([]domain.Parameter, error) {
	var params []domain.Parameter
	err := r.db.WithContext(ctx).Order("name ASC").Find(&params).Error
	return params, err
}

func (r *ParameterRepository) GetByName(ctx context.Context, name string) (*domain.Parameter, error) {
	var param domain.Parameter
	err := r.db.WithContext(ctx).First(&param, "name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &param, nil
}

// Save inserts or updates a parameter keyed by its name
func (r *ParameterRepository) Save(ctx context.Context, param *domain.Parameter) error {
	return r.db.WithContext(ctx).Save(param).Error
}
