package implementation

import (
	"context"
	"errors"

	"persuasive-dialogue-be/internal/mapper"
	"persuasive-dialogue-be/internal/model"
	"persuasive-dialogue-be/internal/repository/contract"
	"persuasive-dialogue-be/pkg/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SearchSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SearchSessionMapper
}

func NewSearchSessionRepository(db *gorm.DB) contract.SearchSessionRepository {
	return &SearchSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSearchSessionMapper(),
	}
}

// Save upserts the whole snapshot
func (r *SearchSessionRepositoryImpl) Save(ctx context.Context, session *store.SearchSession) error {
	m, err := r.mapper.ToModel(session)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *SearchSessionRepositoryImpl) Get(ctx context.Context, id uuid.UUID) (*store.SearchSession, error) {
	var m model.SearchSession
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contract.ErrSessionNotFound
		}
		return nil, err
	}
	return r.mapper.ToStore(&m)
}

func (r *SearchSessionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.SearchSession{}, "id = ?", id).Error
}
