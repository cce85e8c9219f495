package model

import (
	"time"

	"persuasive-dialogue-be/pkg/store"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SearchSession is the persisted snapshot of one conversation
type SearchSession struct {
	Id                    uuid.UUID                             `gorm:"type:uuid;primaryKey"`
	Topic                 string                                `gorm:"type:text;not null"`
	Standpoint            string                                `gorm:"type:varchar(20);not null"`
	Strategy              string                                `gorm:"type:varchar(20);not null;index"`
	DialogueHistory       datatypes.JSONSlice[string]           `gorm:"type:jsonb"`
	LastRetrievedEvidence datatypes.JSONSlice[store.Evidence]   `gorm:"type:jsonb"`
	Stats                 datatypes.JSONType[store.SearchStats] `gorm:"type:jsonb"`
	ClarificationState    datatypes.JSON                        `gorm:"type:jsonb"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (SearchSession) TableName() string {
	return "search_sessions"
}
