package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Skotchmaster/rocketshoes/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrSlotNotFound = errors.New("slot not found")

// GormSlots keeps named text slots in the storage_slots table.
type GormSlots struct {
	DB *gorm.DB
}

func (r *GormSlots) Get(ctx context.Context, key string) (string, error) {
	var slot models.Slot
	if err := r.DB.WithContext(ctx).Where("slot_key = ?", key).First(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrSlotNotFound
		}
		return "", err
	}
	return slot.Value, nil
}

func (r *GormSlots) Set(ctx context.Context, key, value string) error {
	slot := models.Slot{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&slot).Error
}

// MemorySlots is a process-local slot store.
type MemorySlots struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemorySlots() *MemorySlots {
	return &MemorySlots{m: make(map[string]string)}
}

func (s *MemorySlots) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	if !ok {
		return "", ErrSlotNotFound
	}
	return v, nil
}

func (s *MemorySlots) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}
