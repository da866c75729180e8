package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestNotFound_TranslatesGormError(t *testing.T) {
	assert.ErrorIs(t, notFound(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, notFound(fmt.Errorf("query: %w", gorm.ErrRecordNotFound)), ErrNotFound)

	other := errors.New("connection reset")
	assert.Equal(t, other, notFound(other))
	assert.NoError(t, notFound(nil))
}

func TestDuplicate_TranslatesGormError(t *testing.T) {
	assert.ErrorIs(t, duplicate(gorm.ErrDuplicatedKey), ErrDuplicate)
	assert.NoError(t, duplicate(nil))
}

func TestPublishEvent_NoRedisIsNoop(t *testing.T) {
	s := NewStorageService(nil, nil)
	assert.NoError(t, s.PublishEvent(t.Context(), eventFixture()))
}
