// Package sqlstore implements the repository interfaces on gorm for the embedded sqlite backend.
package sqlstore

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/spec-kit/support-portal/internal/repository"
)

// translateError maps driver errors onto the repository sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return repository.ErrDuplicate
	}
	return err
}
