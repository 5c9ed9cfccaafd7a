// Package settingsstore resolves runtime settings. A value saved in the
// settings table wins over the process configuration, which wins over the
// built-in default.
package settingsstore

import (
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database/settings"
)

const (
	SourceDatabase = "database"
	SourceConfig   = "config"
)

type SettingsStore struct {
	repo     *settings.Repository
	defaults config.Reconcile
}

func New(repo *settings.Repository, defaults config.Reconcile) *SettingsStore {
	return &SettingsStore{repo: repo, defaults: defaults}
}

// lookup returns the stored value for key and whether one is set.
func (s *SettingsStore) lookup(key string) (string, bool) {
	setting, err := s.repo.GetSetting(key)
	if err != nil || setting.Value == "" {
		return "", false
	}
	return setting.Value, true
}

func (s *SettingsStore) clear(keys ...string) error {
	for _, key := range keys {
		if err := s.repo.DeleteSetting(key); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	return nil
}

func parseBool(value string, fallback bool) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}
