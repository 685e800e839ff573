// Package settings provides per-user settings with a fixed schema,
// defaults and type validation.
package settings

import (
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/noterelay/noterelay/internal/db/models"
)

const (
	userSettingQueryPattern = "user_id = ? AND name = ?"
)

// userLocks serializes read-modify-persist windows per user.
// Writes for different users proceed independently.
var userLocks sync.Map //nolint:gochecknoglobals

func lockUser(chatID int64) *sync.Mutex {
	mu, _ := userLocks.LoadOrStore(chatID, &sync.Mutex{})

	return mu.(*sync.Mutex) //nolint:forcetypeassert
}

// EnsureUser returns the user row for chatID, creating it on first access.
func EnsureUser(db *gorm.DB, chatID int64, displayName string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var user models.User

	result := db.Where(models.User{ChatID: chatID}).
		Attrs(models.User{DisplayName: displayName}).
		FirstOrCreate(&user)
	if result.Error != nil {
		return nil, result.Error
	}

	return &user, nil
}

// Get retrieves the user's stored value for key, or the schema default
// when no override exists. Keys outside the schema fail with ErrUnknownKey.
func Get(db *gorm.DB, chatID int64, key string) (string, error) {
	if db == nil {
		return "", ErrDBNil
	}

	def, ok := Schema[key]
	if !ok {
		return "", ErrUnknownKey
	}

	user, err := EnsureUser(db, chatID, "")
	if err != nil {
		return "", err
	}

	var row models.UserSetting

	result := db.Where(userSettingQueryPattern, user.ID, key).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return def.Default, nil
		}

		return "", result.Error
	}

	return row.Value, nil
}

// Set validates and persists a value for key.
// The read-modify-persist window is serialized per user.
func Set(db *gorm.DB, chatID int64, key, rawValue string) error {
	if db == nil {
		return ErrDBNil
	}

	def, ok := Schema[key]
	if !ok {
		return ErrUnknownKey
	}

	value, err := coerce(def, rawValue)
	if err != nil {
		return err
	}

	mu := lockUser(chatID)
	mu.Lock()
	defer mu.Unlock()

	user, err := EnsureUser(db, chatID, "")
	if err != nil {
		return err
	}

	var row models.UserSetting

	result := db.Where(userSettingQueryPattern, user.ID, key).First(&row)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		row = models.UserSetting{UserID: user.ID, Name: key, Value: value}

		return db.Create(&row).Error
	}

	if result.Error != nil {
		return result.Error
	}

	row.Value = value

	return db.Save(&row).Error
}

// List merges the user's stored overrides over the schema defaults.
func List(db *gorm.DB, chatID int64) (map[string]string, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	user, err := EnsureUser(db, chatID, "")
	if err != nil {
		return nil, err
	}

	effective := make(map[string]string, len(Schema))
	for key, def := range Schema {
		effective[key] = def.Default
	}

	var rows []models.UserSetting

	result := db.Where("user_id = ?", user.ID).Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	for _, row := range rows {
		if _, ok := Schema[row.Name]; ok {
			effective[row.Name] = row.Value
		}
	}

	return effective, nil
}
