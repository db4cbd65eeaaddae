package database

import "catalog/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Product{},
		&models.UserProduct{},
		&models.PasswordResetToken{},
	}
}
