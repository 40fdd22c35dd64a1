package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OpenTest: testler için izole bir in-memory sqlite veritabanı açar ve şemayı
// kurar. Her çağrı kendi veritabanını alır; bağlantı havuzu aynı veritabanını
// paylaşsın diye named shared-cache DSN kullanılır.
func OpenTest() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
