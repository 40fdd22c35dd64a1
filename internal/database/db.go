package database

import (
	"log"

	"qrreview-backend/internal/config"
	"qrreview-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Init(cfg *config.Config) *gorm.DB {
	// TranslateError: unique index ihlali gorm.ErrDuplicatedKey olarak döner
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
	return db
}

// Migrate: şemayı kurar. Testlerde sqlite üzerinde de aynı fonksiyon kullanılır.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Branch{},
		&models.Feedback{},
		&models.QRImage{},
		&models.AuditLog{},
	)
}
