package db

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ConsultaVida01/consulta-scheduler/internal/config"
	"github.com/ConsultaVida01/consulta-scheduler/internal/models"
	"github.com/ConsultaVida01/consulta-scheduler/internal/timezone"
)

func Connect(cfg *config.Config) *gorm.DB {
	database, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		log.Fatal("failed to access sql.DB:", err)
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := database.AutoMigrate(
		&models.Professional{},
		&models.Patient{},
		&models.Service{},
		&models.Appointment{},
		&models.Booking{},
		&models.NotificationLog{},
		&models.AuditLog{},
	); err != nil {
		log.Fatal("failed to run migrations:", err)
	}

	// perfis antigos sem fuso caem no fuso comercial padrão
	database.Model(&models.Professional{}).
		Where("timezone IS NULL OR timezone = ''").
		Update("timezone", timezone.DefaultTimezone)

	return database
}
