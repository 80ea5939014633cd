package database

import (
	"fmt"
	"log"

	config "github.com/staff4dshire/staffdesk/configs"
	"github.com/staff4dshire/staffdesk/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.Company{},
		&models.Project{},
		&models.User{},
		&models.Conversation{},
		&models.ConversationParticipant{},
		&models.Message{},
		&models.MessageRead{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

// SeedSuperadmin creates the cross-tenant superadmin account if it does not
// exist yet. Superadmins carry no company and bypass tenant scoping.
func SeedSuperadmin() {
	email := config.Config("SUPERADMIN_EMAIL")
	password := config.Config("SUPERADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("Superadmin credentials not configured, skipping seed.")
		return
	}

	var count int64
	err := DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		log.Fatalf("🔥 Failed to check for superadmin user: %v", err)
		return
	}

	if count > 0 {
		log.Println("Superadmin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash superadmin password: %v", err)
		return
	}

	superadmin := models.User{
		FirstName:    config.Config("SUPERADMIN_FIRST_NAME"),
		LastName:     config.Config("SUPERADMIN_LAST_NAME"),
		Email:        email,
		Password:     string(hashedPassword),
		Role:         "superadmin",
		IsSuperadmin: true,
	}

	if err := DB.Create(&superadmin).Error; err != nil {
		log.Fatalf("🔥 Failed to seed superadmin user: %v", err)
		return
	}

	log.Println("✅ Superadmin user seeded successfully")
}
