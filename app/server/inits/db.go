package inits

import (
	"fmt"

	"github.com/alexedwards/argon2id"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"school-site-console/app/server/config"
	"school-site-console/app/server/models"
)

func DB(conn string, seed *config.Config) (db *gorm.DB, err error) {
	// Open connection
	if db, err = gorm.Open(postgres.Open(conn), &gorm.Config{}); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Migrate
	if err = mig(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Bootstrap data
	if err = initData(db, seed); err != nil {
		return nil, fmt.Errorf("failed to init data into database: %w", err)
	}

	return db, nil
}

func mig(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.History{},
		&models.Principal{},
		&models.SchoolDetails{},
	)
}

func initData(db *gorm.DB, cfg *config.Config) (err error) {
	var counter int64

	// Bootstrap admin account: accounts are created by seeding only, there
	// is no self-service signup.
	if err = db.Model(&models.User{}).Count(&counter).Error; err != nil {
		return fmt.Errorf("failed to get user count: %w", err)
	} else if counter == 0 {
		var password string
		if password, err = argon2id.CreateHash(cfg.Seed.Password, argon2id.DefaultParams); err != nil {
			return fmt.Errorf("failed to generate password: %w", err)
		}

		if err = db.Create(&models.User{
			LoginID:  cfg.Seed.LoginID,
			Name:     cfg.Seed.Name,
			Role:     models.RoleAdmin,
			Password: password,
		}).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}
	}

	return nil
}
