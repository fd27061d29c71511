package database

import (
	"fmt"
	"log"

	"taskora_backend/internal/config"
	"taskora_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	return db, nil
}

// Migrate 执行表结构迁移并写入默认状态
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Status{},
		&model.Project{},
		&model.Task{},
		&model.Tag{},
	)
	if err != nil {
		return err
	}

	// 默认任务状态
	var count int64
	db.Model(&model.Status{}).Count(&count)
	if count == 0 {
		defaultStatuses := []model.Status{
			{Name: "To Do", Color: "#6c757d", Order: 1},
			{Name: "In Progress", Color: "#007bff", Order: 2},
			{Name: "Done", Color: "#28a745", Order: 3},
		}
		for _, s := range defaultStatuses {
			db.Create(&s)
		}
	}

	return nil
}
