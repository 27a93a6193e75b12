package database

import (
	"fmt"
	"hrm_backend/internal/config"
	"hrm_backend/internal/model"
	"hrm_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=Local",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.DBName,
			cfg.SSLMode,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = "hrm.db"
		}
		return sqlite.Open(path + "?_foreign_keys=on"), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func logMode(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	}
	return gormlogger.Warn
}

// Open connects without migrating.
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	return gorm.Open(d, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logMode(cfg.LogLevel)),
		// unique violations surface as gorm.ErrDuplicatedKey
		TranslateError: true,
	})
}

func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Database connection established", zap.String("driver", cfg.Driver))

	if !migrate {
		return db, nil
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	logger.Log.Info("Database migration completed")
	return db, nil
}

// Models lists every persisted table in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.Employee{},
		&model.Course{},
		&model.LearningPlan{},
		&model.LearningPlanCourse{},
		&model.LearningPlanAssignment{},
		&model.LearningProgress{},
		&model.Training{},
		&model.TrainingSession{},
		&model.TrainingApplication{},
		&model.TrainingCompletion{},
		&model.TrainingCertificate{},
		&model.TrainingFeedback{},
		&model.TrainerAssessment{},
		&model.PerformanceNote{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
