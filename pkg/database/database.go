package database

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	DSN          string `envconfig:"DATABASE_DSN" default:"clubs.db"`
	MaxOpenConns int    `split_words:"true" default:"1"`
	ConnMaxIdle  int    `split_words:"true" default:"300"`
	LogQueries   bool   `split_words:"true" default:"false"`
}

func (c *Config) New() (*gorm.DB, error) {
	level := logger.Silent
	if c.LogQueries {
		level = logger.Info
	}
	db, err := gorm.Open(sqlite.Open(c.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers; a single connection keeps transactions honest.
	if c.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	sqlDB.SetConnMaxIdleTime(time.Duration(c.ConnMaxIdle) * time.Second)

	return db, nil
}

func (c *Config) MustNew() *gorm.DB {
	db, err := c.New()
	if err != nil {
		panic(err)
	}
	return db
}
