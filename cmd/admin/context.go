package main

import (
	"fmt"
	"sync"

	"igire/backend/internal/complaint"
	"igire/backend/internal/config"
	"igire/backend/internal/localization"
	"igire/backend/internal/rewards"
	"igire/backend/internal/sms"
	"igire/backend/internal/storage"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// commandContext opens the database on first use so argument errors never need one.
type commandContext struct {
	once   sync.Once
	store  *storage.Service
	texts  *localization.Localizer
	cfg    *config.Config
	logger *zap.Logger
	err    error
}

func (c *commandContext) open() error {
	c.once.Do(func() {
		_ = godotenv.Load()
		c.cfg = config.Load()
		c.logger = zap.NewNop()

		db, err := gorm.Open(postgres.Open(c.cfg.PostgresDSN()), &gorm.Config{TranslateError: true})
		if err != nil {
			c.err = fmt.Errorf("failed to connect database: %w", err)
			return
		}
		// No redis: dashboards pick CLI changes up on their next poll.
		c.store = storage.NewStorageService(db, nil)

		c.texts, c.err = localization.New()
	})
	return c.err
}

func (c *commandContext) complaints() *complaint.Service {
	var opts []complaint.Option
	if c.cfg.ATAPIKey != "" {
		opts = append(opts, complaint.WithSMS(sms.NewGateway(c.cfg.ATUsername, c.cfg.ATAPIKey, c.cfg.ATSenderID)))
	}
	return complaint.NewService(c.store, nil, c.texts, c.logger, opts...)
}

func (c *commandContext) rewards() *rewards.Service {
	return rewards.NewService(c.store, c.logger)
}
