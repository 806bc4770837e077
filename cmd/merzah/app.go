package main

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/merzah/merzah/internal/clock"
	"github.com/merzah/merzah/internal/config"
	"github.com/merzah/merzah/internal/database"
	"github.com/merzah/merzah/internal/events"
	"github.com/merzah/merzah/internal/models"
	"github.com/merzah/merzah/internal/notify"
	"github.com/merzah/merzah/internal/repository"
	"github.com/merzah/merzah/internal/rotation"
	"github.com/merzah/merzah/internal/scheduler"
)

// demoMosqueID is seeded in in-memory mode so events can be created.
var demoMosqueID = uuid.MustParse("00000000-0000-4000-8000-000000000001")

// app holds the wired components shared by the commands.
type app struct {
	cfg       *config.Config
	db        *database.DB
	service   *events.Service
	scheduler *scheduler.Scheduler
}

func openApp(ctx context.Context, cfg *config.Config, inMemory bool) (*app, error) {
	a := &app{cfg: cfg}
	clk := clock.System{}

	var (
		eventStore interface {
			events.EventStore
			rotation.Store
		}
		attendance events.AttendanceStore
		favorites  events.FavoriteStore
		mosques    events.MosqueStore
	)

	if inMemory {
		store := repository.NewMemoryStore()
		demo := &models.Mosque{ID: demoMosqueID, Name: "Demo Mosque", Timezone: cfg.DefaultTimezone}
		if err := store.Mosques().Upsert(ctx, demo); err != nil {
			return nil, err
		}
		log.Printf("Using in-memory store (demo mosque %s)", demo.ID)
		eventStore, attendance, favorites, mosques = store.Events(), store.Attendance(), store.Favorites(), store.Mosques()
	} else {
		if err := cfg.RequireDatabase(); err != nil {
			return nil, err
		}
		db, err := database.New(ctx, cfg.DatabaseURI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Println("Connected to database")
		a.db = db
		eventStore = repository.NewEventRepository(db)
		attendance = repository.NewAttendanceRepository(db)
		favorites = repository.NewFavoriteRepository(db)
		mosques = repository.NewMosqueRepository(db)
	}

	a.service = events.NewService(events.Options{
		Events:          eventStore,
		Attendance:      attendance,
		Favorites:       favorites,
		Mosques:         mosques,
		Clock:           clk,
		DefaultTimezone: cfg.DefaultTimezone,
	})

	dispatcher, err := newDispatcher(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	engine := rotation.NewEngine(eventStore, cfg.RotationMaxIterations)
	a.scheduler, err = scheduler.New(engine, dispatcher, clk, cfg.RotationSchedule)
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func newDispatcher(cfg *config.Config) (scheduler.Dispatcher, error) {
	if cfg.TelegramToken == "" {
		log.Println("Telegram not configured, rotation digests go to the log")
		return notify.LogDispatcher{}, nil
	}
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram API: %w", err)
	}
	log.Printf("Rotation digests go to Telegram chat %d as @%s", cfg.TelegramChatID, api.Self.UserName)
	return notify.NewTelegramDispatcher(api, cfg.TelegramChatID), nil
}

func (a *app) migrate(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	if err := a.db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Println("Database migrations completed")
	return nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
