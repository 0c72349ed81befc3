package main

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/schaferjart/telegram-finance/internal/config"
	"github.com/schaferjart/telegram-finance/internal/handlers"
	"github.com/schaferjart/telegram-finance/internal/repository"
	"github.com/schaferjart/telegram-finance/internal/scheduler"
	"github.com/schaferjart/telegram-finance/internal/service"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	// Initialize the data file (self-heals if missing or corrupt)
	store := repository.NewFileStore(cfg.DataFile)
	if _, err := store.Load(); err != nil {
		log.Fatalf("❌ Cannot initialize data file: %v", err)
	}
	log.Printf("✅ Using data file %s", cfg.DataFile)

	svc := service.New(store, cfg)

	// Initialize bot
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		log.Fatalf("❌ Bot initialization error: %v", err)
	}
	bot.Debug = false
	log.Printf("✅ Bot authorized as @%s", bot.Self.UserName)

	handler := handlers.NewBotHandler(bot, svc, cfg)

	sched, err := scheduler.New(bot, svc, cfg)
	if err != nil {
		log.Fatalf("❌ Scheduler error: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start receiving updates
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "callback_query"}

	updates := bot.GetUpdatesChan(u)

	log.Println("🚀 Bot is running...")

	for update := range updates {
		handler.HandleUpdate(update)
	}
}
