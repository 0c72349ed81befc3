package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config collects all deployment settings. Values come from the environment
// (optionally seeded by a .env file); every field except Token has a
// default, so only TELEGRAM_TOKEN is required to run.
type Config struct {
	Token    string
	DataFile string

	Currencies         []string
	TransactionTypes   []string
	TransferTypes      []string
	SpendingCategories []string

	ListLimit           int
	ConversationTimeout time.Duration

	// Weekly report schedule, cron syntax, evaluated in Timezone.
	ReportCronSpec string
	Timezone       string
}

var ErrNoToken = errors.New("TELEGRAM_TOKEN not set")

func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_TOKEN")
	if token == "" {
		return nil, ErrNoToken
	}

	cfg := &Config{
		Token:               token,
		DataFile:            getEnv("DATA_FILE", "finance_data.json"),
		Currencies:          getList("CURRENCIES", []string{"USD", "EUR", "GBP"}),
		TransactionTypes:    getList("TRANSACTION_TYPES", []string{"groceries", "transport", "snack", "rent", "leisure", "transfer"}),
		TransferTypes:       getList("TRANSFER_TYPES", []string{"transfer"}),
		SpendingCategories:  getList("SPENDING_CATEGORIES", []string{"groceries", "transport", "snack", "rent", "leisure"}),
		ListLimit:           getInt("TRANSACTION_LIST_LIMIT", 15),
		ConversationTimeout: time.Duration(getInt("CONVERSATION_TIMEOUT", 300)) * time.Second,
		ReportCronSpec:      getEnv("REPORT_CRON_SPEC", "0 9 * * 1"),
		Timezone:            getEnv("TIMEZONE", "Europe/Berlin"),
	}
	return cfg, nil
}

// IsTransferType reports whether entries of this type carry a receiving side.
// Everything else is a "simple" transaction: received amount, destination and
// status are forced at construction time.
func (c *Config) IsTransferType(t string) bool {
	return contains(c.TransferTypes, t)
}

func (c *Config) IsSpendingCategory(t string) bool {
	return contains(c.SpendingCategories, t)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
