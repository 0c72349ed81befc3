package service_test

import (
	"testing"
	"time"

	"github.com/schaferjart/telegram-finance/internal/config"
	"github.com/schaferjart/telegram-finance/internal/repository"
	"github.com/schaferjart/telegram-finance/internal/service"
)

func testConfig() *config.Config {
	return &config.Config{
		Currencies:          []string{"USD", "EUR", "GBP"},
		TransactionTypes:    []string{"groceries", "transport", "transfer"},
		TransferTypes:       []string{"transfer"},
		SpendingCategories:  []string{"groceries", "transport"},
		ListLimit:           15,
		ConversationTimeout: 300 * time.Second,
	}
}

func newTestService(t *testing.T) (*service.Service, *repository.MemStore) {
	t.Helper()
	store := repository.NewMemStore()
	return service.New(store, testConfig()), store
}
