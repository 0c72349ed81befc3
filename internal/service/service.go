package service

import (
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/schaferjart/telegram-finance/internal/config"
	"github.com/schaferjart/telegram-finance/internal/models"
	"github.com/schaferjart/telegram-finance/internal/repository"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrNoAccounts      = errors.New("no accounts recorded")
	ErrNoMembers       = errors.New("no members recorded")
)

// Service is the ledger engine. Every operation loads the document fresh from
// the store, mutates it in memory and persists it wholesale; a failed Save
// commits nothing. The mutex serializes operations: the update loop and the
// report scheduler share one Service, and the store's read-modify-write cycle
// only holds if one logical operation runs at a time.
type Service struct {
	mu    sync.Mutex
	store repository.Store
	cfg   *config.Config

	// Canonical-identity indexes, built on first use and maintained
	// incrementally on membership change. Guarded by mu.
	members  *roster
	accounts *roster
}

func New(store repository.Store, cfg *config.Config) *Service {
	return &Service{store: store, cfg: cfg}
}

// Snapshot returns the current document for read-only use.
func (s *Service) Snapshot() (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Load()
}

// Members returns the current roster in stored order.
func (s *Service) Members() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return doc.Members, nil
}

// Accounts returns the current account list in stored order.
func (s *Service) Accounts() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return doc.Accounts, nil
}

// ParseAmount parses a user-entered amount, accepting either comma or period
// as the decimal separator.
func ParseAmount(text string) (decimal.Decimal, error) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return d, nil
}
