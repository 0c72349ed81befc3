package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/schaferjart/telegram-finance/internal/models"
)

// RecordExpense validates and commits one shared expense. Balances are not
// touched here; the expense variant derives them lazily in Standings.
func (s *Service) RecordExpense(amountText, payer string, splitWith []string) (models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	amount, err := ParseAmount(amountText)
	if err != nil {
		return models.Expense{}, err
	}
	if !amount.IsPositive() {
		return models.Expense{}, ErrInvalidAmount
	}
	exp, err := models.NewExpense(amount, payer, splitWith)
	if err != nil {
		return models.Expense{}, err
	}

	doc, err := s.store.Load()
	if err != nil {
		return models.Expense{}, err
	}
	if len(doc.Members) == 0 {
		return models.Expense{}, ErrNoMembers
	}
	doc.Expenses = append(doc.Expenses, exp)
	if err := s.store.Save(doc); err != nil {
		return models.Expense{}, err
	}
	return exp, nil
}

// RecordChore converts minutes to points (one point per full 15 minutes,
// remainder discarded) and accumulates them on the member's total. Returns
// the points earned and the member's new total.
func (s *Service) RecordChore(member, minutesText string) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	minutes, err := strconv.Atoi(strings.TrimSpace(minutesText))
	if err != nil || minutes < 0 {
		return 0, 0, ErrInvalidDuration
	}
	points := minutes / 15

	doc, err := s.store.Load()
	if err != nil {
		return 0, 0, err
	}
	doc.Chores[member] += points
	total := doc.Chores[member]
	if err := s.store.Save(doc); err != nil {
		return 0, 0, err
	}
	return points, total, nil
}

// TransactionDraft carries the staged input of the add-transaction dialog.
// Amounts stay as entered; the engine parses and validates them on commit.
type TransactionDraft struct {
	Type             string
	AmountSent       string
	CurrencySent     string
	From             string
	AmountReceived   string
	CurrencyReceived string
	To               string
	Status           models.TransactionStatus
	Info             string
}

// RecordTransaction validates and commits one finance entry, in fixed order:
// append to the log, update balances, update category aggregates, persist.
// The balance update is a pure running total; it is never replayed from the
// log on the normal path.
func (s *Service) RecordTransaction(draft TransactionDraft) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	amountSent, err := ParseAmount(draft.AmountSent)
	if err != nil {
		return models.Transaction{}, err
	}
	amountReceived := decimal.Zero
	if strings.TrimSpace(draft.AmountReceived) != "" {
		amountReceived, err = ParseAmount(draft.AmountReceived)
		if err != nil {
			return models.Transaction{}, err
		}
	}

	doc, err := s.store.Load()
	if err != nil {
		return models.Transaction{}, err
	}
	if len(doc.Accounts) == 0 {
		return models.Transaction{}, ErrNoAccounts
	}

	simple := !s.cfg.IsTransferType(draft.Type)
	txn := models.NewTransaction(draft.Type, amountSent, draft.CurrencySent, draft.From,
		amountReceived, draft.CurrencyReceived, draft.To, draft.Status, draft.Info,
		simple, time.Now())

	doc.Transactions = append(doc.Transactions, txn)
	s.applyTransaction(doc, txn)
	if err := s.store.Save(doc); err != nil {
		return models.Transaction{}, err
	}
	return txn, nil
}

// applyTransaction is the single code path that moves a committed transaction
// into balances and spending aggregates. RecordTransaction and
// RecomputeBalances both go through here.
func (s *Service) applyTransaction(doc *models.Document, txn models.Transaction) {
	bal := doc.Balances[txn.From]
	if bal == nil {
		bal = models.NewBalance()
		doc.Balances[txn.From] = bal
	}
	bal.Apply(txn.Status, txn.CurrencySent, txn.AmountSent.Neg())

	if txn.To != "" && txn.AmountReceived.IsPositive() {
		dst := doc.Balances[txn.To]
		if dst == nil {
			dst = models.NewBalance()
			doc.Balances[txn.To] = dst
		}
		dst.Apply(txn.Status, txn.CurrencyReceived, txn.AmountReceived)
	}

	if s.cfg.IsSpendingCategory(txn.Type) {
		agg := doc.SpendingCategories[txn.Type]
		if agg == nil {
			agg = &models.CategoryAggregate{}
			doc.SpendingCategories[txn.Type] = agg
		}
		agg.Add(txn)
	}
}

// RecomputeBalances rebuilds balances and spending aggregates by replaying
// the full transaction log. Drift-recovery operation; the normal write path
// never replays.
func (s *Service) RecomputeBalances() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load()
	if err != nil {
		return err
	}
	doc.Balances = map[string]*models.Balance{}
	doc.SpendingCategories = map[string]*models.CategoryAggregate{}
	for _, txn := range doc.Transactions {
		s.applyTransaction(doc, txn)
	}
	return s.store.Save(doc)
}

// RecentTransactions returns up to limit transactions, newest first.
func (s *Service) RecentTransactions(limit int) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	txs := doc.Transactions
	if limit > 0 && len(txs) > limit {
		txs = txs[len(txs)-limit:]
	}
	out := make([]models.Transaction, 0, len(txs))
	for i := len(txs) - 1; i >= 0; i-- {
		out = append(out, txs[i])
	}
	return out, nil
}

// RegisterReportChat persists the broadcast destination for weekly reports.
func (s *Service) RegisterReportChat(chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load()
	if err != nil {
		return err
	}
	doc.GroupChatID = chatID
	return s.store.Save(doc)
}
