package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Document is the entire persisted state of one deployment. It is loaded
// wholesale at the start of every operation and written back wholesale at the
// end; the store is the state.
type Document struct {
	// Household side.
	Members           []string        `json:"members"`
	Expenses          []Expense       `json:"expenses"`
	Chores            map[string]int  `json:"chores"`
	Penalties         map[string]int  `json:"penalties"`
	LastWeekViolators map[string]bool `json:"last_week_violators,omitempty"`

	// Finance side.
	Accounts           []string                      `json:"accounts"`
	Transactions       []Transaction                 `json:"transactions"`
	Balances           map[string]*Balance           `json:"balances"`
	SpendingCategories map[string]*CategoryAggregate `json:"spending_categories"`

	// Destination for scheduled weekly reports, 0 until registered.
	GroupChatID int64 `json:"group_chat_id,omitempty"`
}

// NewDocument returns the empty default document used when the data file is
// missing or unreadable.
func NewDocument() *Document {
	return &Document{
		Members:            []string{},
		Expenses:           []Expense{},
		Chores:             map[string]int{},
		Penalties:          map[string]int{},
		Accounts:           []string{},
		Transactions:       []Transaction{},
		Balances:           map[string]*Balance{},
		SpendingCategories: map[string]*CategoryAggregate{},
	}
}

// Normalize allocates any maps or slices a hand-edited or older data file may
// have left null, so callers never have to nil-check.
func (d *Document) Normalize() {
	if d.Members == nil {
		d.Members = []string{}
	}
	if d.Expenses == nil {
		d.Expenses = []Expense{}
	}
	if d.Chores == nil {
		d.Chores = map[string]int{}
	}
	if d.Penalties == nil {
		d.Penalties = map[string]int{}
	}
	if d.Accounts == nil {
		d.Accounts = []string{}
	}
	if d.Transactions == nil {
		d.Transactions = []Transaction{}
	}
	if d.Balances == nil {
		d.Balances = map[string]*Balance{}
	}
	if d.SpendingCategories == nil {
		d.SpendingCategories = map[string]*CategoryAggregate{}
	}
}

// Expense is one shared household expense. The payer covered Amount and the
// members in SplitWith owe an equal share each.
type Expense struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Payer     string          `json:"payer"`
	SplitWith []string        `json:"split_with"`
	CreatedAt time.Time       `json:"created_at"`
}

var ErrEmptySplit = errors.New("expense must be split with at least one member")

// NewExpense validates and builds an expense. The amount is rounded to two
// decimal places at entry time.
func NewExpense(amount decimal.Decimal, payer string, splitWith []string) (Expense, error) {
	if len(splitWith) == 0 {
		return Expense{}, ErrEmptySplit
	}
	return Expense{
		ID:        uuid.New(),
		Amount:    amount.Round(2),
		Payer:     payer,
		SplitWith: splitWith,
		CreatedAt: time.Now().UTC(),
	}, nil
}

type TransactionStatus string

const (
	StatusClosed  TransactionStatus = "closed"
	StatusPending TransactionStatus = "pending"
)

// Transaction is one finance entry. Simple types only spend from an account;
// transfer types additionally credit a destination account.
type Transaction struct {
	ID               uuid.UUID         `json:"id"`
	Date             string            `json:"date"`
	Type             string            `json:"type"`
	AmountSent       decimal.Decimal   `json:"amount_sent"`
	CurrencySent     string            `json:"currency_sent"`
	From             string            `json:"from"`
	AmountReceived   decimal.Decimal   `json:"amount_received"`
	CurrencyReceived string            `json:"currency_received"`
	To               string            `json:"to"`
	Status           TransactionStatus `json:"status"`
	Info             string            `json:"info"`
	Description      string            `json:"description"`
}

// NewTransaction builds a transaction from already-parsed fields. When simple
// is true the receiving side is forced empty and the status forced to closed,
// regardless of what the caller staged.
func NewTransaction(txnType string, amountSent decimal.Decimal, currencySent, from string,
	amountReceived decimal.Decimal, currencyReceived, to string, status TransactionStatus,
	info string, simple bool, now time.Time) Transaction {

	txn := Transaction{
		ID:               uuid.New(),
		Date:             now.Format("2006-01-02"),
		Type:             txnType,
		AmountSent:       amountSent,
		CurrencySent:     currencySent,
		From:             from,
		AmountReceived:   amountReceived,
		CurrencyReceived: currencyReceived,
		To:               to,
		Status:           status,
		Info:             info,
	}
	if simple {
		txn.AmountReceived = decimal.Zero
		txn.CurrencyReceived = ""
		txn.To = ""
		txn.Status = StatusClosed
		txn.Description = fmt.Sprintf("%s purchase", capitalize(txnType))
	} else {
		txn.Description = fmt.Sprintf("%s from %s to %s", capitalize(txnType), from, to)
	}
	if txn.Status == "" {
		txn.Status = StatusClosed
	}
	return txn
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Balance holds per-currency running totals for one account, split into
// settled and pending buckets. Totals are only ever updated as a side effect
// of committing a transaction, never recomputed on read.
type Balance struct {
	Settled map[string]decimal.Decimal `json:"settled"`
	Pending map[string]decimal.Decimal `json:"pending,omitempty"`
}

func NewBalance() *Balance {
	return &Balance{Settled: map[string]decimal.Decimal{}}
}

// Apply adds delta to the bucket selected by status for the given currency.
func (b *Balance) Apply(status TransactionStatus, currency string, delta decimal.Decimal) {
	bucket := b.bucket(status)
	bucket[currency] = bucket[currency].Add(delta)
}

func (b *Balance) bucket(status TransactionStatus) map[string]decimal.Decimal {
	if status == StatusPending {
		if b.Pending == nil {
			b.Pending = map[string]decimal.Decimal{}
		}
		return b.Pending
	}
	if b.Settled == nil {
		b.Settled = map[string]decimal.Decimal{}
	}
	return b.Settled
}

// CategoryAggregate accumulates the transactions and per-currency totals of
// one spending category, built incrementally alongside balance updates.
type CategoryAggregate struct {
	Transactions []Transaction              `json:"transactions"`
	Total        map[string]decimal.Decimal `json:"total"`
}

func (c *CategoryAggregate) Add(txn Transaction) {
	if c.Total == nil {
		c.Total = map[string]decimal.Decimal{}
	}
	c.Transactions = append(c.Transactions, txn)
	c.Total[txn.CurrencySent] = c.Total[txn.CurrencySent].Add(txn.AmountSent)
}

// StandingRow is one line of the chore standings, derived fresh on each
// report request.
type StandingRow struct {
	Member  string
	Points  int
	Balance decimal.Decimal
}

type PenaltyStatus string

const (
	PenaltyAtRisk   PenaltyStatus = "at_risk"
	PenaltyOwed     PenaltyStatus = "penalized"
	PenaltyImproved PenaltyStatus = "improved"
)

// PenaltyChange records what happened to one member during a penalty check.
type PenaltyChange struct {
	Member    string
	Gap       int
	WeeksOwed int
	Status    PenaltyStatus
}

// PenaltyOutcome is the structured result of a penalty check. Leader is empty
// when there was not enough data to run the check.
type PenaltyOutcome struct {
	Leader       string
	LeaderPoints int
	Changes      []PenaltyChange
}
