package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/schaferjart/telegram-finance/internal/models"
)

// Standings derives chore points and expense balances for every member,
// sorted by points descending; ties keep roster order. The second return
// value reports whether any chore entry resolved to a member. Read-only.
func (s *Service) Standings() ([]models.StandingRow, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load()
	if err != nil {
		return nil, false, err
	}
	r := s.memberRoster(doc)

	balances := make(map[string]decimal.Decimal, len(doc.Members))
	for _, m := range doc.Members {
		balances[m] = decimal.Zero
	}

	for _, exp := range doc.Expenses {
		share := exp.Amount.Div(decimal.NewFromInt(int64(len(exp.SplitWith))))
		if payer, ok := r.resolve(exp.Payer); ok {
			balances[payer] = balances[payer].Add(exp.Amount)
		}
		for _, user := range exp.SplitWith {
			if key, ok := r.resolve(user); ok {
				balances[key] = balances[key].Sub(share)
			}
		}
	}

	points := make(map[string]int, len(doc.Chores))
	hasChores := false
	for user, pts := range doc.Chores {
		if key, ok := r.resolve(user); ok {
			points[key] += pts
			hasChores = true
		}
	}

	rows := make([]models.StandingRow, 0, len(doc.Members))
	for _, m := range doc.Members {
		rows = append(rows, models.StandingRow{Member: m, Points: points[m], Balance: balances[m]})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Points > rows[j].Points })
	return rows, hasChores, nil
}
