// Package report renders ledger state and calculator outputs into the text
// the bot sends. Pure functions, no mutation; identical state produces
// byte-identical output.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/schaferjart/telegram-finance/internal/models"
)

// Standings renders the combined chore/balance standings. Empty roster and
// empty chores are explicit branches, never omitted sections.
func Standings(rows []models.StandingRow, hasChores bool) string {
	var b strings.Builder
	b.WriteString("Chore Standings + Financial Balance:\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "%s: %d points (Balance: %s€)\n", row.Member, row.Points, signed(row.Balance))
	}
	if len(rows) == 0 {
		b.WriteString("No members recorded yet.")
	} else if !hasChores {
		b.WriteString("No chores recorded yet.")
	}
	return b.String()
}

// BeerPenalties renders the outcome of the on-demand penalty check.
func BeerPenalties(out models.PenaltyOutcome) string {
	if out.Leader == "" {
		return "No chores recorded yet."
	}
	if len(out.Changes) == 0 {
		return "No penalties this week!"
	}
	lines := []string{"Beer Penalties:"}
	for _, c := range out.Changes {
		lines = append(lines, fmt.Sprintf("%s owes %d beers!", c.Member, c.WeeksOwed))
	}
	return strings.Join(lines, "\n")
}

// Weekly renders the scheduled weekly report for the group chat.
func Weekly(out models.PenaltyOutcome, date string) string {
	if out.Leader == "" {
		return "Weekly Report: Not enough data to calculate penalties. Make sure members are added and chores are recorded."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Weekly Chore Report (%s):\n\n", date)
	fmt.Fprintf(&b, "👑 Leader: %s with %d points\n\n", out.Leader, out.LeaderPoints)

	if len(out.Changes) == 0 {
		b.WriteString("Everyone is keeping up with their chores! No penalties this week. 🎉")
		return b.String()
	}

	lines := make([]string, 0, len(out.Changes))
	for _, c := range out.Changes {
		switch c.Status {
		case models.PenaltyOwed:
			lines = append(lines, fmt.Sprintf("%s owes %d beers! 🍺", c.Member, c.WeeksOwed))
		case models.PenaltyAtRisk:
			lines = append(lines, fmt.Sprintf("%s is lagging by %d points behind %s. If not improved by next week, beer penalty will apply! ⚠️", c.Member, c.Gap, out.Leader))
		case models.PenaltyImproved:
			lines = append(lines, fmt.Sprintf("%s has improved their standing! No beer penalty this week. 👍", c.Member))
		}
	}
	b.WriteString("Penalties:\n")
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

// TransactionTable renders transactions (already newest first) as a markdown
// table.
func TransactionTable(txs []models.Transaction) string {
	if len(txs) == 0 {
		return "No transactions found."
	}
	lines := []string{
		"📄 Your Recent Transactions:",
		"",
		"| Date | Type | Amount | Curr | From | Details |",
		"|---|---|---|---|---|---|",
	}
	for _, t := range txs {
		info := t.Info
		if r := []rune(info); len(r) > 10 {
			info = string(r[:10])
		}
		lines = append(lines, fmt.Sprintf("| %s | %s | %s | %s | %s | %s |",
			t.Date, t.Type, t.AmountSent.StringFixed(2), t.CurrencySent, t.From, info))
	}
	return strings.Join(lines, "\n")
}

// AccountSummary renders per-account balances and per-category spending.
func AccountSummary(doc *models.Document) string {
	var b strings.Builder
	b.WriteString("💳 Account Summary\n")
	if len(doc.Accounts) == 0 {
		b.WriteString("No accounts recorded yet.\n")
	}
	for _, acc := range doc.Accounts {
		bal := doc.Balances[acc]
		if bal == nil {
			fmt.Fprintf(&b, " - %s: 0.00\n", acc)
			continue
		}
		fmt.Fprintf(&b, " - %s: %s\n", acc, totals(bal.Settled))
		if len(bal.Pending) > 0 {
			fmt.Fprintf(&b, "   pending: %s\n", totals(bal.Pending))
		}
	}

	b.WriteString("\n📊 Spending by Category\n")
	if len(doc.SpendingCategories) == 0 {
		b.WriteString("No spending recorded yet.\n")
		return b.String()
	}
	cats := make([]string, 0, len(doc.SpendingCategories))
	for cat := range doc.SpendingCategories {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		fmt.Fprintf(&b, " - %s: %s\n", capitalize(cat), totals(doc.SpendingCategories[cat].Total))
	}
	return b.String()
}

// totals renders a currency map with sorted currency codes, or "0.00" when
// empty.
func totals(m map[string]decimal.Decimal) string {
	if len(m) == 0 {
		return "0.00"
	}
	currencies := make([]string, 0, len(m))
	for c := range m {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)
	parts := make([]string, 0, len(currencies))
	for _, c := range currencies {
		parts = append(parts, fmt.Sprintf("%s %s", m[c].StringFixed(2), c))
	}
	return strings.Join(parts, ", ")
}

func signed(d decimal.Decimal) string {
	s := d.Round(2).StringFixed(2)
	if !strings.HasPrefix(s, "-") {
		s = "+" + s
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
