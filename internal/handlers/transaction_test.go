package handlers

import (
	"net/http"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"github.com/schaferjart/telegram-finance/internal/config"
	"github.com/schaferjart/telegram-finance/internal/repository"
	"github.com/schaferjart/telegram-finance/internal/service"
)

// newTestHandler wires a handler to an in-memory store and a bot whose sends
// fail fast without touching the network; the handler only logs send errors,
// so dialog state transitions stay observable.
func newTestHandler(t *testing.T) *BotHandler {
	t.Helper()
	cfg := &config.Config{
		Currencies:          []string{"USD", "EUR"},
		TransactionTypes:    []string{"groceries", "transfer"},
		TransferTypes:       []string{"transfer"},
		SpendingCategories:  []string{"groceries"},
		ListLimit:           15,
		ConversationTimeout: time.Minute,
	}
	svc := service.New(repository.NewMemStore(), cfg)
	bot := &tgbotapi.BotAPI{Client: &http.Client{}}
	return NewBotHandler(bot, svc, cfg)
}

func callback(userID int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: userID}},
		Data:    data,
	}
}

func TestTransferToStepAbortsWithoutAccounts(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	h.userStates[42] = &UserState{
		Step:       stepTxnCurrencyReceived,
		LastActive: time.Now(),
		Draft:      service.TransactionDraft{Type: "transfer", AmountSent: "100", CurrencySent: "EUR", From: "Cash"},
	}

	// All accounts were removed while the dialog was open; the dialog must
	// abort instead of offering an empty account keyboard.
	h.handleCallbackQuery(callback(42, cbCurrencyReceived+"USD"))
	require.NotContains(t, h.userStates, int64(42))
}

func TestTransferToStepKeepsDialogWithAccounts(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	_, _, err := h.service.ToggleAccount("Cash")
	require.NoError(t, err)

	h.userStates[42] = &UserState{
		Step:       stepTxnCurrencyReceived,
		LastActive: time.Now(),
		Draft:      service.TransactionDraft{Type: "transfer", AmountSent: "100", CurrencySent: "EUR", From: "Cash"},
	}

	h.handleCallbackQuery(callback(42, cbCurrencyReceived+"USD"))
	state, ok := h.userStates[42]
	require.True(t, ok)
	require.Equal(t, stepTxnTo, state.Step)
	require.Equal(t, "USD", state.Draft.CurrencyReceived)
}
