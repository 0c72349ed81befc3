package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/schaferjart/telegram-finance/internal/models"
	"github.com/schaferjart/telegram-finance/internal/service"
)

// Add-transaction dialog: choices arrive as callback queries, amounts and the
// note as plain text.
const (
	stepTxnType             = "txn_type"
	stepTxnAmount           = "txn_amount"
	stepTxnCurrency         = "txn_currency"
	stepTxnFrom             = "txn_from"
	stepTxnAmountReceived   = "txn_amount_received"
	stepTxnCurrencyReceived = "txn_currency_received"
	stepTxnTo               = "txn_to"
	stepTxnStatus           = "txn_status"
	stepTxnInfoChoice       = "txn_info_choice"
	stepTxnInfoText         = "txn_info_text"
)

// Callback data prefixes.
const (
	cbType             = "type:"
	cbCurrency         = "curr:"
	cbFrom             = "from:"
	cbCurrencyReceived = "rcurr:"
	cbTo               = "to:"
	cbStatus           = "status:"
	cbInfo             = "info:"
)

func (h *BotHandler) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		h.answerCallback(query, "")
		return
	}
	chatID := query.Message.Chat.ID
	userID := query.From.ID

	state := h.activeState(userID, chatID)
	if state == nil {
		h.answerCallback(query, "")
		return
	}
	state.LastActive = time.Now()
	messageID := query.Message.MessageID
	data := query.Data

	switch {
	case strings.HasPrefix(data, cbType) && state.Step == stepTxnType:
		state.Draft.Type = strings.TrimPrefix(data, cbType)
		state.Step = stepTxnAmount
		h.edit(chatID, messageID, "How much did you spend?")

	case strings.HasPrefix(data, cbCurrency) && state.Step == stepTxnCurrency:
		state.Draft.CurrencySent = strings.TrimPrefix(data, cbCurrency)
		accounts, err := h.service.Accounts()
		if err != nil {
			delete(h.userStates, userID)
			h.sendError(chatID, err)
			break
		}
		if len(accounts) == 0 {
			delete(h.userStates, userID)
			h.edit(chatID, messageID, "You don't have any accounts yet.")
			h.send(chatID, "Please set up an account first using the 'Manage Accounts' button.", h.mainKeyboard())
			break
		}
		state.Step = stepTxnFrom
		h.editWithKeyboard(chatID, messageID, "Which account did you use?", inlineKeyboard(cbFrom, accounts))

	case strings.HasPrefix(data, cbFrom) && state.Step == stepTxnFrom:
		state.Draft.From = strings.TrimPrefix(data, cbFrom)
		if h.cfg.IsTransferType(state.Draft.Type) {
			state.Step = stepTxnAmountReceived
			h.edit(chatID, messageID, "How much arrives at the destination?")
		} else {
			state.Step = stepTxnInfoChoice
			h.editWithKeyboard(chatID, messageID, "Do you want to add a note?", inlineKeyboard(cbInfo, []string{btnYes, btnNone}))
		}

	case strings.HasPrefix(data, cbCurrencyReceived) && state.Step == stepTxnCurrencyReceived:
		state.Draft.CurrencyReceived = strings.TrimPrefix(data, cbCurrencyReceived)
		accounts, err := h.service.Accounts()
		if err != nil {
			delete(h.userStates, userID)
			h.sendError(chatID, err)
			break
		}
		if len(accounts) == 0 {
			delete(h.userStates, userID)
			h.edit(chatID, messageID, "You don't have any accounts yet.")
			h.send(chatID, "Please set up an account first using the 'Manage Accounts' button.", h.mainKeyboard())
			break
		}
		state.Step = stepTxnTo
		h.editWithKeyboard(chatID, messageID, "Which account receives it?", inlineKeyboard(cbTo, accounts))

	case strings.HasPrefix(data, cbTo) && state.Step == stepTxnTo:
		state.Draft.To = strings.TrimPrefix(data, cbTo)
		state.Step = stepTxnStatus
		h.editWithKeyboard(chatID, messageID, "Is this transfer settled or pending?",
			inlineKeyboard(cbStatus, []string{string(models.StatusClosed), string(models.StatusPending)}))

	case strings.HasPrefix(data, cbStatus) && state.Step == stepTxnStatus:
		state.Draft.Status = models.TransactionStatus(strings.TrimPrefix(data, cbStatus))
		state.Step = stepTxnInfoChoice
		h.editWithKeyboard(chatID, messageID, "Do you want to add a note?", inlineKeyboard(cbInfo, []string{btnYes, btnNone}))

	case strings.HasPrefix(data, cbInfo) && state.Step == stepTxnInfoChoice:
		if strings.TrimPrefix(data, cbInfo) == btnNone {
			state.Draft.Info = ""
			h.finalizeTransaction(chatID, userID, state)
		} else {
			state.Step = stepTxnInfoText
			h.edit(chatID, messageID, "Enter the details now:")
		}
	}

	h.answerCallback(query, "")
}

// handleTransactionText covers the text-input steps of the transaction
// dialog.
func (h *BotHandler) handleTransactionText(chatID, userID int64, state *UserState, text string) {
	switch state.Step {
	case stepTxnAmount:
		if _, err := service.ParseAmount(text); err != nil {
			h.send(chatID, "That's not a valid amount. Please enter a number (e.g., 10.50).", nil)
			return
		}
		state.Draft.AmountSent = text
		state.Step = stepTxnCurrency
		h.send(chatID, "Select the currency:", inlineKeyboard(cbCurrency, h.cfg.Currencies))

	case stepTxnAmountReceived:
		if _, err := service.ParseAmount(text); err != nil {
			h.send(chatID, "That's not a valid amount. Please enter a number (e.g., 10.50).", nil)
			return
		}
		state.Draft.AmountReceived = text
		state.Step = stepTxnCurrencyReceived
		h.send(chatID, "Select the currency that arrives:", inlineKeyboard(cbCurrencyReceived, h.cfg.Currencies))

	case stepTxnInfoText:
		state.Draft.Info = text
		h.finalizeTransaction(chatID, userID, state)
	}
}

func (h *BotHandler) finalizeTransaction(chatID, userID int64, state *UserState) {
	txn, err := h.service.RecordTransaction(state.Draft)
	delete(h.userStates, userID)
	if errors.Is(err, service.ErrNoAccounts) {
		h.send(chatID, "Please set up an account first using the 'Manage Accounts' button.", h.mainKeyboard())
		return
	}
	if err != nil {
		h.sendError(chatID, err)
		return
	}

	info := txn.Info
	if info == "" {
		info = "N/A"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Transaction Recorded!\n\n")
	fmt.Fprintf(&b, "Type: %s\n", txn.Type)
	fmt.Fprintf(&b, "Amount: %s %s\n", txn.AmountSent.StringFixed(2), txn.CurrencySent)
	fmt.Fprintf(&b, "Account: %s\n", txn.From)
	if txn.To != "" {
		fmt.Fprintf(&b, "Received: %s %s\n", txn.AmountReceived.StringFixed(2), txn.CurrencyReceived)
		fmt.Fprintf(&b, "To: %s\n", txn.To)
		fmt.Fprintf(&b, "Status: %s\n", txn.Status)
	}
	fmt.Fprintf(&b, "Notes: %s", info)
	h.send(chatID, b.String(), h.mainKeyboard())
}

func (h *BotHandler) edit(chatID int64, messageID int, text string) {
	if _, err := h.bot.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		log.Printf("Error editing message: %v", err)
	}
}

func (h *BotHandler) editWithKeyboard(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	if _, err := h.bot.Send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, kb)); err != nil {
		log.Printf("Error editing message: %v", err)
	}
}

func (h *BotHandler) answerCallback(query *tgbotapi.CallbackQuery, text string) {
	callback := tgbotapi.NewCallback(query.ID, text)
	if _, err := h.bot.Request(callback); err != nil {
		log.Printf("Error answering callback: %v", err)
	}
}
