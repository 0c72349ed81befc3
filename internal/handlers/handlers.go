package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/schaferjart/telegram-finance/internal/config"
	"github.com/schaferjart/telegram-finance/internal/models"
	"github.com/schaferjart/telegram-finance/internal/report"
	"github.com/schaferjart/telegram-finance/internal/service"
)

// Main menu buttons.
const (
	btnAddExpense       = "Add Expense"
	btnAddChore         = "Add Chore"
	btnAddTransaction   = "Add Transaction"
	btnListTransactions = "List Transactions"
	btnStandings        = "Standings"
	btnBeerOwed         = "Check Beer Owed"
	btnGenerateReport   = "Generate Report"
	btnManageMembers    = "Manage Members"
	btnManageAccounts   = "Manage Accounts"
	btnSetWeeklyReport  = "Set Weekly Report"
	btnCancel           = "Cancel"
	btnDone             = "Done"
	btnBack             = "Back"
	btnYes              = "Yes"
	btnNone             = "None"
)

// Conversation steps.
const (
	stepExpenseAmount  = "expense_amount"
	stepExpensePayer   = "expense_payer"
	stepExpenseSplit   = "expense_split"
	stepChoreMember    = "chore_member"
	stepChoreMinutes   = "chore_minutes"
	stepManageMembers  = "manage_members"
	stepManageAccounts = "manage_accounts"
)

type BotHandler struct {
	bot        *tgbotapi.BotAPI
	service    *service.Service
	cfg        *config.Config
	userStates map[int64]*UserState
}

// UserState holds the staged input of one multi-step dialog. Nothing in it
// reaches the ledger engine until the final step commits; a timed-out state
// is simply dropped.
type UserState struct {
	Step       string
	LastActive time.Time

	// Expense flow.
	Amount    string
	Payer     string
	SplitWith []string

	// Chore flow.
	ChoreMember string

	// Transaction flow.
	Draft service.TransactionDraft
}

func NewBotHandler(bot *tgbotapi.BotAPI, svc *service.Service, cfg *config.Config) *BotHandler {
	return &BotHandler{
		bot:        bot,
		service:    svc,
		cfg:        cfg,
		userStates: make(map[int64]*UserState),
	}
}

func (h *BotHandler) HandleUpdate(update tgbotapi.Update) {
	if update.Message != nil {
		h.handleMessage(update.Message)
	}
	if update.CallbackQuery != nil {
		h.handleCallbackQuery(update.CallbackQuery)
	}
}

func (h *BotHandler) handleMessage(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	userID := message.From.ID

	if message.IsCommand() {
		switch message.Command() {
		case "start":
			delete(h.userStates, userID)
			h.send(chatID, "Finance Bot is active! What would you like to do?", h.mainKeyboard())
		case "cancel":
			delete(h.userStates, userID)
			h.send(chatID, "Operation cancelled. Returning to the main menu.", h.mainKeyboard())
		}
		return
	}

	state := h.activeState(userID, chatID)
	text := strings.TrimSpace(message.Text)

	if state == nil {
		h.handleMenu(message, text)
		return
	}

	if text == btnCancel {
		delete(h.userStates, userID)
		h.send(chatID, "Operation cancelled. Returning to the main menu.", h.mainKeyboard())
		return
	}

	state.LastActive = time.Now()
	h.handleStateInput(message, state, text)
}

// activeState returns the user's dialog state, discarding it when the session
// timed out. Staged input of an expired dialog never reaches the engine.
func (h *BotHandler) activeState(userID, chatID int64) *UserState {
	state, ok := h.userStates[userID]
	if !ok {
		return nil
	}
	if time.Since(state.LastActive) > h.cfg.ConversationTimeout {
		delete(h.userStates, userID)
		h.send(chatID, "Session timed out. Returning to the main menu.", h.mainKeyboard())
		return nil
	}
	return state
}

func (h *BotHandler) handleMenu(message *tgbotapi.Message, text string) {
	chatID := message.Chat.ID
	userID := message.From.ID

	switch text {
	case btnAddExpense:
		h.userStates[userID] = &UserState{Step: stepExpenseAmount, LastActive: time.Now()}
		h.send(chatID, "Enter the amount:", tgbotapi.NewRemoveKeyboard(true))

	case btnAddChore:
		members, err := h.service.Members()
		if err != nil {
			h.sendError(chatID, err)
			return
		}
		if len(members) == 0 {
			h.send(chatID, "No members found. Please add members first.", h.mainKeyboard())
			return
		}
		h.userStates[userID] = &UserState{Step: stepChoreMember, LastActive: time.Now()}
		h.send(chatID, "Who completed the chore?", memberKeyboard(members, btnDone))

	case btnAddTransaction:
		h.userStates[userID] = &UserState{Step: stepTxnType, LastActive: time.Now()}
		h.send(chatID, "What kind of transaction is this?", inlineKeyboard(cbType, h.cfg.TransactionTypes))

	case btnListTransactions:
		txs, err := h.service.RecentTransactions(h.cfg.ListLimit)
		if err != nil {
			h.sendError(chatID, err)
			return
		}
		h.send(chatID, report.TransactionTable(txs), h.mainKeyboard())

	case btnStandings:
		rows, hasChores, err := h.service.Standings()
		if err != nil {
			h.sendError(chatID, err)
			return
		}
		h.send(chatID, report.Standings(rows, hasChores), nil)

	case btnBeerOwed:
		out, err := h.service.CheckBeerOwed()
		if err != nil {
			h.sendError(chatID, err)
			return
		}
		h.send(chatID, report.BeerPenalties(out), nil)

	case btnGenerateReport:
		doc, err := h.service.Snapshot()
		if err != nil {
			h.sendError(chatID, err)
			return
		}
		h.send(chatID, report.AccountSummary(doc), h.mainKeyboard())

	case btnManageMembers:
		members, err := h.service.Members()
		if err != nil {
			h.sendError(chatID, err)
			return
		}
		h.userStates[userID] = &UserState{Step: stepManageMembers, LastActive: time.Now()}
		if len(members) > 0 {
			h.send(chatID, fmt.Sprintf("Current members: %s\n\nEnter the name of the member to add or remove:", strings.Join(members, ", ")), tgbotapi.NewRemoveKeyboard(true))
		} else {
			h.send(chatID, "No members yet. Enter the name of a member to add:", tgbotapi.NewRemoveKeyboard(true))
		}

	case btnManageAccounts:
		accounts, err := h.service.Accounts()
		if err != nil {
			h.sendError(chatID, err)
			return
		}
		h.userStates[userID] = &UserState{Step: stepManageAccounts, LastActive: time.Now()}
		if len(accounts) > 0 {
			h.send(chatID, fmt.Sprintf("Your accounts: %s\n\nEnter a new name to add an account, or an existing name to remove it.", strings.Join(accounts, ", ")), backKeyboard())
		} else {
			h.send(chatID, "You have no accounts. Enter a name to create one.", backKeyboard())
		}

	case btnSetWeeklyReport:
		h.handleSetWeeklyReport(message)

	case btnCancel:
		h.send(chatID, "Operation cancelled. Returning to the main menu.", h.mainKeyboard())
	}
}

func (h *BotHandler) handleSetWeeklyReport(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if message.Chat.IsGroup() || message.Chat.IsSuperGroup() {
		if err := h.service.RegisterReportChat(chatID); err != nil {
			h.sendError(chatID, err)
			return
		}
		h.send(chatID, "Weekly reports will be sent to this group every Monday!", nil)
		return
	}

	doc, err := h.service.Snapshot()
	if err != nil {
		h.sendError(chatID, err)
		return
	}
	if doc.GroupChatID != 0 {
		h.send(chatID, "Weekly reports are set to be sent to a group chat. To change the group, use this command in the new group chat.", nil)
	} else {
		h.send(chatID, "Please use this command in the group chat where you want the weekly reports to be sent.", nil)
	}
}

func (h *BotHandler) handleStateInput(message *tgbotapi.Message, state *UserState, text string) {
	chatID := message.Chat.ID
	userID := message.From.ID

	switch state.Step {
	case stepExpenseAmount:
		if _, err := service.ParseAmount(text); err != nil {
			h.send(chatID, "Invalid amount. Try again.", nil)
			return
		}
		members, err := h.service.Members()
		if err != nil {
			h.sendError(chatID, err)
			return
		}
		if len(members) == 0 {
			delete(h.userStates, userID)
			h.send(chatID, "No members found. Please add members first.", h.mainKeyboard())
			return
		}
		state.Amount = text
		state.Step = stepExpensePayer
		h.send(chatID, "Who paid?", memberKeyboard(members, btnDone))

	case stepExpensePayer:
		state.Payer = text
		state.SplitWith = nil
		state.Step = stepExpenseSplit
		members, err := h.service.Members()
		if err != nil {
			h.sendError(chatID, err)
			return
		}
		h.send(chatID, "Who should split the expense? Select names and press 'Done' when finished:", memberKeyboard(members, btnDone))

	case stepExpenseSplit:
		h.handleExpenseSplit(chatID, userID, state, text)

	case stepChoreMember:
		state.ChoreMember = text
		state.Step = stepChoreMinutes
		h.send(chatID, "How many minutes did it take?", tgbotapi.NewRemoveKeyboard(true))

	case stepChoreMinutes:
		points, _, err := h.service.RecordChore(state.ChoreMember, text)
		if errors.Is(err, service.ErrInvalidDuration) {
			h.send(chatID, "Invalid input. Enter the minutes again.", nil)
			return
		}
		if err != nil {
			delete(h.userStates, userID)
			h.sendError(chatID, err)
			return
		}
		delete(h.userStates, userID)
		h.send(chatID, fmt.Sprintf("%s earned %d points!", state.ChoreMember, points), h.mainKeyboard())

	case stepManageMembers:
		action, name, err := h.service.ToggleMember(text)
		if err != nil {
			delete(h.userStates, userID)
			h.sendError(chatID, err)
			return
		}
		delete(h.userStates, userID)
		if action == service.ToggleRemoved {
			h.send(chatID, fmt.Sprintf("Removed %s from the household.", name), h.mainKeyboard())
		} else {
			h.send(chatID, fmt.Sprintf("Added %s to the household.", name), h.mainKeyboard())
		}

	case stepManageAccounts:
		if strings.EqualFold(text, btnBack) {
			delete(h.userStates, userID)
			h.send(chatID, "Account management closed.", h.mainKeyboard())
			return
		}
		action, name, err := h.service.ToggleAccount(text)
		if err != nil {
			delete(h.userStates, userID)
			h.sendError(chatID, err)
			return
		}
		delete(h.userStates, userID)
		if action == service.ToggleRemoved {
			h.send(chatID, fmt.Sprintf("Account '%s' has been removed.", name), h.mainKeyboard())
		} else {
			h.send(chatID, fmt.Sprintf("Account '%s' has been added.", name), h.mainKeyboard())
		}

	case stepTxnAmount, stepTxnAmountReceived, stepTxnInfoText:
		h.handleTransactionText(chatID, userID, state, text)
	}
}

func (h *BotHandler) handleExpenseSplit(chatID, userID int64, state *UserState, text string) {
	if strings.EqualFold(text, btnDone) {
		exp, err := h.service.RecordExpense(state.Amount, state.Payer, state.SplitWith)
		if errors.Is(err, models.ErrEmptySplit) {
			h.send(chatID, "You must select at least one person to split with.", nil)
			return
		}
		if err != nil {
			delete(h.userStates, userID)
			h.sendError(chatID, err)
			return
		}
		delete(h.userStates, userID)
		h.send(chatID, fmt.Sprintf("Expense of %s added by %s shared with %s",
			exp.Amount.StringFixed(2), exp.Payer, strings.Join(exp.SplitWith, ", ")), h.mainKeyboard())
		return
	}

	members, err := h.service.Members()
	if err != nil {
		h.sendError(chatID, err)
		return
	}
	if !containsName(members, text) {
		h.send(chatID, fmt.Sprintf("'%s' is not a valid member. Please select from the keyboard.", text), nil)
		return
	}
	if containsName(state.SplitWith, text) {
		h.send(chatID, fmt.Sprintf("'%s' has already been added to split list.", text), nil)
		return
	}
	state.SplitWith = append(state.SplitWith, text)
	h.send(chatID, fmt.Sprintf("%s added. Select more or press 'Done' when finished.", text), nil)
}

func (h *BotHandler) send(chatID int64, text string, keyboard interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	if _, err := h.bot.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

func (h *BotHandler) sendError(chatID int64, err error) {
	h.send(chatID, fmt.Sprintf("❌ Something went wrong: %v", err), h.mainKeyboard())
}

func (h *BotHandler) mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnAddExpense), tgbotapi.NewKeyboardButton(btnAddChore)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnAddTransaction), tgbotapi.NewKeyboardButton(btnListTransactions)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnStandings), tgbotapi.NewKeyboardButton(btnBeerOwed)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnGenerateReport), tgbotapi.NewKeyboardButton(btnManageMembers)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnManageAccounts), tgbotapi.NewKeyboardButton(btnSetWeeklyReport)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func memberKeyboard(members []string, extra string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(members)+1)
	for _, m := range members {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(m)))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(extra)))
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func backKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBack)))
	kb.ResizeKeyboard = true
	return kb
}

func inlineKeyboard(prefix string, options []string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(options))
	for _, opt := range options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(opt, prefix+opt)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func containsName(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
