package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"masabot/internal/models"
)

const tablesPerPage = 8

// sendTablePage renders one page of free tables as an inline keyboard.
// messageID 0 sends a new message, otherwise the existing keyboard is
// edited in place.
func (b *Bot) sendTablePage(chatID int64, messageID, page int, tables []models.Table) {
	totalPages := (len(tables) + tablesPerPage - 1) / tablesPerPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 0 {
		page = 0
	}
	if page >= totalPages {
		page = totalPages - 1
	}
	start := page * tablesPerPage
	end := start + tablesPerPage
	if end > len(tables) {
		end = len(tables)
	}

	text := replyChooseTable
	if totalPages > 1 {
		text = fmt.Sprintf("%s\n\nSayfa %d/%d", replyChooseTable, page+1, totalPages)
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range tables[start:end] {
		label := fmt.Sprintf("Masa %d (%d kişilik, %s)", t.ID, t.Capacity, t.Location)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("table:%d", t.ID)),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️", fmt.Sprintf("tblpage:%d", page-1)))
	}
	if page < totalPages-1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("➡️", fmt.Sprintf("tblpage:%d", page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)

	if messageID == 0 {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyMarkup = keyboard
		b.send(msg)
		return
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, keyboard)
	b.send(edit)
}
