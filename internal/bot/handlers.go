package bot

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to Homework Status Bot!

I watch your Yandex Practicum homework reviews and message you as soon as
the review status changes.

Polling is already running; nothing to set up.
Use /help for the command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Commands:
/status — show the poller state (cursor, last check, last message)
/check — poll the API now instead of waiting for the next tick
/help — this reference`)
}

func (b *Bot) handleStatus(chatID int64, poller Poller) {
	b.reply(chatID, FormatSnapshot(poller.Snapshot()))
}

func (b *Bot) handleCheck(chatID int64, poller Poller) {
	poller.ForceCheck()
	b.reply(chatID, "Check scheduled. You will get a message if anything changed.")
}
