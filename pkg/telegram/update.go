package telegram

// Update is the subset of a Bot API webhook update the service consumes.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// CallbackQuery carries an inline button press back to the bot.
type CallbackQuery struct {
	ID   string `json:"id"`
	From *User  `json:"from,omitempty"`
	Data string `json:"data"`
}

// User identifies the Telegram account behind a callback.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}
