// Package chat turns chat messages into occupancy store operations.
//
// Parse converts message text into a tagged Command (Toggle, Status, List,
// Reset, Start, Help). The Dispatcher authorizes the sender against the single
// configured administrator, runs the command against the shared *slots.Store
// and formats the Spanish reply text.
//
// Two transports feed the Dispatcher:
//   - TelegramBot: long polling through the Bot API. Each update is handled
//     on its own goroutine, so overlapping commands rely on the Store's
//     writer serialization. Sender identity is the numeric Telegram user id.
//   - TwitchBot: joins one channel over IRC and answers "!toggle 025" style
//     messages. Sender identity is the Twitch user id.
package chat
