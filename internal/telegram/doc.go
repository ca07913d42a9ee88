// Package telegram formats Timus submissions as Telegram messages and delivers
// them through the Bot API.
//
// Messages use the HTML parse mode with links to the problem and the author's
// status page. Delivery uses plain HTTP requests against sendMessage.
//
// Authentication requires a bot token (from @BotFather) and chat ID.
package telegram
