// Package notify announces execution outcomes to a Telegram chat.
//
// The notifier is send-only and best-effort: sends run off the caller's
// goroutine and failures are logged and dropped.
package notify
