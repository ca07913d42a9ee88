// Package notifier provides the delivery interface for submission announcements
// and the channels beyond Telegram.
//
// TwitterNotifier posts the announcement text without markup, handling OAuth
// signing and the tweet length limit. DryRunNotifier prints messages instead of
// sending them.
package notifier
