// Package cycle runs one scrape-diff-notify pass and schedules repeated passes.
//
// A Runner fetches the author's status page, puts the submissions in
// chronological order and announces every one the seen-set has not recorded
// yet. Each announcement is followed by a seen-set write before the next
// submission is considered. Fetch and seen-set failures end the cycle;
// delivery failures are logged and the cycle carries on.
//
// A Scheduler triggers the Runner on a cron schedule and never lets two cycles
// overlap.
package cycle
