// Package storage keeps an append-only history of timer operations issued
// through wakectl.
//
// The history is for operators ("what did I schedule last week?"). It is
// never consulted to decide whether a timer exists; systemd is the only
// source of truth for that.
package storage
