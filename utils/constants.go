// File: utils/constants.go
package utils

import "time"

// DraftPrefix is the prefix used for Redis reservation draft keys.
const DraftPrefix = "draft:"

// DraftLockPrefix guards a draft while a network call for it is in flight.
const DraftLockPrefix = "draftlock:"

// draftLockMargin is added on top of the API timeout so a draft lock never
// expires while the call it guards can still be running.
const draftLockMargin = 10 * time.Second

// minDraftLockTTL bounds how long a crashed request can hold a draft lock.
const minDraftLockTTL = 30 * time.Second

// DraftLockTTL returns the draft lock lifetime for a given PMove API timeout.
func DraftLockTTL(apiTimeout time.Duration) time.Duration {
	return max(minDraftLockTTL, apiTimeout+draftLockMargin)
}

// SessionPrefix is the prefix used for Redis user session keys.
const SessionPrefix = "session:"
