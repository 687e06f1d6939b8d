// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package netguard

import (
	"github.com/neville-gpp/farmily-up-sub000/internal/netstatus"
	"github.com/neville-gpp/farmily-up-sub000/internal/retry"
)

// userMessages maps failure categories to the copy shown in the
// client UI. The phrasing is part of the product surface; tests pin
// it verbatim.
var userMessages = map[retry.Category]string{
	retry.CategoryOffline:    "You appear to be offline. Please check your internet connection.",
	retry.CategoryTimeout:    "The request timed out. Please try again.",
	retry.CategoryConnection: "Unable to reach Farmily Up servers. Please try again shortly.",
	retry.CategoryNetwork:    "Unable to reach Farmily Up servers. Please try again shortly.",
	retry.CategoryServer:     "Something went wrong on our side. Please try again in a few minutes.",
	retry.CategoryThrottled:  "Too many requests. Please wait a moment and try again.",
	retry.CategoryAuth:       "Your session has expired. Please sign in again.",
	retry.CategoryValidation: "Some of the information provided is invalid.",
}

// DefaultUserMessage covers categories with no dedicated copy.
const DefaultUserMessage = "Something unexpected happened. Please try again."

// SlowConnectionMessage replaces the category copy when a failure
// surfaces on a poor-quality link: the link itself is the likeliest
// culprit, so the advice leads with it.
const SlowConnectionMessage = "Your connection seems slow. Please try again."

// MessageFor returns the user-facing message for a failure category.
func MessageFor(category retry.Category) string {
	if msg, ok := userMessages[category]; ok {
		return msg
	}
	return DefaultUserMessage
}

// MessageForStatus returns the message for a failure surfaced with
// the given network status. An online link measured poor overrides
// the category copy with the slow-connection message.
func MessageForStatus(category retry.Category, status netstatus.Status) string {
	if status.Online && status.Quality == netstatus.QualityPoor {
		return SlowConnectionMessage
	}
	return MessageFor(category)
}

// MessageForError classifies err and returns its user-facing message.
// A nil error has no message.
func MessageForError(err error) string {
	if err == nil {
		return ""
	}
	return MessageFor(retry.Classify(err))
}
