package domain

import "strconv"

// Key namespaces in the shared store. All keys are built here so that
// callers never concatenate prefixes by hand.
const (
	nsChallenge  = "verify-"
	nsGrant      = "verified-"
	nsBlocked    = "isblocked-"
	nsRoute      = "msg-map-"
	nsLastNotify = "lastmsg-"
)

// ChallengeKey holds the pending expected answer for a user
func ChallengeKey(userID string) string {
	return nsChallenge + userID
}

// GrantKey holds the verification grant for a user
func GrantKey(userID string) string {
	return nsGrant + userID
}

// BlockKey holds the block flag for a user
func BlockKey(userID string) string {
	return nsBlocked + userID
}

// RouteKey maps a relayed message id back to its guest
func RouteKey(relayedMessageID int) string {
	return nsRoute + strconv.Itoa(relayedMessageID)
}

// NotifyCursorKey holds the last notification time for a user
func NotifyCursorKey(userID string) string {
	return nsLastNotify + userID
}
