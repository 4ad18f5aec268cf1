package client

import "errors"

var (
	// ErrNotAuthenticated is returned before any network call when the
	// session has no user.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrConversationUnavailable means identity resolution failed. The
	// session never fabricates a local-only conversation as a substitute.
	ErrConversationUnavailable = errors.New("conversation unavailable")

	// ErrSendFailed means the optimistic entry was rolled back and the user
	// must resend explicitly.
	ErrSendFailed = errors.New("message send failed")
)
