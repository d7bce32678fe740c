package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[SendVerificationMessageMessage]   = (*SendVerificationMessageCommand)(nil)
	_ gocmd.Commander[RevokeVerificationMessageMessage] = (*RevokeVerificationMessageCommand)(nil)
)
