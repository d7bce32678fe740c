package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-telegram-gateway/core"
)

var (
	_ gocmd.Querier[CheckSendAbilityMessage, core.RequestStatus]        = (*CheckSendAbilityQuery)(nil)
	_ gocmd.Querier[CheckVerificationStatusMessage, core.RequestStatus] = (*CheckVerificationStatusQuery)(nil)
)
