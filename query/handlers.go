package query

import (
	"context"

	"github.com/goliatone/go-telegram-gateway/core"
)

type StatusReader interface {
	CheckSendAbility(ctx context.Context, phoneNumber string) (core.RequestStatus, error)
	CheckVerificationStatus(ctx context.Context, requestID string, code string) (core.RequestStatus, error)
}

type CheckSendAbilityQuery struct {
	reader StatusReader
}

func NewCheckSendAbilityQuery(reader StatusReader) *CheckSendAbilityQuery {
	return &CheckSendAbilityQuery{reader: reader}
}

func (q *CheckSendAbilityQuery) Query(ctx context.Context, msg CheckSendAbilityMessage) (core.RequestStatus, error) {
	if q == nil || q.reader == nil {
		return core.RequestStatus{}, queryDependencyError("query: gateway status reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.RequestStatus{}, err
	}
	return q.reader.CheckSendAbility(ctx, msg.PhoneNumber)
}

type CheckVerificationStatusQuery struct {
	reader StatusReader
}

func NewCheckVerificationStatusQuery(reader StatusReader) *CheckVerificationStatusQuery {
	return &CheckVerificationStatusQuery{reader: reader}
}

func (q *CheckVerificationStatusQuery) Query(
	ctx context.Context,
	msg CheckVerificationStatusMessage,
) (core.RequestStatus, error) {
	if q == nil || q.reader == nil {
		return core.RequestStatus{}, queryDependencyError("query: gateway status reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.RequestStatus{}, err
	}
	return q.reader.CheckVerificationStatus(ctx, msg.RequestID, msg.Code)
}
