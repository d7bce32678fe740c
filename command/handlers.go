package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-telegram-gateway/core"
)

// MutatingClient is the part of the gateway client that spends balance or
// changes message state.
type MutatingClient interface {
	SendVerificationMessage(
		ctx context.Context,
		phoneNumber string,
		params core.SendVerificationMessageParameters,
	) (core.RequestStatus, error)
	RevokeVerificationMessage(ctx context.Context, requestID string) (bool, error)
}

// RevokeResult is stored in the result collector by RevokeVerificationMessageCommand.
type RevokeResult struct {
	RequestID string
	Accepted  bool
}

type SendVerificationMessageCommand struct {
	client MutatingClient
}

func NewSendVerificationMessageCommand(client MutatingClient) *SendVerificationMessageCommand {
	return &SendVerificationMessageCommand{client: client}
}

func (c *SendVerificationMessageCommand) Execute(ctx context.Context, msg SendVerificationMessageMessage) error {
	if c == nil || c.client == nil {
		return commandDependencyError("command: gateway client is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	out, err := c.client.SendVerificationMessage(ctx, msg.PhoneNumber, msg.Parameters)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RevokeVerificationMessageCommand struct {
	client MutatingClient
}

func NewRevokeVerificationMessageCommand(client MutatingClient) *RevokeVerificationMessageCommand {
	return &RevokeVerificationMessageCommand{client: client}
}

func (c *RevokeVerificationMessageCommand) Execute(ctx context.Context, msg RevokeVerificationMessageMessage) error {
	if c == nil || c.client == nil {
		return commandDependencyError("command: gateway client is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	accepted, err := c.client.RevokeVerificationMessage(ctx, msg.RequestID)
	if err != nil {
		return err
	}
	storeResult(ctx, RevokeResult{RequestID: msg.RequestID, Accepted: accepted})
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
