package command

import (
	"strings"

	"github.com/goliatone/go-telegram-gateway/core"
)

const (
	TypeSendVerificationMessage   = "gateway.command.verification_message.send"
	TypeRevokeVerificationMessage = "gateway.command.verification_message.revoke"
)

type SendVerificationMessageMessage struct {
	PhoneNumber string
	Parameters  core.SendVerificationMessageParameters
}

func (SendVerificationMessageMessage) Type() string { return TypeSendVerificationMessage }

func (m SendVerificationMessageMessage) Validate() error {
	if strings.TrimSpace(m.PhoneNumber) == "" {
		return commandValidationError("phone_number", "phone number is required")
	}
	return commandWrapValidation(m.Parameters.Validate(), "command: invalid send parameters")
}

type RevokeVerificationMessageMessage struct {
	RequestID string
}

func (RevokeVerificationMessageMessage) Type() string { return TypeRevokeVerificationMessage }

func (m RevokeVerificationMessageMessage) Validate() error {
	if strings.TrimSpace(m.RequestID) == "" {
		return commandValidationError("request_id", "request id is required")
	}
	return nil
}
