package query

import "strings"

const (
	TypeCheckSendAbility        = "gateway.query.send_ability.check"
	TypeCheckVerificationStatus = "gateway.query.verification_status.check"
)

type CheckSendAbilityMessage struct {
	PhoneNumber string
}

func (CheckSendAbilityMessage) Type() string { return TypeCheckSendAbility }

func (m CheckSendAbilityMessage) Validate() error {
	if strings.TrimSpace(m.PhoneNumber) == "" {
		return queryValidationError("phone_number", "phone number is required")
	}
	return nil
}

// CheckVerificationStatusMessage carries an optional Code entered by the user.
// Codes that are not purely numeric are not forwarded.
type CheckVerificationStatusMessage struct {
	RequestID string
	Code      string
}

func (CheckVerificationStatusMessage) Type() string { return TypeCheckVerificationStatus }

func (m CheckVerificationStatusMessage) Validate() error {
	if strings.TrimSpace(m.RequestID) == "" {
		return queryValidationError("request_id", "request id is required")
	}
	return nil
}
