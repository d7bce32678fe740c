package core

// DeliveryState is the delivery lifecycle of a verification message. The set
// of values is open: unknown states received from the API are kept verbatim.
type DeliveryState string

const (
	DeliveryStateSent      DeliveryState = "sent"
	DeliveryStateDelivered DeliveryState = "delivered"
	DeliveryStateRead      DeliveryState = "read"
	DeliveryStateExpired   DeliveryState = "expired"
	DeliveryStateRevoked   DeliveryState = "revoked"
)

func (s DeliveryState) Known() bool {
	switch s {
	case DeliveryStateSent,
		DeliveryStateDelivered,
		DeliveryStateRead,
		DeliveryStateExpired,
		DeliveryStateRevoked:
		return true
	default:
		return false
	}
}

// VerificationState is the code-check lifecycle of a verification request.
type VerificationState string

const (
	VerificationStateCodeValid               VerificationState = "code_valid"
	VerificationStateCodeInvalid             VerificationState = "code_invalid"
	VerificationStateCodeMaxAttemptsExceeded VerificationState = "code_max_attempts_exceeded"
	VerificationStateExpired                 VerificationState = "expired"
)

func (s VerificationState) Known() bool {
	switch s {
	case VerificationStateCodeValid,
		VerificationStateCodeInvalid,
		VerificationStateCodeMaxAttemptsExceeded,
		VerificationStateExpired:
		return true
	default:
		return false
	}
}

// RequestStatus is a snapshot of one verification request.
//
// DeliveryStatus is present only when a message was actually sent to the
// user; VerificationStatus only after a code check happened.
type RequestStatus struct {
	RequestID          string              `json:"request_id"`
	PhoneNumber        string              `json:"phone_number"`
	RequestCost        float64             `json:"request_cost"`
	IsRefunded         *bool               `json:"is_refunded,omitempty"`
	RemainingBalance   *float64            `json:"remaining_balance,omitempty"`
	DeliveryStatus     *DeliveryStatus     `json:"delivery_status,omitempty"`
	VerificationStatus *VerificationStatus `json:"verification_status,omitempty"`
	Payload            *string             `json:"payload,omitempty"`
}

type DeliveryStatus struct {
	Status    DeliveryState `json:"status"`
	UpdatedAt int64         `json:"updated_at"`
}

type VerificationStatus struct {
	Status      VerificationState `json:"status"`
	UpdatedAt   int64             `json:"updated_at"`
	CodeEntered *string           `json:"code_entered,omitempty"`
}

// SendVerificationMessageParameters holds the optional fields of a
// sendVerificationMessage call. Zero values are omitted from the request.
type SendVerificationMessageParameters struct {
	// RequestID reuses the request of a previous checkSendAbility call, so the
	// send is not charged a second time.
	RequestID      string `json:"request_id,omitempty"`
	SenderUsername string `json:"sender_username,omitempty"`
	// Code is ignored by the API when empty; CodeLength is ignored when Code is set.
	Code        string `json:"code,omitempty"`
	CodeLength  int    `json:"code_length,omitempty"`
	CallbackURL string `json:"callback_url,omitempty"`
	Payload     string `json:"payload,omitempty"`
	TTL         int    `json:"ttl,omitempty"`
}

func (s RequestStatus) Clone() RequestStatus {
	out := s
	if s.IsRefunded != nil {
		value := *s.IsRefunded
		out.IsRefunded = &value
	}
	if s.RemainingBalance != nil {
		value := *s.RemainingBalance
		out.RemainingBalance = &value
	}
	if s.DeliveryStatus != nil {
		value := s.DeliveryStatus.Clone()
		out.DeliveryStatus = &value
	}
	if s.VerificationStatus != nil {
		value := s.VerificationStatus.Clone()
		out.VerificationStatus = &value
	}
	if s.Payload != nil {
		value := *s.Payload
		out.Payload = &value
	}
	return out
}

func (s DeliveryStatus) Clone() DeliveryStatus {
	return s
}

func (s VerificationStatus) Clone() VerificationStatus {
	out := s
	if s.CodeEntered != nil {
		value := *s.CodeEntered
		out.CodeEntered = &value
	}
	return out
}

func (s RequestStatus) String() string {
	return encodeCompact(s)
}

func (s DeliveryStatus) String() string {
	return encodeCompact(s)
}

func (s VerificationStatus) String() string {
	return encodeCompact(s)
}
