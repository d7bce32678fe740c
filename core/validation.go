package core

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	MinCodeLength       = 4
	MaxCodeLength       = 8
	MaxCallbackURLBytes = 256
	MaxPayloadBytes     = 128
	MinTTLSeconds       = 30
	MaxTTLSeconds       = 3600
)

var httpsURLPattern = regexp.MustCompile(`^https://`)

func (p SendVerificationMessageParameters) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Code,
			validation.Length(MinCodeLength, MaxCodeLength),
			is.Digit,
		),
		validation.Field(&p.CodeLength,
			validation.When(p.Code == "",
				validation.Min(MinCodeLength),
				validation.Max(MaxCodeLength),
			),
		),
		validation.Field(&p.CallbackURL,
			validation.By(maxBytes(MaxCallbackURLBytes)),
			is.URL,
			validation.Match(httpsURLPattern).Error("must use https"),
		),
		validation.Field(&p.Payload,
			validation.By(maxBytes(MaxPayloadBytes)),
		),
		validation.Field(&p.TTL,
			validation.Min(MinTTLSeconds),
			validation.Max(MaxTTLSeconds),
		),
	)
}

// IsNumericCode reports whether code is a non-empty string of ASCII digits.
func IsNumericCode(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	return is.Digit.Validate(code) == nil
}

func validateRequired(field string, value string) error {
	if err := validation.Validate(strings.TrimSpace(value), validation.Required); err != nil {
		return NewBadInputError(
			fmt.Sprintf("core: %s %v", field, err),
			map[string]any{"field": field},
		)
	}
	return nil
}

func maxBytes(limit int) validation.RuleFunc {
	return func(value any) error {
		text, _ := value.(string)
		if len(text) > limit {
			return validation.NewError("validation_max_bytes", fmt.Sprintf("must be at most %d bytes", limit))
		}
		return nil
	}
}
