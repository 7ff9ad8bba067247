package processor

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// hexRGB matches the only accepted color form: #RRGGBB.
var hexRGB = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// newValidator builds the payload validator with the custom hexrgb rule
// used by zone and preset colors.
func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("hexrgb", func(fl validator.FieldLevel) bool {
		return hexRGB.MatchString(fl.Field().String())
	})
	return v
}

// validatePayload runs struct validation and rewrites the first failure
// into the human-readable message delivered verbatim to the client.
func (p *Processor) validatePayload(payload any) error {
	err := p.validate.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return errors.New(validationMessage(verrs[0]))
	}
	return err
}

func validationMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "hexrgb":
		return "color must be a hex value like #12ABEF"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	default:
		return "invalid " + field
	}
}

// asID validates an envelope identifier the way clients send them: a
// positive integral number, possibly quoted.  Missing, non-integral or
// non-positive values are validation failures with no side effects.
func asID(raw json.RawMessage, field string) (int64, error) {
	s := strings.TrimSpace(string(raw))
	s = strings.Trim(s, `"`)
	if s == "" || s == "null" {
		return 0, fmt.Errorf("invalid %s", field)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f <= 0 {
		return 0, fmt.Errorf("invalid %s", field)
	}
	return int64(f), nil
}

// payloadAs asserts the decoded payload type for an operation kind.  A
// mismatch means the transport decoded a different kind, which cannot
// happen for well-formed envelopes; it is still reported, not panicked.
func payloadAs[T any](op any) (*T, error) {
	v, ok := op.(*T)
	if !ok || v == nil {
		return nil, errors.New("malformed payload")
	}
	return v, nil
}
