package company

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation error")

// The dashboard accepts local@domain.tld without whitespace; validator's email rule is stricter
// on other points, so both apply.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

// Exponents outside this window are rejected before any rescaling.
const (
	maxSupplyExponent = 78
	minSupplyExponent = -96
)

// maxSupplyBaseUnits is the largest value a uint256 supply argument can carry.
var maxSupplyBaseUnits = decimal.NewFromBigInt(math.MaxBig256, 0)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every field of a Form that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Reason)
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) add(field, reason string) {
	for _, f := range e.Fields {
		if f.Field == field {
			return
		}
	}
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// IsValidEmail reports whether email passes both the format and RFC checks.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return false
	}
	return validate.Var(email, "email") == nil
}

// Validate checks the form and builds the RegistrationRequest owned by requester.
//
// Text fields are trimmed before the checks. esop_supply must be a non-negative decimal
// with no more precision than TokenDecimals that still fits a uint256 once scaled.
func Validate(form Form, requester common.Address) (RegistrationRequest, error) {
	form = Form{
		CompanyName: strings.TrimSpace(form.CompanyName),
		Email:       strings.TrimSpace(form.Email),
		ESOPSupply:  strings.TrimSpace(form.ESOPSupply),
		TokenName:   strings.TrimSpace(form.TokenName),
		TokenSymbol: strings.TrimSpace(form.TokenSymbol),
	}

	verr := &ValidationError{}

	if err := validate.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return RegistrationRequest{}, fmt.Errorf("validate form: %w", err)
		}
		for _, fe := range fieldErrs {
			verr.add(fe.Field(), reasonFor(fe.Tag()))
		}
	}

	if form.Email != "" && !emailPattern.MatchString(form.Email) {
		verr.add("email", reasonFor("email"))
	}

	var supply decimal.Decimal
	if form.ESOPSupply != "" {
		d, err := decimal.NewFromString(form.ESOPSupply)
		switch {
		case err != nil:
			verr.add("esop_supply", "must be a decimal number")
		case d.IsNegative():
			verr.add("esop_supply", "must not be negative")
		case d.Exponent() > maxSupplyExponent:
			verr.add("esop_supply", "is too large")
		case d.Exponent() < minSupplyExponent:
			verr.add("esop_supply", fmt.Sprintf("must have at most %d decimal places", TokenDecimals))
		case d.Shift(TokenDecimals).GreaterThan(maxSupplyBaseUnits):
			verr.add("esop_supply", "is too large")
		case !d.Shift(TokenDecimals).Equal(d.Shift(TokenDecimals).Truncate(0)):
			verr.add("esop_supply", fmt.Sprintf("must have at most %d decimal places", TokenDecimals))
		default:
			supply = d
		}
	}

	if requester == (common.Address{}) {
		verr.add("requester", "is required")
	}

	if len(verr.Fields) > 0 {
		return RegistrationRequest{}, verr
	}

	return RegistrationRequest{
		CompanyName: form.CompanyName,
		Email:       form.Email,
		ESOPSupply:  supply,
		TokenName:   form.TokenName,
		TokenSymbol: form.TokenSymbol,
		Requester:   requester,
	}, nil
}

func reasonFor(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "email":
		return "is not a valid email address"
	default:
		return "is invalid"
	}
}
