package card

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	// font_size tokens offered by the card: 16px through 24px.
	fontSizePattern = regexp.MustCompile(`^(1[6-9]|2[0-4])px$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})

		_ = v.RegisterValidation("fontsize", func(fl validator.FieldLevel) bool {
			return fontSizePattern.MatchString(strings.TrimSpace(fl.Field().String()))
		})

		_ = v.RegisterValidation("entityref", func(fl validator.FieldLevel) bool {
			return ValidateEntityRef(fl.Field().String()) == nil
		})

		_ = v.RegisterValidation("stylepreset", func(fl validator.FieldLevel) bool {
			return IsStylePreset(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// Validate performs struct-tag validation on a card configuration.
func Validate(cfg *CardConfig) error {
	if cfg == nil {
		return NewConfigError("", "configuration is nil")
	}
	if err := validatorInstance().Struct(cfg); err != nil {
		return convertValidationError(err)
	}
	return nil
}

// ValidateEntityRef checks an entity reference is usable.
// References are opaque, so only emptiness and embedded whitespace are rejected.
func ValidateEntityRef(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return errors.New("entity cannot be empty")
	}
	if strings.ContainsAny(strings.TrimSpace(ref), " \t\n") {
		return fmt.Errorf("entity %q contains whitespace", ref)
	}
	return nil
}

// ValidateFontSize checks a font size token (empty is allowed).
func ValidateFontSize(fs string) error {
	fs = strings.TrimSpace(fs)
	if fs == "" || fontSizePattern.MatchString(fs) {
		return nil
	}
	return fmt.Errorf("font size must be between 16px and 24px, got %q", fs)
}

// IsStylePreset reports whether name is a known style preset (case-insensitive).
func IsStylePreset(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range StylePresets {
		if p == name {
			return true
		}
	}
	return false
}

func convertValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ConfigError{Message: "validation failed", Err: err}
	}

	fe := verrs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	return &ConfigError{Field: field, Message: describeFieldError(fe), Err: err}
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.Slice {
			return "at least one item is required"
		}
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	case "fontsize":
		return fmt.Sprintf("font size must be between 16px and 24px, got %q", fe.Value())
	case "entityref":
		return fmt.Sprintf("invalid entity reference %q", fe.Value())
	case "stylepreset":
		return fmt.Sprintf("unknown style %q (known: %s)", fe.Value(), strings.Join(StylePresets, ", "))
	case "hexcolor":
		return fmt.Sprintf("accent color must be #RRGGBB, got %q", fe.Value())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
