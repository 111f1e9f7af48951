package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/oszuidwest/zwfm-screengrab/internal/capture"
	"github.com/oszuidwest/zwfm-screengrab/internal/types"
)

// validate is the shared validator instance for configuration validation.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Use TOML key names in error messages instead of struct field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Enum fields accept exactly what the command-line parsers accept.
	mustRegisterToken("resulttype", capture.ParseResultType)
	mustRegisterToken("accel", capture.ParseHardwareAccel)
	mustRegisterToken("audiobackend", capture.ParseAudioBackend)
	mustRegisterToken("channels", capture.ParseChannels)
}

func mustRegisterToken[T any](tag string, parse func(string) (T, error)) {
	err := validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		_, err := parse(fl.Field().String())
		return err == nil
	})
	if err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Validate checks all configuration fields and reports every problem at once.
func (c *Config) Validate() error {
	verr := types.NewValidationError()

	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		for _, e := range validationErrors {
			verr.Add(fieldPath(e.Namespace()), formatValidationMessage(e), e.Value())
		}
	}

	return verr.ErrOrNil()
}

// fieldPath drops the root struct name from a validator namespace ("Config.upload.bucket").
func fieldPath(namespace string) string {
	_, path, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return path
}

// formatValidationMessage creates a human-readable message from a validator error.
func formatValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_with":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "url":
		return "must be a valid URL"
	case "contains":
		return fmt.Sprintf("must contain %q", e.Param())
	case "startswith":
		return fmt.Sprintf("must start with %q", e.Param())
	case "resulttype":
		return "must be one of: mp4 jpg png"
	case "accel":
		return "must be one of: none vaapi nvenc"
	case "audiobackend":
		return "must be one of: pulse alsa jack"
	case "channels":
		return "must be one of: mono stereo 1 2"
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}
