package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/function"
	deployerrors "github.com/alexisbeaulieu97/lambda-deploy/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	regionPattern = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-\d+$`)
)

// validatorInstance configures and returns the shared validator instance.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("aws_region", func(fl validator.FieldLevel) bool {
			return regionPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("role_arn", func(fl validator.FieldLevel) bool {
			return function.IsRoleArn(fl.Field().String())
		})
		_ = v.RegisterValidation("kms_key_arn", func(fl validator.FieldLevel) bool {
			return function.IsKMSKeyArn(fl.Field().String())
		})
		_ = v.RegisterValidation("code_signing_config_arn", func(fl validator.FieldLevel) bool {
			return function.IsCodeSigningConfigArn(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidateDocument performs schema validation on the document.
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return deployerrors.NewValidationError("document", "document is nil", nil)
	}
	if err := validatorInstance().Struct(doc); err != nil {
		return convertValidationError(err)
	}
	return nil
}

var tagMessages = map[string]string{
	"required":                "is required",
	"semver":                  "must be a version such as 1.0",
	"aws_region":              "must be an AWS region such as us-east-1",
	"role_arn":                "invalid IAM role ARN format",
	"kms_key_arn":             "invalid KMS key ARN format",
	"code_signing_config_arn": "invalid code signing config ARN format",
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		ve := ves[0]
		field := yamlFieldName(ve)
		return &deployerrors.ValidationError{
			Field:   field,
			Message: tagMessage(ve),
			Value:   echoValue(ve),
			Err:     err,
		}
	}

	return deployerrors.NewValidationError("document", err.Error(), err)
}

func tagMessage(fe validator.FieldError) string {
	if msg, ok := tagMessages[fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "min", "max":
		return fmt.Sprintf("must be %s %s", map[string]string{"min": "at least", "max": "at most"}[fe.Tag()], fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	}
	return fmt.Sprintf("failed validation for tag '%s'", fe.Tag())
}

func echoValue(fe validator.FieldError) interface{} {
	if fe.Tag() == "required" {
		return nil
	}
	switch v := fe.Value().(type) {
	case string:
		if v == "" {
			return nil
		}
		return v
	case int:
		return v
	default:
		return nil
	}
}

// yamlFieldName renders the failing field as a dotted path of YAML keys
// without the root type, e.g. function.vpc_config.subnet_ids.
func yamlFieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}
