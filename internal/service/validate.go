package service

import (
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/settleup/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Non-empty and not only whitespace.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	_ = v.RegisterValidation("splittype", func(fl validator.FieldLevel) bool {
		return models.SplitType(fl.Field().String()).Valid()
	})

	return v
}

// validateRequest checks struct tags on an RPC message and converts failures
// to CodeInvalidArgument.
func validateRequest(msg any) error {
	err := validate.Struct(msg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, len(verrs))
		for i, fe := range verrs {
			fields[i] = fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag())
		}
		return connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("invalid request: %s", strings.Join(fields, ", ")))
	}
	return connect.NewError(connect.CodeInvalidArgument, err)
}
