package common

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// GenericEchoValidator plugs go-playground/validator into echo's ctx.Validate.
type GenericEchoValidator struct {
	Validator *validator.Validate
}

func (gv *GenericEchoValidator) Validate(i interface{}) error {
	if gv.Validator == nil {
		gv.Validator = validator.New()
	}
	if err := gv.Validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("received invalid request: %v", err)).SetInternal(err)
	}
	return nil
}

// BindAndValidate binds the request into target and runs the registered validator.
func BindAndValidate(ctx echo.Context, target any) error {
	if err := ctx.Bind(target); err != nil {
		return err
	}
	return ctx.Validate(target)
}
