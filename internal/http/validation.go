package http

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/library/internal/catalog"
)

// RegisterValidators adds the custom binding rules to gin's validator:
//
//	isbn_format  a well-formed ISBN-10 or ISBN-13 (see catalog.ValidISBN)
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("isbn_format", func(fl validator.FieldLevel) bool {
		return catalog.ValidISBN(fl.Field().String())
	})
}
