package binder

import (
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// absDirValidator ensures the value is an absolute path to an existing
// directory.
func absDirValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if !filepath.IsAbs(value) {
		return false
	}
	info, err := os.Stat(value)
	return err == nil && info.IsDir()
}
