// Package validation validates configuration structs using
// go-playground/validator struct tags and reports failures as
// *errors.AppError with code INVALID_CONFIG.
//
//	type LoopConfig struct {
//	    Name string `mapstructure:"name" validate:"required"`
//	}
//	if err := validation.Struct(cfg); err != nil { ... }
package validation
