package config

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Validate checks cfg's struct tags with validator/v10, the same
// library the teacher's pkg/config validates against.
func Validate(cfg *Config) error {
	return validate.Struct(cfg)
}
