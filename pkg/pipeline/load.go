package pipeline

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	errs "github.com/matzehuels/tipscan/pkg/errors"
)

// validate is a singleton validator instance.
var validate = validator.New()

// LoadOptions reads a TOML study file.
func LoadOptions(path string) (Options, error) {
	var o Options
	md, err := toml.DecodeFile(path, &o)
	if err != nil {
		return Options{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := checkUndecoded(md); err != nil {
		return Options{}, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}

// ParseOptions decodes a TOML study from r.
func ParseOptions(r io.Reader) (Options, error) {
	var o Options
	md, err := toml.NewDecoder(r).Decode(&o)
	if err != nil {
		return Options{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "decode study")
	}
	if err := checkUndecoded(md); err != nil {
		return Options{}, err
	}
	return o, nil
}

func checkUndecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return errs.New(errs.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(names, ", "))
}

func validateStruct(o *Options) error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "validate options")
	}
	e := ve[0]
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return errs.New(errs.ErrCodeInvalidConfig, "%s: field is required", field)
	case "min", "gte":
		return errs.New(errs.ErrCodeInvalidConfig, "%s: must be at least %s", field, e.Param())
	case "max", "lte":
		return errs.New(errs.ErrCodeInvalidConfig, "%s: must not exceed %s", field, e.Param())
	case "oneof":
		return errs.New(errs.ErrCodeInvalidConfig, "%s: must be one of: %s", field, e.Param())
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "%s: validation failed (%s)", field, e.Tag())
	}
}
