// Package xconfig layers a driver's configuration struct from, in
// ascending precedence: a `default` struct tag, an optional YAML file, and
// TOPK_-prefixed environment variables. A command-line flag parser is
// expected to sit on top of the result and win last, by seeding each flag's
// own default from the already-layered struct.
package xconfig

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
)

var envMacroRegex = regexp.MustCompile(`\$\{env:([^}]+)\}`)

// Options collects the sources Load should consult, beyond the struct's own
// `default` tags.
type Options struct {
	files     []string
	envPrefix string
}

type Option func(*Options)

// WithFiles decodes the named YAML files over the config, in order; any
// field a file sets overrides its `default` tag value. A missing file is
// silently skipped; an operator who never wrote one gets struct defaults
// instead of an error.
func WithFiles(filenames ...string) Option {
	return func(o *Options) {
		o.files = append(o.files, filenames...)
	}
}

// WithEnv overrides fields from prefix_FIELD-style environment variables,
// where FIELD is the field's yaml tag (or its snake_case name) upper-cased.
// A field whose variable is unset or empty keeps its current value.
func WithEnv(prefix string) Option {
	return func(o *Options) {
		o.envPrefix = prefix
	}
}

// Load fills config, a pointer to a flat settings struct, from (lowest to
// highest precedence) its `default` tags, any files named by WithFiles, and
// any environment variables named by WithEnv. A string field populated by a
// file or tag may reference ${env:NAME}, expanded against the process
// environment once tags and files are applied, before environment
// variables are read.
func Load(config interface{}, options ...Option) error {
	opts := &Options{}
	for _, option := range options {
		option(opts)
	}

	configElem, err := validateConfigPointer(config)
	if err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	if err := applyDefaultTagsRecursive(configElem); err != nil {
		return fmt.Errorf("applying default tags: %w", err)
	}

	if len(opts.files) > 0 {
		if err := loadFromFiles(config, opts.files); err != nil {
			return fmt.Errorf("loading from files: %w", err)
		}
	}
	expandMacrosInValue(configElem)

	if opts.envPrefix != "" {
		if err := loadFromEnv(config, opts.envPrefix); err != nil {
			return fmt.Errorf("loading from environment: %w", err)
		}
	}

	return nil
}

func expandMacros(value string) string {
	return envMacroRegex.ReplaceAllStringFunc(value, func(match string) string {
		name := envMacroRegex.FindStringSubmatch(match)[1]
		if v := os.Getenv(name); v != "" {
			return v
		}
		return match
	})
}

// expandMacrosInValue rewrites every string field of a (possibly nested)
// struct in place. The driver's config has no slices or maps worth
// expanding into, so this only recurses into structs.
func expandMacrosInValue(v reflect.Value) {
	if !v.CanSet() {
		return
	}

	switch v.Kind() {
	case reflect.String:
		if v.String() != "" {
			v.SetString(expandMacros(v.String()))
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if field := v.Field(i); field.CanSet() {
				expandMacrosInValue(field)
			}
		}
	}
}
