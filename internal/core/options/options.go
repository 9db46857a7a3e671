package options

import (
	"fmt"
	"regexp"
	"strconv"
)

// Option describes one recognized create option: a label and description for
// presentation, and a parser that validates and coerces the raw input.
// Parse returns the coerced value, or an error text when the input is
// rejected; validation happens before any gateway call is made.
type Option struct {
	Key         string
	Label       string
	Description string
	Parse       func(raw string) (any, string)
}

// Validate returns the error text for a raw input, or "" if it is accepted.
func (o Option) Validate(raw string) string {
	_, errText := o.Parse(raw)
	return errText
}

// Set is the declarative option table for one entity type.
type Set []Option

// Values is the coerced create payload. Unset options are absent from the
// map entirely, never present as empty strings or nils.
type Values map[string]any

// ByKey finds an option by key.
func (s Set) ByKey(key string) (Option, bool) {
	for _, o := range s {
		if o.Key == key {
			return o, true
		}
	}
	return Option{}, false
}

// Build evaluates the raw inputs against the table. Empty raw values are
// skipped; unknown keys and parse failures abort with an error naming the
// offending option.
func (s Set) Build(raw map[string]string) (Values, error) {
	values := make(Values)
	for key, rawValue := range raw {
		if rawValue == "" {
			continue
		}
		opt, ok := s.ByKey(key)
		if !ok {
			return nil, fmt.Errorf("unknown option '%s'", key)
		}
		value, errText := opt.Parse(rawValue)
		if errText != "" {
			return nil, fmt.Errorf("option '%s': %s", key, errText)
		}
		values[key] = value
	}
	return values, nil
}

// ISO-8601 durations of the PTnHnMnS shape, as the broker accepts them
var isoDurationRegex = regexp.MustCompile(`^(PT([0-9]+H)?([1-5]?[0-9]M)?([1-5]?[0-9]S)?)?$`)

func parseWholeNumber(raw string) (any, string) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return nil, "value must be a whole number"
	}
	return n, ""
}

func parseISODuration(raw string) (any, string) {
	if !isoDurationRegex.MatchString(raw) {
		return nil, "value must be in PTnHnMnS format"
	}
	return raw, ""
}

func parseBool(raw string) (any, string) {
	if raw != "true" && raw != "false" {
		return nil, "value needs to be either true or false"
	}
	return raw == "true", ""
}

func parseText(raw string) (any, string) {
	return raw, ""
}
