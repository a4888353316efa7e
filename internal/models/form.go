package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrMalformedInput is the root of every decode failure for an intake form.
var ErrMalformedInput = errors.New("malformed subscription form")

// DecodeError describes why a form body could not become a SubscriptionRequest.
type DecodeError struct {
	// Missing lists the required keys that were absent, in struct field order
	// (email before name).
	Missing []string
	// Duplicate is the first required key that appeared more than once.
	Duplicate string
	Err       error
}

func (e *DecodeError) Error() string {
	switch {
	case len(e.Missing) > 0:
		return fmt.Sprintf("%s: missing field(s) %s", ErrMalformedInput, strings.Join(e.Missing, ", "))
	case e.Duplicate != "":
		return fmt.Sprintf("%s: duplicate field %s", ErrMalformedInput, e.Duplicate)
	}
	return fmt.Sprintf("%s: %v", ErrMalformedInput, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedInput}
	}
	return []error{ErrMalformedInput, e.Err}
}

var validate = validator.New()

// DecodeSubscriptionForm parses an application/x-www-form-urlencoded body.
// Only presence of name and email is enforced; blank values and arbitrary
// email shapes are accepted. A repeated name or email is rejected.
func DecodeSubscriptionForm(body []byte) (SubscriptionRequest, error) {
	values, err := parseForm(string(body))
	if err != nil {
		return SubscriptionRequest{}, &DecodeError{Err: err}
	}

	var req SubscriptionRequest
	for _, key := range []string{"email", "name"} {
		if len(values[key]) > 1 {
			return SubscriptionRequest{}, &DecodeError{Duplicate: key}
		}
	}
	if v := values["email"]; len(v) == 1 {
		req.Email = &v[0]
	}
	if v := values["name"]; len(v) == 1 {
		req.Name = &v[0]
	}

	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return SubscriptionRequest{}, &DecodeError{Err: err}
		}
		missing := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			missing = append(missing, strings.ToLower(fe.Field()))
		}
		return SubscriptionRequest{}, &DecodeError{Missing: missing, Err: err}
	}

	return req, nil
}

// parseForm splits on '&' only, so ';' stays part of a value. Empty pairs are
// skipped and a key without '=' has an empty value.
func parseForm(body string) (url.Values, error) {
	values := url.Values{}
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, err
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, err
		}
		values.Add(key, value)
	}
	return values, nil
}
