package models

import (
	"regexp"

	"github.com/go-playground/validator"
)

type Subscription string

const (
	Free  Subscription = "free"
	Trial Subscription = "trial"
	Pro   Subscription = "pro"
)

func (l *Subscription) Scan(value interface{}) error {
	*l = Subscription(value.(string))
	return nil
}

func (l Subscription) Value() (string, error) {
	return string(l), nil
}

func ValidateSubscription(fl validator.FieldLevel) bool {
	matched, _ := regexp.MatchString("^free|trial|pro$", fl.Field().String())
	return matched
}
