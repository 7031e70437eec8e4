package planselector

import "errors"

var (
	ErrUnknownPlan      = errors.New("plan is not offered for this product")
	ErrInvalidFrequency = errors.New("frequency is not offered by the selected plan")
	ErrNoSelection      = errors.New("no plan selected")
)
