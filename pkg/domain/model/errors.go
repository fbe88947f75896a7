package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrTagNotFound marks errors for resources that do not exist
	ErrTagNotFound = goerr.NewTag("not_found")
	// ErrTagInvalidInput marks errors caused by bad client input
	ErrTagInvalidInput = goerr.NewTag("invalid_input")
	// ErrTagUnauthorized marks errors caused by missing or bad credentials
	ErrTagUnauthorized = goerr.NewTag("unauthorized")
	// ErrTagRateLimited marks requests rejected by a rate limiter
	ErrTagRateLimited = goerr.NewTag("rate_limited")
)
