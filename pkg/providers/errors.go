package providers

import "github.com/yumina0616/PromptLab-sub000/pkg/errcode"

// Errors returned by provider calls.
var (
	ErrUpstream        = errcode.New("UPSTREAM_ERROR", "upstream provider call failed")
	ErrUnknownProvider = errcode.New("UNKNOWN_PROVIDER", "provider is not supported")
	ErrNotConfigured   = errcode.New("UPSTREAM_ERROR", "provider credentials are not configured")
)
