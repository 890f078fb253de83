package dto

import "github.com/spec-kit/mes-portal/internal/navigation"

// NavigateRequest payload. Either Path or ID identifies the target.
type NavigateRequest struct {
	Path      string            `json:"path"`
	ID        string            `json:"id"`
	Referrer  *navigation.Crumb `json:"referrer"`
	KeepStack bool              `json:"keep_stack"`
}

// HashChangeRequest reports a URL fragment change.
type HashChangeRequest struct {
	Fragment string `json:"fragment"`
}
