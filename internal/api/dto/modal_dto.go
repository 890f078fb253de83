package dto

import (
	"encoding/json"

	"github.com/spec-kit/mes-portal/internal/modal"
)

// OpenModalRequest opens a view directly by component key.
type OpenModalRequest struct {
	Key  string          `json:"key"`
	Data json.RawMessage `json:"data"`
}

// ModalResponse describes how the active view is presented. Shell is set
// only for wrapped units; Mounted is false when the key has nothing to
// render.
type ModalResponse struct {
	ID      uint64           `json:"id"`
	Key     string           `json:"key"`
	Mode    modal.RenderMode `json:"mode"`
	Mounted bool             `json:"mounted"`
	Unit    *modal.Unit      `json:"unit,omitempty"`
	Shell   *modal.Shell     `json:"shell,omitempty"`
	TodoID  string           `json:"todo_id,omitempty"`
	Data    any              `json:"data"`
}
