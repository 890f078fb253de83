package modal

import (
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/mes-portal/internal/domain"
)

// OpenRequest is what the presentation host mounts. Unit is nil when the key
// has nothing renderable; hosts ignore such requests.
type OpenRequest struct {
	ID     uint64
	Key    string
	Mode   RenderMode
	Unit   *Unit
	Data   any
	TodoID string
}

// Host tracks the single active OpenRequest. Opening a new request replaces
// the previous one.
type Host struct {
	mu       sync.Mutex
	registry *Registry
	active   *OpenRequest
	seq      uint64
	logger   *zap.Logger
}

// NewHost creates a host over registry.
func NewHost(registry *Registry, logger *zap.Logger) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Host{registry: registry, logger: logger}
}

// OpenByTodo opens the view for a todo item. Items without a component key
// use the default detail view; the record is the mirrored ticket when there
// is one.
func (h *Host) OpenByTodo(item domain.TodoItem) OpenRequest {
	key := item.ComponentKey
	if key == "" {
		key = DefaultKey
	}
	entry := h.registry.Resolve(key)
	var data any = item
	if item.RawData != nil {
		data = item.RawData
	}
	req := OpenRequest{Key: entry.Key, Mode: entry.Mode, Data: data, TodoID: item.ID}
	if unit, ok := entry.Load(); ok {
		req.Unit = &unit
	}
	return h.activate(req)
}

// OpenByKey opens key directly. Unregistered keys still replace the active
// request but carry no unit.
func (h *Host) OpenByKey(key string, data any) OpenRequest {
	req := OpenRequest{Key: key, Mode: Wrapped, Data: data}
	if entry, ok := h.registry.Lookup(key); ok {
		req.Mode = entry.Mode
		if unit, ok := entry.Load(); ok {
			req.Unit = &unit
		}
	} else {
		h.logger.Debug("open by unregistered key", zap.String("key", key))
	}
	return h.activate(req)
}

// Active returns the current request, if any.
func (h *Host) Active() (OpenRequest, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active == nil {
		return OpenRequest{}, false
	}
	return *h.active, true
}

// Update replaces the data of request id, typically with the ticket returned
// by a transition. It reports false when id is no longer the active request.
func (h *Host) Update(id uint64, data any) (OpenRequest, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active == nil || h.active.ID != id {
		return OpenRequest{}, false
	}
	h.active.Data = data
	return *h.active, true
}

// Close dismisses the active request. It reports whether one was open.
func (h *Host) Close() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	wasOpen := h.active != nil
	h.active = nil
	return wasOpen
}

func (h *Host) activate(req OpenRequest) OpenRequest {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	req.ID = h.seq
	if h.active != nil {
		h.logger.Debug("replacing active modal", zap.Uint64("previous", h.active.ID), zap.Uint64("next", req.ID))
	}
	h.active = &req
	return req
}
