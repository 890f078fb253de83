package domain

import "time"

// TodoStatus is the display status of a todo item.
type TodoStatus string

const (
	TodoStatusPending TodoStatus = "待办"
	TodoStatusDone    TodoStatus = "已完成"
)

// TodoTagAbnormal marks todo items mirroring abnormal-event tickets.
const TodoTagAbnormal = "异常"

// TodoItem is a task-list projection. Ticket-origin items carry TicketID and
// have RawData and Status filled from the referenced ticket on every read.
type TodoItem struct {
	ID           string
	Title        string
	Tag          string
	ComponentKey string
	TicketID     string
	Roles        []Role
	Status       TodoStatus
	RawData      any
	UpdatedAt    time.Time
}

// TicketTodoID returns the todo id mirroring a ticket.
func TicketTodoID(ticketID string) string {
	return "TASK-" + ticketID
}

// StatusForTicket derives the todo display status from a ticket status.
func StatusForTicket(status TicketStatus) TodoStatus {
	if status.Terminal() {
		return TodoStatusDone
	}
	return TodoStatusPending
}

// HasRole reports whether the item is addressed to role, either directly or
// through RoleAll.
func (t TodoItem) HasRole(role Role) bool {
	for _, r := range t.Roles {
		if r == role || r == RoleAll {
			return true
		}
	}
	return false
}

// Ticket returns the ticket mirrored by the item, if any.
func (t TodoItem) Ticket() (*Ticket, bool) {
	ticket, ok := t.RawData.(*Ticket)
	return ticket, ok && ticket != nil
}

// Component keys attached to todo items.
const (
	ComponentKeyTicketDetail   = "abnormal-ticket"
	ComponentKeyStandardImport = "standard-import"
)
