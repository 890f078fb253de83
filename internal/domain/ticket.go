package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for abnormal-event tickets.
type TicketStatus string

const (
	TicketStatusPendingConfirm  TicketStatus = "PENDING_CONFIRM"
	TicketStatusPendingAnalysis TicketStatus = "PENDING_ANALYSIS"
	TicketStatusPendingVerify   TicketStatus = "PENDING_VERIFY"
	TicketStatusClosed          TicketStatus = "CLOSED"
)

// TicketStatuses lists every status in lifecycle order.
var TicketStatuses = []TicketStatus{
	TicketStatusPendingConfirm,
	TicketStatusPendingAnalysis,
	TicketStatusPendingVerify,
	TicketStatusClosed,
}

// Rank returns the position of s in the lifecycle. It panics on a status
// outside the enum, which can only come from a programming error.
func (s TicketStatus) Rank() int {
	for i, candidate := range TicketStatuses {
		if candidate == s {
			return i
		}
	}
	panic(fmt.Sprintf("domain: unknown ticket status %q", string(s)))
}

// Terminal reports whether no further transitions exist from s.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusClosed
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityMedium TicketPriority = "中"
	TicketPriorityHigh   TicketPriority = "高"
	TicketPriorityUrgent TicketPriority = "紧急"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// Ticket types raised from the shop floor.
const (
	TicketTypeEquipment = "设备异常"
	TicketTypeProcess   = "工艺异常"
	TicketTypeQuality   = "质量异常"
)

// Ticket is an abnormal-event record moving through the resolution workflow.
// Stored tickets are never mutated in place; every transition stores a new
// value.
type Ticket struct {
	ID           string
	Type         string
	Description  string
	Priority     TicketPriority
	Status       TicketStatus
	Initiator    string
	Containment  *string
	RootCause    *string
	Solution     *string
	VerifyResult *bool
	VerifyNote   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ClosedAt     *time.Time
}

// Clone returns a deep copy so callers can build the next state without
// touching the stored value.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	out := *t
	out.Containment = cloneString(t.Containment)
	out.RootCause = cloneString(t.RootCause)
	out.Solution = cloneString(t.Solution)
	out.VerifyNote = cloneString(t.VerifyNote)
	if t.VerifyResult != nil {
		v := *t.VerifyResult
		out.VerifyResult = &v
	}
	if t.ClosedAt != nil {
		v := *t.ClosedAt
		out.ClosedAt = &v
	}
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// stageActors names the roles allowed to act on a ticket in each non-terminal
// status.
var stageActors = map[TicketStatus][]Role{
	TicketStatusPendingConfirm:  {RoleManager},
	TicketStatusPendingAnalysis: {RoleProcess, RoleEquipment},
	TicketStatusPendingVerify:   {RoleQuality},
	TicketStatusClosed:          nil,
}

// StageActors returns the roles that may advance a ticket out of status.
// Terminal statuses have none.
func StageActors(status TicketStatus) []Role {
	actors, ok := stageActors[status]
	if !ok {
		panic(fmt.Sprintf("domain: unknown ticket status %q", string(status)))
	}
	return append([]Role(nil), actors...)
}

// CanAct reports whether role may advance a ticket out of status.
func CanAct(status TicketStatus, role Role) bool {
	for _, actor := range StageActors(status) {
		if actor == role {
			return true
		}
	}
	return false
}
