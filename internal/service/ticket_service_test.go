package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/mes-portal/internal/domain"
	"github.com/spec-kit/mes-portal/internal/events"
	"github.com/spec-kit/mes-portal/internal/observability"
	"github.com/spec-kit/mes-portal/internal/repository"
	apperrors "github.com/spec-kit/mes-portal/pkg/util"
)

var (
	operator  = Actor{UserID: "op01", Role: domain.RoleOperator}
	manager   = Actor{UserID: "mgr01", Role: domain.RoleManager}
	process   = Actor{UserID: "pe01", Role: domain.RoleProcess}
	equipment = Actor{UserID: "eq01", Role: domain.RoleEquipment}
	quality   = Actor{UserID: "qc01", Role: domain.RoleQuality}
)

type ticketFixture struct {
	svc     *TicketService
	store   *repository.MemoryStore
	todos   repository.TodoRepository
	history repository.TicketHistoryRepository
	metrics *observability.Metrics
	events  []events.Event
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	f := &ticketFixture{
		store:   repository.NewMemoryStore(),
		history: repository.NewMemoryTicketHistoryRepository(),
		metrics: observability.NewMetrics(),
	}
	f.todos = f.store.TodoView()
	dispatcher := events.NewInMemoryDispatcher()
	record := func(ctx context.Context, e events.Event) error {
		f.events = append(f.events, e)
		return nil
	}
	dispatcher.Subscribe(events.EventTicketCreated, record)
	dispatcher.Subscribe(events.EventTicketStatusChanged, record)

	clock := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	f.svc = NewTicketService(TicketDependencies{
		TicketRepo:  f.store,
		HistoryRepo: f.history,
		Dispatcher:  dispatcher,
		Metrics:     f.metrics,
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	})
	return f
}

func (f *ticketFixture) create(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket, err := f.svc.CreateTicket(context.Background(), operator, TicketCreateInput{
		Type:        domain.TicketTypeEquipment,
		Description: "泵体漏油",
		Priority:    domain.TicketPriorityHigh,
	})
	require.NoError(t, err)
	return ticket
}

func confirmed() *bool {
	v := true
	return &v
}

func TestCreateTicket(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	ticket := f.create(t)

	assert.True(t, strings.HasPrefix(ticket.ID, "HC/R-26-"))
	assert.Equal(t, domain.TicketStatusPendingConfirm, ticket.Status)
	assert.Equal(t, "op01", ticket.Initiator)
	assert.Nil(t, ticket.Containment)
	assert.Nil(t, ticket.RootCause)
	assert.Nil(t, ticket.Solution)
	assert.Nil(t, ticket.VerifyResult)

	items, err := f.todos.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.TicketTodoID(ticket.ID), items[0].ID)
	assert.Equal(t, domain.TodoTagAbnormal, items[0].Tag)
	assert.Equal(t, domain.TodoStatusPending, items[0].Status)
	assert.Equal(t, domain.ComponentKeyTicketDetail, items[0].ComponentKey)

	require.Len(t, f.events, 1)
	assert.Equal(t, events.EventTicketCreated, f.events[0].Type)
}

func TestCreateTicketValidation(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		actor Actor
		input TicketCreateInput
	}{
		{"missing type", operator, TicketCreateInput{Description: "x", Priority: domain.TicketPriorityHigh}},
		{"blank description", operator, TicketCreateInput{Type: "质量异常", Description: "   ", Priority: domain.TicketPriorityHigh}},
		{"missing priority", operator, TicketCreateInput{Type: "质量异常", Description: "x"}},
		{"unknown priority", operator, TicketCreateInput{Type: "质量异常", Description: "x", Priority: "低"}},
		{"no initiator", Actor{Role: domain.RoleOperator}, TicketCreateInput{Type: "质量异常", Description: "x", Priority: domain.TicketPriorityMedium}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateTicket(ctx, tt.actor, tt.input)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
		})
	}

	count, err := f.todos.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAdvanceContainment(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.create(t)

	next, err := f.svc.Advance(context.Background(), manager, ticket.ID, AdvancePayload{Containment: "设备已停机隔离"})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusPendingAnalysis, next.Status)
	require.NotNil(t, next.Containment)
	assert.Equal(t, "设备已停机隔离", *next.Containment)
	assert.Nil(t, next.RootCause)
	assert.Nil(t, next.Solution)
}

func TestAdvanceWrongRoleIsNoOp(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	ticket := f.create(t)

	before, err := f.todos.Get(ctx, domain.TicketTodoID(ticket.ID))
	require.NoError(t, err)

	_, err = f.svc.Advance(ctx, quality, ticket.ID, AdvancePayload{Containment: "x", VerifyResult: confirmed()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, "INVALID_TRANSITION", apperrors.ToDomainError(err).Code)

	stored, err := f.svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket, stored)

	after, err := f.todos.Get(ctx, domain.TicketTodoID(ticket.ID))
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, int64(1), f.metrics.Snapshot().Rejected["PENDING_CONFIRM|QC"])
}

func TestAdvanceRoleMatrix(t *testing.T) {
	roles := []domain.Role{
		domain.RoleAdmin, domain.RoleManager, domain.RoleOperator, domain.RoleQuality,
		domain.RoleProcess, domain.RoleEquipment, domain.RoleSupplierQE,
		domain.RoleWarehouse, domain.RoleService, domain.RoleAll,
	}
	allowed := map[domain.TicketStatus][]domain.Role{
		domain.TicketStatusPendingConfirm:  {domain.RoleManager},
		domain.TicketStatusPendingAnalysis: {domain.RoleProcess, domain.RoleEquipment},
		domain.TicketStatusPendingVerify:   {domain.RoleQuality},
	}
	payload := AdvancePayload{Containment: "隔离", RootCause: "密封圈老化", Solution: "更换密封圈", VerifyResult: confirmed()}

	for status, actors := range allowed {
		for _, role := range roles {
			t.Run(string(status)+"/"+string(role), func(t *testing.T) {
				f := newTicketFixture(t)
				ctx := context.Background()
				ticket := f.create(t)
				driveTo(t, f, ticket.ID, status)

				_, err := f.svc.Advance(ctx, Actor{UserID: "u", Role: role}, ticket.ID, payload)
				want := false
				for _, a := range actors {
					want = want || a == role
				}
				if want {
					assert.NoError(t, err)
				} else {
					assert.ErrorIs(t, err, ErrInvalidTransition)
					stored, getErr := f.svc.GetTicket(ctx, ticket.ID)
					require.NoError(t, getErr)
					assert.Equal(t, status, stored.Status)
				}
			})
		}
	}
}

// driveTo advances a fresh ticket with the correct actors until it reaches target.
func driveTo(t *testing.T, f *ticketFixture, ticketID string, target domain.TicketStatus) {
	t.Helper()
	ctx := context.Background()
	steps := []struct {
		actor   Actor
		payload AdvancePayload
	}{
		{manager, AdvancePayload{Containment: "设备已停机隔离"}},
		{equipment, AdvancePayload{RootCause: "密封圈老化", Solution: "更换密封圈"}},
		{quality, AdvancePayload{VerifyResult: confirmed(), VerifyNote: "试运行正常"}},
	}
	for {
		current, err := f.svc.GetTicket(ctx, ticketID)
		require.NoError(t, err)
		if current.Status == target {
			return
		}
		require.False(t, current.Status.Terminal(), "ticket closed before reaching %s", target)
		step := steps[current.Status.Rank()]
		_, err = f.svc.Advance(ctx, step.actor, ticketID, step.payload)
		require.NoError(t, err)
	}
}

func TestFullLifecycle(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	ticket := f.create(t)

	statuses := []domain.TicketStatus{ticket.Status}
	steps := []struct {
		actor   Actor
		payload AdvancePayload
	}{
		{manager, AdvancePayload{Containment: "设备已停机隔离"}},
		{process, AdvancePayload{RootCause: "密封圈老化", Solution: "更换密封圈"}},
		{quality, AdvancePayload{VerifyResult: confirmed()}},
	}
	for _, step := range steps {
		next, err := f.svc.Advance(ctx, step.actor, ticket.ID, step.payload)
		require.NoError(t, err)
		statuses = append(statuses, next.Status)

		items, err := f.todos.List(ctx, "")
		require.NoError(t, err)
		require.Len(t, items, 1)
		mirrored, ok := items[0].Ticket()
		require.True(t, ok)
		assert.Equal(t, next, mirrored)
	}

	assert.Equal(t, domain.TicketStatuses, statuses)
	for i := 1; i < len(statuses); i++ {
		assert.Equal(t, statuses[i-1].Rank()+1, statuses[i].Rank())
	}

	final, err := f.svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, final.Status)
	assert.NotNil(t, final.ClosedAt)
	assert.Equal(t, "设备已停机隔离", *final.Containment)
	assert.Equal(t, "密封圈老化", *final.RootCause)

	item, err := f.todos.Get(ctx, domain.TicketTodoID(ticket.ID))
	require.NoError(t, err)
	assert.Equal(t, domain.TodoStatusDone, item.Status)

	history, err := f.svc.ListHistory(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, history, 4)
	assert.Len(t, f.events, 4)
	assert.Equal(t, int64(1), f.metrics.Snapshot().Transitions["PENDING_VERIFY->CLOSED"])
}

func TestAdvanceClosedTicketIsTerminal(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	ticket := f.create(t)
	driveTo(t, f, ticket.ID, domain.TicketStatusClosed)

	for _, actor := range []Actor{operator, manager, process, quality, {UserID: "adm", Role: domain.RoleAdmin}} {
		_, err := f.svc.Advance(ctx, actor, ticket.ID, AdvancePayload{Containment: "again", VerifyResult: confirmed()})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
}

func TestAdvanceUnknownTicket(t *testing.T) {
	f := newTicketFixture(t)
	_, err := f.svc.Advance(context.Background(), manager, "HC/R-26-NOPE", AdvancePayload{Containment: "x"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAdvanceMissingStageInput(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	ticket := f.create(t)

	_, err := f.svc.Advance(ctx, manager, ticket.ID, AdvancePayload{RootCause: "not my stage"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	driveTo(t, f, ticket.ID, domain.TicketStatusPendingAnalysis)
	_, err = f.svc.Advance(ctx, process, ticket.ID, AdvancePayload{RootCause: "only cause"})
	require.Error(t, err)

	driveTo(t, f, ticket.ID, domain.TicketStatusPendingVerify)
	rejected := false
	_, err = f.svc.Advance(ctx, quality, ticket.ID, AdvancePayload{VerifyResult: &rejected})
	require.Error(t, err)
	_, err = f.svc.Advance(ctx, quality, ticket.ID, AdvancePayload{})
	require.Error(t, err)

	stored, err := f.svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusPendingVerify, stored.Status)
	assert.Nil(t, stored.VerifyResult)
}

func TestStageWritesOnlyItsFields(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	ticket := f.create(t)

	next, err := f.svc.Advance(ctx, manager, ticket.ID, AdvancePayload{
		Containment: "隔离",
		RootCause:   "should be ignored",
		Solution:    "should be ignored",
	})
	require.NoError(t, err)
	assert.Nil(t, next.RootCause)
	assert.Nil(t, next.Solution)

	next, err = f.svc.Advance(ctx, equipment, ticket.ID, AdvancePayload{
		Containment: "overwrite attempt",
		RootCause:   "原因",
		Solution:    "方案",
	})
	require.NoError(t, err)
	assert.Equal(t, "隔离", *next.Containment)
}

type failingHistory struct{}

func (failingHistory) Create(ctx context.Context, h *domain.TicketHistory) error {
	return errors.New("history down")
}

func (failingHistory) ListByTicket(ctx context.Context, id string) ([]domain.TicketHistory, error) {
	return nil, errors.New("history down")
}

func TestHistoryFailureDoesNotUndoTransition(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewTicketService(TicketDependencies{TicketRepo: store, HistoryRepo: failingHistory{}})
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, operator, TicketCreateInput{Type: "质量异常", Description: "尺寸超差", Priority: domain.TicketPriorityUrgent})
	require.NoError(t, err)
	next, err := svc.Advance(ctx, manager, ticket.ID, AdvancePayload{Containment: "隔离批次"})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusPendingAnalysis, next.Status)
}

func TestGetTicketNotFound(t *testing.T) {
	f := newTicketFixture(t)
	_, err := f.svc.GetTicket(context.Background(), "missing")
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestStringPreview(t *testing.T) {
	assert.Equal(t, "泵体漏油", stringPreview(" 泵体漏油 ", 10))
	assert.Equal(t, "一二...", stringPreview("一二三四五六", 5))
	assert.Equal(t, "一二", stringPreview("一二三四五六", 2))
}

func TestConcurrentAdvanceAppliesOnce(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.create(t)

	var (
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := f.svc.Advance(ctx, manager, ticket.ID, AdvancePayload{Containment: "隔离"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrInvalidTransition):
				rejected++
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 7, rejected)

	history, err := f.history.ListByTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
