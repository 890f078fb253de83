package service

import (
	"context"

	"github.com/spec-kit/mes-portal/internal/domain"
	"github.com/spec-kit/mes-portal/internal/repository"
)

// DashboardMetric is one metric tile.
type DashboardMetric struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

// DashboardShortcut is a quick-jump link.
type DashboardShortcut struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// DashboardConfig is the read-side presentation config for a role.
// TodoScope is the role the todo panel filters by; empty means everything.
type DashboardConfig struct {
	Role      domain.Role         `json:"role"`
	Metrics   []DashboardMetric   `json:"metrics"`
	Shortcuts []DashboardShortcut `json:"shortcuts"`
	AIHint    string              `json:"ai_hint"`
	TodoScope domain.Role         `json:"todo_scope"`
}

type metricDef struct {
	key    string
	label  string
	unit   string
	counts func(domain.TodoItem) bool
}

type roleProfile struct {
	metrics   []metricDef
	shortcuts []DashboardShortcut
	aiHint    string
	todoScope domain.Role
}

func ticketIn(statuses ...domain.TicketStatus) func(domain.TodoItem) bool {
	return func(item domain.TodoItem) bool {
		ticket, ok := item.Ticket()
		if !ok {
			return false
		}
		for _, s := range statuses {
			if ticket.Status == s {
				return true
			}
		}
		return false
	}
}

func openTicketsOfType(ticketType string) func(domain.TodoItem) bool {
	return func(item domain.TodoItem) bool {
		ticket, ok := item.Ticket()
		return ok && ticket.Type == ticketType && !ticket.Status.Terminal()
	}
}

func urgentOpenTickets(item domain.TodoItem) bool {
	ticket, ok := item.Ticket()
	return ok && ticket.Priority == domain.TicketPriorityUrgent && !ticket.Status.Terminal()
}

func pendingTodos(item domain.TodoItem) bool {
	return item.Status == domain.TodoStatusPending
}

var (
	metricOpenTickets = metricDef{"open_tickets", "未关闭异常", "单",
		ticketIn(domain.TicketStatusPendingConfirm, domain.TicketStatusPendingAnalysis, domain.TicketStatusPendingVerify)}
	metricClosedTickets   = metricDef{"closed_tickets", "已关闭异常", "单", ticketIn(domain.TicketStatusClosed)}
	metricPendingConfirm  = metricDef{"pending_confirm", "待确认", "单", ticketIn(domain.TicketStatusPendingConfirm)}
	metricPendingAnalysis = metricDef{"pending_analysis", "待分析", "单", ticketIn(domain.TicketStatusPendingAnalysis)}
	metricPendingVerify   = metricDef{"pending_verify", "待验证", "单", ticketIn(domain.TicketStatusPendingVerify)}
	metricUrgentOpen      = metricDef{"urgent_open", "紧急未关闭", "单", urgentOpenTickets}
	metricPendingTodos    = metricDef{"pending_todos", "待办事项", "项", pendingTodos}
	metricEquipmentOpen   = metricDef{"equipment_open", "设备异常未关闭", "单", openTicketsOfType(domain.TicketTypeEquipment)}
	metricProcessOpen     = metricDef{"process_open", "工艺异常未关闭", "单", openTicketsOfType(domain.TicketTypeProcess)}
	shortcutAbnormal      = DashboardShortcut{Label: "异常处理", Path: "/quality/abnormal"}
	shortcutTasks         = DashboardShortcut{Label: "任务中心", Path: "/tasks"}
	shortcutStandards     = DashboardShortcut{Label: "标准导入", Path: "/quality/standards"}
	shortcutEntry         = DashboardShortcut{Label: "生产报工", Path: "/production/entry"}
	shortcutMaintenance   = DashboardShortcut{Label: "设备保养", Path: "/equipment/maintenance"}
)

var roleProfiles = map[domain.Role]roleProfile{
	domain.RoleAdmin: {
		metrics:   []metricDef{metricOpenTickets, metricClosedTickets, metricPendingTodos},
		shortcuts: []DashboardShortcut{shortcutStandards, shortcutTasks, shortcutAbnormal},
		aiHint:    "可以问我：本月异常关闭率是多少？",
		todoScope: "",
	},
	domain.RoleManager: {
		metrics:   []metricDef{metricPendingConfirm, metricUrgentOpen, metricOpenTickets},
		shortcuts: []DashboardShortcut{shortcutAbnormal, shortcutTasks},
		aiHint:    "有待确认的异常，请尽快下达围堵措施。",
		todoScope: domain.RoleManager,
	},
	domain.RoleOperator: {
		metrics:   []metricDef{metricPendingConfirm, metricOpenTickets},
		shortcuts: []DashboardShortcut{shortcutAbnormal, shortcutEntry},
		aiHint:    "发现异常？描述现象即可帮你生成异常单。",
		todoScope: domain.RoleOperator,
	},
	domain.RoleQuality: {
		metrics:   []metricDef{metricPendingVerify, metricClosedTickets},
		shortcuts: []DashboardShortcut{shortcutAbnormal, shortcutTasks},
		aiHint:    "待验证的异常需要确认整改效果后关闭。",
		todoScope: domain.RoleQuality,
	},
	domain.RoleProcess: {
		metrics:   []metricDef{metricPendingAnalysis, metricProcessOpen},
		shortcuts: []DashboardShortcut{shortcutAbnormal, shortcutStandards},
		aiHint:    "可以让我检索相似异常的根因分析。",
		todoScope: domain.RoleProcess,
	},
	domain.RoleEquipment: {
		metrics:   []metricDef{metricPendingAnalysis, metricEquipmentOpen},
		shortcuts: []DashboardShortcut{shortcutAbnormal, shortcutMaintenance},
		aiHint:    "设备异常待分析，可查看该设备的历史保养记录。",
		todoScope: domain.RoleEquipment,
	},
}

// DashboardService resolves a role to its dashboard configuration.
type DashboardService struct {
	todos repository.TodoRepository
}

// NewDashboardService constructs the service.
func NewDashboardService(todos repository.TodoRepository) *DashboardService {
	return &DashboardService{todos: todos}
}

// Resolve builds the config for role. Roles without a dedicated profile get
// the ADM profile.
func (s *DashboardService) Resolve(ctx context.Context, role domain.Role) (DashboardConfig, error) {
	profileRole := role
	profile, ok := roleProfiles[role]
	if !ok {
		profileRole = domain.RoleAdmin
		profile = roleProfiles[domain.RoleAdmin]
	}

	cfg := DashboardConfig{
		Role:      profileRole,
		Metrics:   make([]DashboardMetric, 0, len(profile.metrics)),
		Shortcuts: append([]DashboardShortcut{}, profile.shortcuts...),
		AIHint:    profile.aiHint,
		TodoScope: profile.todoScope,
	}
	for _, def := range profile.metrics {
		value, err := s.todos.Count(ctx, def.counts)
		if err != nil {
			return DashboardConfig{}, err
		}
		cfg.Metrics = append(cfg.Metrics, DashboardMetric{Key: def.key, Label: def.label, Value: value, Unit: def.unit})
	}
	return cfg, nil
}
