package domain

import (
	"time"

	"github.com/google/uuid"
)

// DTOs for API responses

type UserDTO struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Role          UserRole   `json:"role"`
	Scope         Scope      `json:"scope"`
	GroupID       *uuid.UUID `json:"groupId,omitempty"`
	GroupName     string     `json:"groupName,omitempty"`
	Avatar        string     `json:"avatar,omitempty"`
	IsActive      bool       `json:"isActive"`
	TargetDeals   int        `json:"targetDeals"`
	TargetCalls   int        `json:"targetCalls"`
	TargetRevenue float64    `json:"targetRevenue"`
	CreatedAt     string     `json:"createdAt"` // ISO 8601
	UpdatedAt     string     `json:"updatedAt"` // ISO 8601
}

type GroupDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	ManagerID   *uuid.UUID `json:"managerId,omitempty"`
	ManagerName string     `json:"managerName,omitempty"`
	Scope       Scope      `json:"scope"`
	MemberCount int        `json:"memberCount"`
	Members     []UserDTO  `json:"members,omitempty"`
	CreatedAt   string     `json:"createdAt"`
	UpdatedAt   string     `json:"updatedAt"`
}

type LeadDTO struct {
	ID                  uuid.UUID     `json:"id"`
	CompanyName         string        `json:"companyName"`
	ContactPerson       string        `json:"contactPerson,omitempty"`
	Email               string        `json:"email,omitempty"`
	Phone               string        `json:"phone,omitempty"`
	Source              LeadSource    `json:"source"`
	Status              LeadStatus    `json:"status"`
	Services            []string      `json:"services,omitempty"`
	Notes               string        `json:"notes,omitempty"`
	NotInterestedReason string        `json:"notInterestedReason,omitempty"`
	OwnerID             uuid.UUID     `json:"ownerId"`
	OwnerName           string        `json:"ownerName,omitempty"`
	Scope               Scope         `json:"scope"`
	ConvertedDealID     *uuid.UUID    `json:"convertedDealId,omitempty"`
	LastActivityAt      string        `json:"lastActivityAt"`
	Stale               bool          `json:"stale"`
	Activities          []ActivityDTO `json:"activities,omitempty"`
	CreatedAt           string        `json:"createdAt"`
	UpdatedAt           string        `json:"updatedAt"`
}

type AccountDTO struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	ContactPerson string        `json:"contactPerson,omitempty"`
	Email         string        `json:"email,omitempty"`
	Phone         string        `json:"phone,omitempty"`
	Website       string        `json:"website,omitempty"`
	Industry      string        `json:"industry,omitempty"`
	Status        AccountStatus `json:"status"`
	OwnerID       uuid.UUID     `json:"ownerId"`
	Scope         Scope         `json:"scope"`
	SourceLeadID  *uuid.UUID    `json:"sourceLeadId,omitempty"`
	CreatedAt     string        `json:"createdAt"`
	UpdatedAt     string        `json:"updatedAt"`
}

// DealDTO keeps the snake_case wire shape the original clients were built
// against, including "name" for the deal title.
type DealDTO struct {
	ID                uuid.UUID      `json:"id"`
	Name              string         `json:"name"` // maps to Deal.Title
	AccountID         *uuid.UUID     `json:"account_id,omitempty"`
	CompanyName       string         `json:"company_name,omitempty"`
	ContactPerson     string         `json:"contact_person,omitempty"`
	Email             string         `json:"email,omitempty"`
	Phone             string         `json:"phone,omitempty"`
	Value             float64        `json:"value"`
	Status            DealStatus     `json:"status"`
	Source            LeadSource     `json:"source"`
	Services          []string       `json:"services,omitempty"`
	Notes             string         `json:"notes,omitempty"`
	MeetingAt         *string        `json:"meeting_at,omitempty"`
	PaymentStatus     *PaymentStatus `json:"payment_status,omitempty"`
	ProjectManagerID  *uuid.UUID     `json:"project_manager_id,omitempty"`
	LostReason        *LostReason    `json:"lost_reason,omitempty"`
	LostReasonDetails string         `json:"lost_reason_details,omitempty"`
	ActualCloseDate   *string        `json:"actual_close_date,omitempty"`
	OwnerID           uuid.UUID      `json:"owner_id"`
	OwnerName         string         `json:"owner_name,omitempty"`
	Scope             Scope          `json:"scope"`
	SourceLeadID      *uuid.UUID     `json:"source_lead_id,omitempty"`
	Activities        []ActivityDTO  `json:"activities,omitempty"`
	CreatedAt         string         `json:"created_at"`
	UpdatedAt         string         `json:"updated_at"`
}

type DealStageHistoryDTO struct {
	ID            uuid.UUID   `json:"id"`
	DealID        uuid.UUID   `json:"dealId"`
	FromStatus    *DealStatus `json:"fromStatus,omitempty"`
	ToStatus      DealStatus  `json:"toStatus"`
	ChangedByID   uuid.UUID   `json:"changedById"`
	ChangedByName string      `json:"changedByName,omitempty"`
	Notes         string      `json:"notes,omitempty"`
	ChangedAt     string      `json:"changedAt"`
}

type ProjectDTO struct {
	ID                uuid.UUID     `json:"id"`
	Name              string        `json:"name"`
	ClientName        string        `json:"clientName,omitempty"`
	DealID            *uuid.UUID    `json:"dealId,omitempty"`
	Status            ProjectStatus `json:"status"`
	ProjectType       ProjectType   `json:"projectType"`
	StartDate         string        `json:"startDate"`
	EndDate           *string       `json:"endDate,omitempty"`
	Services          []string      `json:"services,omitempty"`
	ProjectManagerID  *uuid.UUID    `json:"projectManagerId,omitempty"`
	ManagerName       string        `json:"managerName,omitempty"`
	WebStagesDone     []string      `json:"webStagesDone,omitempty"`
	MarketingPlatform string        `json:"marketingPlatform,omitempty"`
	MarketingBudget   float64       `json:"marketingBudget,omitempty"`
	MarketingDuration int           `json:"marketingDuration,omitempty"`
	Scope             Scope         `json:"scope"`
	Tasks             []TaskDTO     `json:"tasks,omitempty"`
	CreatedAt         string        `json:"createdAt"`
	UpdatedAt         string        `json:"updatedAt"`
}

type TaskDTO struct {
	ID         uuid.UUID    `json:"id"`
	ProjectID  uuid.UUID    `json:"projectId"`
	ParentID   *uuid.UUID   `json:"parentId,omitempty"`
	Title      string       `json:"title"`
	Details    string       `json:"details,omitempty"`
	Status     TaskStatus   `json:"status"`
	Priority   TaskPriority `json:"priority"`
	AssigneeID *uuid.UUID   `json:"assigneeId,omitempty"`
	StartDate  *string      `json:"startDate,omitempty"`
	DueDate    *string      `json:"dueDate,omitempty"`
	Checklist  []string     `json:"checklist,omitempty"`
	Subtasks   []TaskDTO    `json:"subtasks,omitempty"`
	CreatedAt  string       `json:"createdAt"`
	UpdatedAt  string       `json:"updatedAt"`
}

type InvoiceDTO struct {
	ID            uuid.UUID     `json:"id"`
	InvoiceNumber string        `json:"invoiceNumber"`
	ClientName    string        `json:"clientName"`
	Amount        float64       `json:"amount"`
	Status        InvoiceStatus `json:"status"`
	IssueDate     string        `json:"issueDate"`
	DueDate       *string       `json:"dueDate,omitempty"`
	Description   string        `json:"description,omitempty"`
	DealID        *uuid.UUID    `json:"dealId,omitempty"`
	ProjectID     *uuid.UUID    `json:"projectId,omitempty"`
	QuoteID       *uuid.UUID    `json:"quoteId,omitempty"`
	OwnerID       uuid.UUID     `json:"ownerId"`
	Scope         Scope         `json:"scope"`
	CreatedAt     string        `json:"createdAt"`
	UpdatedAt     string        `json:"updatedAt"`
}

type QuoteDTO struct {
	ID          uuid.UUID      `json:"id"`
	QuoteNumber string         `json:"quoteNumber"`
	ClientName  string         `json:"clientName"`
	DealID      *uuid.UUID     `json:"dealId,omitempty"`
	Status      QuoteStatus    `json:"status"`
	IssueDate   string         `json:"issueDate"`
	ExpiryDate  *string        `json:"expiryDate,omitempty"`
	Items       []QuoteItemDTO `json:"items"`
	Terms       string         `json:"terms,omitempty"`
	Subtotal    float64        `json:"subtotal"`
	Discount    float64        `json:"discount"`
	TaxPercent  float64        `json:"taxPercent"`
	Total       float64        `json:"total"`
	OwnerID     uuid.UUID      `json:"ownerId"`
	Scope       Scope          `json:"scope"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
}

type QuoteItemDTO struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Quantity    float64   `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	LineTotal   float64   `json:"lineTotal"`
	Position    int       `json:"position"`
}

type ActivityDTO struct {
	ID         uuid.UUID          `json:"id"`
	TargetType ActivityTargetType `json:"targetType"`
	TargetID   uuid.UUID          `json:"targetId"`
	Type       ActivityType       `json:"type"`
	Content    string             `json:"content"`
	UserID     uuid.UUID          `json:"userId"`
	UserName   string             `json:"userName,omitempty"`
	CreatedAt  string             `json:"createdAt"`
}

type ActivityLogEntryDTO struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"userId"`
	UserName   string     `json:"userName,omitempty"`
	UserAvatar string     `json:"userAvatar,omitempty"`
	Action     string     `json:"action"`
	EntityType string     `json:"entityType,omitempty"`
	EntityID   *uuid.UUID `json:"entityId,omitempty"`
	CreatedAt  string     `json:"createdAt"`
}

type NotificationDTO struct {
	ID         uuid.UUID        `json:"id"`
	UserID     uuid.UUID        `json:"userId"`
	Type       NotificationType `json:"type"`
	Title      string           `json:"title"`
	Message    string           `json:"message,omitempty"`
	EntityType string           `json:"entityType,omitempty"`
	EntityID   *uuid.UUID       `json:"entityId,omitempty"`
	Read       bool             `json:"read"`
	ReadAt     *string          `json:"readAt,omitempty"`
	CreatedAt  string           `json:"createdAt"`
}

// UnreadCountDTO carries the unread notification badge count
type UnreadCountDTO struct {
	Count int64 `json:"count"`
}

// ConvertLeadResultDTO is returned by the lead conversion workflow
type ConvertLeadResultDTO struct {
	Lead    LeadDTO    `json:"lead"`
	Account AccountDTO `json:"account"`
	Deal    DealDTO    `json:"deal"`
}

// WinDealResultDTO is returned by the deal win workflow
type WinDealResultDTO struct {
	Deal    DealDTO    `json:"deal"`
	Project ProjectDTO `json:"project"`
}

// SyncPromptDTO advises the client that a linked record may need updating
type SyncPromptDTO struct {
	Prompt     bool       `json:"prompt"`
	EntityType string     `json:"entityType,omitempty"`
	EntityID   *uuid.UUID `json:"entityId,omitempty"`
	Message    string     `json:"message,omitempty"`
}

// ProjectStatusResultDTO is returned by the project status workflow
type ProjectStatusResultDTO struct {
	Project ProjectDTO     `json:"project"`
	Sync    *SyncPromptDTO `json:"sync,omitempty"`
}

// ScheduleSlotDTO represents a bookable meeting slot
type ScheduleSlotDTO struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}

// PermissionsDTO is the verb set granted on a single resource
type PermissionsDTO struct {
	Create bool `json:"create"`
	Read   bool `json:"read"`
	Update bool `json:"update"`
	Delete bool `json:"delete"`
}

// BootstrapDTO carries the initial dataset a client loads on login
type BootstrapDTO struct {
	CurrentUser   UserDTO                     `json:"currentUser"`
	Permissions   map[Resource]PermissionsDTO `json:"permissions"`
	Users         []UserDTO                   `json:"users"`
	Groups        []GroupDTO                  `json:"groups"`
	Leads         []LeadDTO                   `json:"leads"`
	Accounts      []AccountDTO                `json:"accounts"`
	Deals         []DealDTO                   `json:"deals"`
	Projects      []ProjectDTO                `json:"projects"`
	Invoices      []InvoiceDTO                `json:"invoices"`
	Quotes        []QuoteDTO                  `json:"quotes"`
	Notifications []NotificationDTO           `json:"notifications"`
}

// DashboardStatsDTO aggregates headline numbers for the dashboard
type DashboardStatsDTO struct {
	TotalLeads     int64                `json:"totalLeads"`
	StaleLeads     int64                `json:"staleLeads"`
	OpenDeals      int64                `json:"openDeals"`
	OpenDealValue  float64              `json:"openDealValue"`
	WonDeals       int64                `json:"wonDeals"`
	WonDealValue   float64              `json:"wonDealValue"`
	LostDeals      int64                `json:"lostDeals"`
	ActiveProjects int64                `json:"activeProjects"`
	UnpaidInvoices int64                `json:"unpaidInvoices"`
	UnpaidAmount   float64              `json:"unpaidAmount"`
	DealsByStage   map[DealStatus]int64 `json:"dealsByStage"`
	LossReasons    map[LostReason]int64 `json:"lossReasons"`
	GeneratedAt    string               `json:"generatedAt"`
}

// PaginatedResponse wraps list responses with paging metadata
type PaginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// NewPaginatedResponse builds a paginated response with computed page count
func NewPaginatedResponse[T any](data []T, total int64, page, pageSize int) PaginatedResponse[T] {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return PaginatedResponse[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// FormatTime renders a timestamp in the API's ISO 8601 wire format
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// FormatTimePtr renders an optional timestamp, returning nil when absent
func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTime(*t)
	return &s
}

// FormatDate renders a date-only value in the API's wire format
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatDatePtr renders an optional date, returning nil when absent
func FormatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatDate(*t)
	return &s
}
