package domain

import (
	"time"

	"github.com/google/uuid"
)

// Request payloads accepted by the API

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type CreateUserRequest struct {
	Name          string     `json:"name" validate:"required,max=200"`
	Email         string     `json:"email" validate:"required,email"`
	Password      string     `json:"password" validate:"required,min=8"`
	Role          UserRole   `json:"role" validate:"required"`
	Scope         Scope      `json:"scope"`
	GroupID       *uuid.UUID `json:"groupId"`
	Avatar        string     `json:"avatar" validate:"omitempty,url"`
	TargetDeals   int        `json:"targetDeals" validate:"gte=0"`
	TargetCalls   int        `json:"targetCalls" validate:"gte=0"`
	TargetRevenue float64    `json:"targetRevenue" validate:"gte=0"`
}

type UpdateUserRequest struct {
	Name          *string    `json:"name" validate:"omitempty,max=200"`
	Role          *UserRole  `json:"role"`
	Scope         *Scope     `json:"scope"`
	GroupID       *uuid.UUID `json:"groupId"`
	Avatar        *string    `json:"avatar" validate:"omitempty,url"`
	IsActive      *bool      `json:"isActive"`
	TargetDeals   *int       `json:"targetDeals" validate:"omitempty,gte=0"`
	TargetCalls   *int       `json:"targetCalls" validate:"omitempty,gte=0"`
	TargetRevenue *float64   `json:"targetRevenue" validate:"omitempty,gte=0"`
}

type CreateGroupRequest struct {
	Name      string     `json:"name" validate:"required,max=200"`
	ManagerID *uuid.UUID `json:"managerId"`
	Scope     Scope      `json:"scope"`
}

type UpdateGroupRequest struct {
	Name      *string    `json:"name" validate:"omitempty,max=200"`
	ManagerID *uuid.UUID `json:"managerId"`
	Scope     *Scope     `json:"scope"`
}

type CreateLeadRequest struct {
	CompanyName   string     `json:"companyName" validate:"required,max=200"`
	ContactPerson string     `json:"contactPerson" validate:"max=200"`
	Email         string     `json:"email" validate:"omitempty,email"`
	Phone         string     `json:"phone" validate:"max=50"`
	Source        LeadSource `json:"source"`
	Services      []string   `json:"services"`
	Notes         string     `json:"notes"`
	OwnerID       *uuid.UUID `json:"ownerId"`
	Scope         Scope      `json:"scope"`
}

type UpdateLeadRequest struct {
	CompanyName   *string     `json:"companyName" validate:"omitempty,max=200"`
	ContactPerson *string     `json:"contactPerson" validate:"omitempty,max=200"`
	Email         *string     `json:"email" validate:"omitempty,email"`
	Phone         *string     `json:"phone" validate:"omitempty,max=50"`
	Source        *LeadSource `json:"source"`
	Services      []string    `json:"services"`
	Notes         *string     `json:"notes"`
	OwnerID       *uuid.UUID  `json:"ownerId"`
}

// UpdateLeadStatusRequest moves a lead through its lifecycle. A reason is
// required when dismissing a lead as not interested.
type UpdateLeadStatusRequest struct {
	Status LeadStatus `json:"status" validate:"required"`
	Reason string     `json:"reason" validate:"max=500"`
}

// ConvertLeadRequest carries optional overrides for the conversion workflow
type ConvertLeadRequest struct {
	DealTitle   string  `json:"dealTitle" validate:"max=200"`
	DealValue   float64 `json:"dealValue" validate:"gte=0"`
	AccountName string  `json:"accountName" validate:"max=200"`
}

type CreateAccountRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	ContactPerson string `json:"contactPerson" validate:"max=200"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone" validate:"max=50"`
	Website       string `json:"website" validate:"omitempty,url"`
	Industry      string `json:"industry" validate:"max=100"`
	Scope         Scope  `json:"scope"`
}

type UpdateAccountRequest struct {
	Name          *string        `json:"name" validate:"omitempty,max=200"`
	ContactPerson *string        `json:"contactPerson" validate:"omitempty,max=200"`
	Email         *string        `json:"email" validate:"omitempty,email"`
	Phone         *string        `json:"phone" validate:"omitempty,max=50"`
	Website       *string        `json:"website" validate:"omitempty,url"`
	Industry      *string        `json:"industry" validate:"omitempty,max=100"`
	Status        *AccountStatus `json:"status"`
}

// CreateDealRequest uses the deal wire shape: "name" is the deal title
type CreateDealRequest struct {
	Name          string     `json:"name" validate:"required,max=200"`
	AccountID     *uuid.UUID `json:"account_id"`
	CompanyName   string     `json:"company_name" validate:"max=200"`
	ContactPerson string     `json:"contact_person" validate:"max=200"`
	Email         string     `json:"email" validate:"omitempty,email"`
	Phone         string     `json:"phone" validate:"max=50"`
	Value         float64    `json:"value" validate:"gte=0"`
	Source        LeadSource `json:"source"`
	Services      []string   `json:"services"`
	Notes         string     `json:"notes"`
	OwnerID       *uuid.UUID `json:"owner_id"`
	Scope         Scope      `json:"scope"`
}

type UpdateDealRequest struct {
	Name             *string        `json:"name" validate:"omitempty,max=200"`
	AccountID        *uuid.UUID     `json:"account_id"`
	CompanyName      *string        `json:"company_name" validate:"omitempty,max=200"`
	ContactPerson    *string        `json:"contact_person" validate:"omitempty,max=200"`
	Email            *string        `json:"email" validate:"omitempty,email"`
	Phone            *string        `json:"phone" validate:"omitempty,max=50"`
	Value            *float64       `json:"value" validate:"omitempty,gte=0"`
	Source           *LeadSource    `json:"source"`
	Services         []string       `json:"services"`
	Notes            *string        `json:"notes"`
	OwnerID          *uuid.UUID     `json:"owner_id"`
	ProjectManagerID *uuid.UUID     `json:"project_manager_id"`
	PaymentStatus    *PaymentStatus `json:"payment_status"`
}

// WinDealRequest closes a deal as won and spawns its delivery project
type WinDealRequest struct {
	ProjectName      string      `json:"project_name" validate:"max=200"`
	ProjectType      ProjectType `json:"project_type"`
	ProjectManagerID *uuid.UUID  `json:"project_manager_id"`
	StartDate        *time.Time  `json:"start_date"`
}

// LoseDealRequest closes a deal as lost. Details are mandatory when the
// reason is "other".
type LoseDealRequest struct {
	Reason  LostReason `json:"reason" validate:"required"`
	Details string     `json:"details" validate:"max=500"`
}

// MoveDealRequest repositions a deal on the kanban board
type MoveDealRequest struct {
	ToStatus DealStatus `json:"to_status" validate:"required"`
	// BeforeID places the deal before this card in the target column;
	// nil appends to the end
	BeforeID *uuid.UUID `json:"before_id"`
}

// ScheduleMeetingRequest books a meeting slot on a deal
type ScheduleMeetingRequest struct {
	At time.Time `json:"at" validate:"required"`
}

type CreateProjectRequest struct {
	Name              string      `json:"name" validate:"required,max=200"`
	ClientName        string      `json:"clientName" validate:"max=200"`
	DealID            *uuid.UUID  `json:"dealId"`
	ProjectType       ProjectType `json:"projectType"`
	StartDate         time.Time   `json:"startDate" validate:"required"`
	EndDate           *time.Time  `json:"endDate"`
	Services          []string    `json:"services"`
	ProjectManagerID  *uuid.UUID  `json:"projectManagerId"`
	MarketingPlatform string      `json:"marketingPlatform" validate:"max=100"`
	MarketingBudget   float64     `json:"marketingBudget" validate:"gte=0"`
	MarketingDuration int         `json:"marketingDuration" validate:"gte=0"`
	Scope             Scope       `json:"scope"`
}

type UpdateProjectRequest struct {
	Name              *string      `json:"name" validate:"omitempty,max=200"`
	ClientName        *string      `json:"clientName" validate:"omitempty,max=200"`
	ProjectType       *ProjectType `json:"projectType"`
	StartDate         *time.Time   `json:"startDate"`
	EndDate           *time.Time   `json:"endDate"`
	Services          []string     `json:"services"`
	ProjectManagerID  *uuid.UUID   `json:"projectManagerId"`
	WebStagesDone     []string     `json:"webStagesDone"`
	MarketingPlatform *string      `json:"marketingPlatform" validate:"omitempty,max=100"`
	MarketingBudget   *float64     `json:"marketingBudget" validate:"omitempty,gte=0"`
	MarketingDuration *int         `json:"marketingDuration" validate:"omitempty,gte=0"`
}

// UpdateProjectStatusRequest changes a project's delivery state
type UpdateProjectStatusRequest struct {
	Status ProjectStatus `json:"status" validate:"required"`
}

// CreateFollowUpTaskRequest spawns a follow-up task when a project
// completes
type CreateFollowUpTaskRequest struct {
	Title      string     `json:"title" validate:"max=300"`
	AssigneeID *uuid.UUID `json:"assigneeId"`
	DueDate    *time.Time `json:"dueDate"`
}

type CreateTaskRequest struct {
	ProjectID  uuid.UUID    `json:"projectId" validate:"required"`
	ParentID   *uuid.UUID   `json:"parentId"`
	Title      string       `json:"title" validate:"required,max=300"`
	Details    string       `json:"details"`
	Priority   TaskPriority `json:"priority"`
	AssigneeID *uuid.UUID   `json:"assigneeId"`
	StartDate  *time.Time   `json:"startDate"`
	DueDate    *time.Time   `json:"dueDate"`
	Checklist  []string     `json:"checklist"`
}

type UpdateTaskRequest struct {
	Title      *string       `json:"title" validate:"omitempty,max=300"`
	Details    *string       `json:"details"`
	Status     *TaskStatus   `json:"status"`
	Priority   *TaskPriority `json:"priority"`
	AssigneeID *uuid.UUID    `json:"assigneeId"`
	StartDate  *time.Time    `json:"startDate"`
	DueDate    *time.Time    `json:"dueDate"`
	Checklist  []string      `json:"checklist"`
}

type CreateInvoiceRequest struct {
	ClientName  string     `json:"clientName" validate:"required,max=200"`
	Amount      float64    `json:"amount" validate:"gte=0"`
	IssueDate   time.Time  `json:"issueDate" validate:"required"`
	DueDate     *time.Time `json:"dueDate"`
	Description string     `json:"description"`
	DealID      *uuid.UUID `json:"dealId"`
	ProjectID   *uuid.UUID `json:"projectId"`
	Scope       Scope      `json:"scope"`
}

type UpdateInvoiceRequest struct {
	ClientName  *string        `json:"clientName" validate:"omitempty,max=200"`
	Amount      *float64       `json:"amount" validate:"omitempty,gte=0"`
	Status      *InvoiceStatus `json:"status"`
	IssueDate   *time.Time     `json:"issueDate"`
	DueDate     *time.Time     `json:"dueDate"`
	Description *string        `json:"description"`
}

type QuoteItemRequest struct {
	Description string  `json:"description" validate:"required,max=500"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
}

type CreateQuoteRequest struct {
	ClientName string             `json:"clientName" validate:"required,max=200"`
	DealID     *uuid.UUID         `json:"dealId"`
	IssueDate  time.Time          `json:"issueDate" validate:"required"`
	ExpiryDate *time.Time         `json:"expiryDate"`
	Items      []QuoteItemRequest `json:"items" validate:"required,min=1,dive"`
	Terms      string             `json:"terms"`
	Discount   float64            `json:"discount" validate:"gte=0"`
	TaxPercent float64            `json:"taxPercent" validate:"gte=0"`
	Scope      Scope              `json:"scope"`
}

type UpdateQuoteRequest struct {
	ClientName *string            `json:"clientName" validate:"omitempty,max=200"`
	IssueDate  *time.Time         `json:"issueDate"`
	ExpiryDate *time.Time         `json:"expiryDate"`
	Items      []QuoteItemRequest `json:"items" validate:"omitempty,min=1,dive"`
	Terms      *string            `json:"terms"`
	Discount   *float64           `json:"discount" validate:"omitempty,gte=0"`
	TaxPercent *float64           `json:"taxPercent" validate:"omitempty,gte=0"`
}

// UpdateQuoteStatusRequest moves a quote through its lifecycle
type UpdateQuoteStatusRequest struct {
	Status QuoteStatus `json:"status" validate:"required"`
}

type CreateActivityRequest struct {
	Type    ActivityType `json:"type" validate:"required"`
	Content string       `json:"content" validate:"required"`
}

// SummarizeRequest asks the assistant to condense free text
type SummarizeRequest struct {
	Text string `json:"text" validate:"required"`
}

// DraftEmailRequest asks the assistant to write an outreach email
type DraftEmailRequest struct {
	Instructions string `json:"instructions" validate:"required"`
	Context      string `json:"context"`
}

// ChatMessage is a single turn in an assistant conversation
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// ChatRequest continues an assistant conversation
type ChatRequest struct {
	Messages []ChatMessage `json:"messages" validate:"required,min=1,dive"`
}
