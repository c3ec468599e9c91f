package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:(gen_random_uuid())"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID so inserts work on databases without
// gen_random_uuid.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Scope represents the regional market an entity belongs to
type Scope string

const (
	ScopeAll Scope = "ALL"
	ScopeKSA Scope = "KSA"
	ScopeEGY Scope = "EGY"
	ScopeUAE Scope = "UAE"
)

// IsValid checks if the Scope is a valid enum value
func (s Scope) IsValid() bool {
	switch s {
	case ScopeAll, ScopeKSA, ScopeEGY, ScopeUAE:
		return true
	}
	return false
}

// UserRole represents a user's function in the organization
type UserRole string

const (
	RoleAdmin          UserRole = "admin"
	RoleManager        UserRole = "manager"
	RoleSales          UserRole = "sales"
	RoleTelesales      UserRole = "telesales"
	RoleProjectManager UserRole = "project_manager"
	RoleFinance        UserRole = "finance"
)

// IsValid checks if the UserRole is a valid enum value
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleSales, RoleTelesales, RoleProjectManager, RoleFinance:
		return true
	}
	return false
}

// CanLeadGroup reports whether the role qualifies a user to manage a group.
func (r UserRole) CanLeadGroup() bool {
	return r == RoleManager || r == RoleAdmin
}

// User represents an employee account
type User struct {
	BaseModel
	Name          string     `gorm:"type:varchar(200);not null"`
	Email         string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash  string     `gorm:"type:varchar(255);not null;column:password_hash"`
	Role          UserRole   `gorm:"type:varchar(50);not null;index"`
	Scope         Scope      `gorm:"type:varchar(10);not null;default:'ALL';index"`
	GroupID       *uuid.UUID `gorm:"type:uuid;index;column:group_id"`
	Group         *Group     `gorm:"foreignKey:GroupID"`
	Avatar        string     `gorm:"type:varchar(500)"`
	IsActive      bool       `gorm:"not null;default:true;column:is_active"`
	TargetDeals   int        `gorm:"type:int;not null;default:0;column:target_deals"`
	TargetCalls   int        `gorm:"type:int;not null;default:0;column:target_calls"`
	TargetRevenue float64    `gorm:"type:decimal(15,2);not null;default:0;column:target_revenue"`
}

// Group represents a sales team led by a manager
type Group struct {
	BaseModel
	Name        string     `gorm:"type:varchar(200);not null"`
	ManagerID   *uuid.UUID `gorm:"type:uuid;index;column:manager_id"`
	ManagerName string     `gorm:"type:varchar(200);column:manager_name"`
	Scope       Scope      `gorm:"type:varchar(10);not null;default:'ALL';index"`
	Members     []User     `gorm:"foreignKey:GroupID"`
}

// LeadStatus represents the qualification state of a lead
type LeadStatus string

const (
	LeadStatusNew           LeadStatus = "new"
	LeadStatusContacted     LeadStatus = "contacted"
	LeadStatusQualified     LeadStatus = "qualified"
	LeadStatusNotInterested LeadStatus = "not_interested"
	LeadStatusConverted     LeadStatus = "converted"
)

// IsValid checks if the LeadStatus is a valid enum value
func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusNotInterested, LeadStatusConverted:
		return true
	}
	return false
}

// IsTerminal reports whether the status parks the lead outside the active
// pipeline. Converted is final; not interested merely exempts the lead
// from staleness checks until someone picks it back up.
func (s LeadStatus) IsTerminal() bool {
	return s == LeadStatusConverted || s == LeadStatusNotInterested
}

// LeadSource represents where a lead came from
type LeadSource string

const (
	LeadSourceWebsite    LeadSource = "website"
	LeadSourceReferral   LeadSource = "referral"
	LeadSourceColdCall   LeadSource = "cold_call"
	LeadSourceSocial     LeadSource = "social_media"
	LeadSourceExhibition LeadSource = "exhibition"
	LeadSourceOther      LeadSource = "other"
)

// Lead represents an unqualified prospect
type Lead struct {
	BaseModel
	CompanyName         string         `gorm:"type:varchar(200);not null;index;column:company_name"`
	ContactPerson       string         `gorm:"type:varchar(200);column:contact_person"`
	Email               string         `gorm:"type:varchar(255)"`
	Phone               string         `gorm:"type:varchar(50)"`
	Source              LeadSource     `gorm:"type:varchar(50);not null;default:'other'"`
	Status              LeadStatus     `gorm:"type:varchar(50);not null;default:'new';index"`
	Services            pq.StringArray `gorm:"type:text[]"`
	Notes               string         `gorm:"type:text"`
	NotInterestedReason string         `gorm:"type:varchar(500);column:not_interested_reason"`
	OwnerID             uuid.UUID      `gorm:"type:uuid;not null;index;column:owner_id"`
	OwnerName           string         `gorm:"type:varchar(200);column:owner_name"`
	Scope               Scope          `gorm:"type:varchar(10);not null;default:'ALL';index"`
	ConvertedDealID     *uuid.UUID     `gorm:"type:uuid;column:converted_deal_id"`
	LastActivityAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP;column:last_activity_at"`
}

// AccountStatus represents the status of an account
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
)

// Account represents a company record created from a converted lead
type Account struct {
	BaseModel
	Name          string        `gorm:"type:varchar(200);not null;index"`
	ContactPerson string        `gorm:"type:varchar(200);column:contact_person"`
	Email         string        `gorm:"type:varchar(255)"`
	Phone         string        `gorm:"type:varchar(50)"`
	Website       string        `gorm:"type:varchar(500)"`
	Industry      string        `gorm:"type:varchar(100)"`
	Status        AccountStatus `gorm:"type:varchar(50);not null;default:'active';index"`
	OwnerID       uuid.UUID     `gorm:"type:uuid;not null;index;column:owner_id"`
	Scope         Scope         `gorm:"type:varchar(10);not null;default:'ALL';index"`
	SourceLeadID  *uuid.UUID    `gorm:"type:uuid;column:source_lead_id"`
}

// DealStatus represents the pipeline stage of a deal
type DealStatus string

const (
	DealStatusNewOpportunity   DealStatus = "new_opportunity"
	DealStatusMeetingScheduled DealStatus = "meeting_scheduled"
	DealStatusProposalSent     DealStatus = "proposal_sent"
	DealStatusNegotiation      DealStatus = "negotiation"
	DealStatusWon              DealStatus = "won"
	DealStatusLost             DealStatus = "lost"
)

// IsValid checks if the DealStatus is a valid enum value
func (s DealStatus) IsValid() bool {
	switch s {
	case DealStatusNewOpportunity, DealStatusMeetingScheduled, DealStatusProposalSent,
		DealStatusNegotiation, DealStatusWon, DealStatusLost:
		return true
	}
	return false
}

// IsClosed reports whether the deal has left the open pipeline
func (s DealStatus) IsClosed() bool {
	return s == DealStatusWon || s == DealStatusLost
}

// LostReason represents the categorized reason for losing a deal
type LostReason string

const (
	LostReasonPrice        LostReason = "price"
	LostReasonCompetitor   LostReason = "competitor"
	LostReasonTiming       LostReason = "timing"
	LostReasonNoBudget     LostReason = "no_budget"
	LostReasonUnresponsive LostReason = "unresponsive"
	LostReasonOther        LostReason = "other"
)

// IsValid checks if the LostReason is a valid enum value
func (lr LostReason) IsValid() bool {
	switch lr {
	case LostReasonPrice, LostReasonCompetitor, LostReasonTiming,
		LostReasonNoBudget, LostReasonUnresponsive, LostReasonOther:
		return true
	}
	return false
}

// PaymentStatus represents the billing state of a won deal
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Deal represents a sales opportunity in the pipeline
type Deal struct {
	BaseModel
	Title             string         `gorm:"type:varchar(200);not null;index"`
	AccountID         *uuid.UUID     `gorm:"type:uuid;index;column:account_id"`
	Account           *Account       `gorm:"foreignKey:AccountID"`
	CompanyName       string         `gorm:"type:varchar(200);column:company_name"`
	ContactPerson     string         `gorm:"type:varchar(200);column:contact_person"`
	Email             string         `gorm:"type:varchar(255)"`
	Phone             string         `gorm:"type:varchar(50)"`
	Value             float64        `gorm:"type:decimal(15,2);not null;default:0"`
	Status            DealStatus     `gorm:"type:varchar(50);not null;default:'new_opportunity';index"`
	Source            LeadSource     `gorm:"type:varchar(50);not null;default:'other'"`
	Services          pq.StringArray `gorm:"type:text[]"`
	Notes             string         `gorm:"type:text"`
	MeetingAt         *time.Time     `gorm:"column:meeting_at"`
	PaymentStatus     *PaymentStatus `gorm:"type:varchar(50);column:payment_status"`
	ProjectManagerID  *uuid.UUID     `gorm:"type:uuid;column:project_manager_id"`
	LostReason        *LostReason    `gorm:"type:varchar(50);column:lost_reason"`
	LostReasonDetails string         `gorm:"type:varchar(500);column:lost_reason_details"`
	ActualCloseDate   *time.Time     `gorm:"type:date;column:actual_close_date"`
	OwnerID           uuid.UUID      `gorm:"type:uuid;not null;index;column:owner_id"`
	OwnerName         string         `gorm:"type:varchar(200);column:owner_name"`
	Scope             Scope          `gorm:"type:varchar(10);not null;default:'ALL';index"`
	SourceLeadID      *uuid.UUID     `gorm:"type:uuid;column:source_lead_id"`
}

// DealStageHistory tracks pipeline transitions for audit purposes
type DealStageHistory struct {
	ID            uuid.UUID   `gorm:"type:uuid;primary_key;default:(gen_random_uuid())"`
	DealID        uuid.UUID   `gorm:"type:uuid;not null;index;column:deal_id"`
	Deal          *Deal       `gorm:"foreignKey:DealID"`
	FromStatus    *DealStatus `gorm:"type:varchar(50);column:from_status"`
	ToStatus      DealStatus  `gorm:"type:varchar(50);not null;column:to_status"`
	ChangedByID   uuid.UUID   `gorm:"type:uuid;not null;column:changed_by_id"`
	ChangedByName string      `gorm:"type:varchar(200);column:changed_by_name"`
	Notes         string      `gorm:"type:text"`
	ChangedAt     time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP;column:changed_at"`
}

// BeforeCreate assigns an ID so inserts work on databases without
// gen_random_uuid.
func (h *DealStageHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// TableName overrides the default table name to match the migration
func (DealStageHistory) TableName() string {
	return "deal_stage_history"
}

// ProjectStatus represents the delivery state of a project
type ProjectStatus string

const (
	ProjectStatusPlanning   ProjectStatus = "planning"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusOnHold     ProjectStatus = "on_hold"
	ProjectStatusArchived   ProjectStatus = "archived"
)

// IsValid checks if the ProjectStatus is a valid enum value
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusInProgress, ProjectStatusCompleted,
		ProjectStatusOnHold, ProjectStatusArchived:
		return true
	}
	return false
}

// ProjectType represents the delivery track a project follows
type ProjectType string

const (
	ProjectTypeGeneral          ProjectType = "general"
	ProjectTypeWebDevelopment   ProjectType = "web_development"
	ProjectTypeDigitalMarketing ProjectType = "digital_marketing"
)

// IsValid checks if the ProjectType is a valid enum value
func (t ProjectType) IsValid() bool {
	switch t {
	case ProjectTypeGeneral, ProjectTypeWebDevelopment, ProjectTypeDigitalMarketing:
		return true
	}
	return false
}

// WebStages enumerates the web development checklist in delivery order.
var WebStages = []string{"requirements", "design", "development", "testing", "launch"}

// Project represents work delivered after a deal is won
type Project struct {
	BaseModel
	Name              string         `gorm:"type:varchar(200);not null;index"`
	ClientName        string         `gorm:"type:varchar(200);column:client_name"`
	DealID            *uuid.UUID     `gorm:"type:uuid;index;column:deal_id"`
	Deal              *Deal          `gorm:"foreignKey:DealID"`
	Status            ProjectStatus  `gorm:"type:varchar(50);not null;default:'planning';index"`
	ProjectType       ProjectType    `gorm:"type:varchar(50);not null;default:'general';column:project_type"`
	StartDate         time.Time      `gorm:"type:date;not null;column:start_date"`
	EndDate           *time.Time     `gorm:"type:date;column:end_date"`
	Services          pq.StringArray `gorm:"type:text[]"`
	ProjectManagerID  *uuid.UUID     `gorm:"type:uuid;index;column:project_manager_id"`
	ManagerName       string         `gorm:"type:varchar(200);column:manager_name"`
	WebStagesDone     pq.StringArray `gorm:"type:text[];column:web_stages_done"`
	MarketingPlatform string         `gorm:"type:varchar(100);column:marketing_platform"`
	MarketingBudget   float64        `gorm:"type:decimal(15,2);not null;default:0;column:marketing_budget"`
	MarketingDuration int            `gorm:"type:int;not null;default:0;column:marketing_duration"`
	Scope             Scope          `gorm:"type:varchar(10);not null;default:'ALL';index"`
	Tasks             []Task         `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// TaskStatus represents the completion state of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// IsValid checks if the TaskStatus is a valid enum value
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// TaskPriority represents how urgent a task is
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Task represents a unit of project work, optionally nested one level deep
type Task struct {
	BaseModel
	ProjectID  uuid.UUID      `gorm:"type:uuid;not null;index;column:project_id"`
	Project    *Project       `gorm:"foreignKey:ProjectID"`
	ParentID   *uuid.UUID     `gorm:"type:uuid;index;column:parent_id"`
	Title      string         `gorm:"type:varchar(300);not null"`
	Details    string         `gorm:"type:text"`
	Status     TaskStatus     `gorm:"type:varchar(50);not null;default:'todo';index"`
	Priority   TaskPriority   `gorm:"type:varchar(50);not null;default:'medium'"`
	AssigneeID *uuid.UUID     `gorm:"type:uuid;index;column:assignee_id"`
	StartDate  *time.Time     `gorm:"type:date;column:start_date"`
	DueDate    *time.Time     `gorm:"type:date;column:due_date"`
	Subtasks   []Task         `gorm:"foreignKey:ParentID"`
	Checklist  pq.StringArray `gorm:"type:text[]"`
}

// InvoiceStatus represents the billing state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// IsValid checks if the InvoiceStatus is a valid enum value
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// Invoice represents a bill issued against a won deal or project
type Invoice struct {
	BaseModel
	InvoiceNumber string        `gorm:"type:varchar(50);not null;uniqueIndex;column:invoice_number"`
	ClientName    string        `gorm:"type:varchar(200);not null;column:client_name"`
	Amount        float64       `gorm:"type:decimal(15,2);not null;default:0"`
	Status        InvoiceStatus `gorm:"type:varchar(50);not null;default:'draft';index"`
	IssueDate     time.Time     `gorm:"type:date;not null;column:issue_date"`
	DueDate       *time.Time    `gorm:"type:date;column:due_date"`
	Description   string        `gorm:"type:text"`
	DealID        *uuid.UUID    `gorm:"type:uuid;index;column:deal_id"`
	ProjectID     *uuid.UUID    `gorm:"type:uuid;index;column:project_id"`
	QuoteID       *uuid.UUID    `gorm:"type:uuid;index;column:quote_id"`
	OwnerID       uuid.UUID     `gorm:"type:uuid;not null;index;column:owner_id"`
	Scope         Scope         `gorm:"type:varchar(10);not null;default:'ALL';index"`
}

// QuoteStatus represents the lifecycle state of a quote
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
	QuoteStatusExpired  QuoteStatus = "expired"
)

// IsValid checks if the QuoteStatus is a valid enum value
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired:
		return true
	}
	return false
}

// Quote represents a priced proposal sent to a client
type Quote struct {
	BaseModel
	QuoteNumber string      `gorm:"type:varchar(50);not null;uniqueIndex;column:quote_number"`
	ClientName  string      `gorm:"type:varchar(200);not null;column:client_name"`
	DealID      *uuid.UUID  `gorm:"type:uuid;index;column:deal_id"`
	Deal        *Deal       `gorm:"foreignKey:DealID"`
	Status      QuoteStatus `gorm:"type:varchar(50);not null;default:'draft';index"`
	IssueDate   time.Time   `gorm:"type:date;not null;column:issue_date"`
	ExpiryDate  *time.Time  `gorm:"type:date;column:expiry_date"`
	Items       []QuoteItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	Terms       string      `gorm:"type:text"`
	Subtotal    float64     `gorm:"type:decimal(15,2);not null;default:0"`
	Discount    float64     `gorm:"type:decimal(15,2);not null;default:0"`
	TaxPercent  float64     `gorm:"type:decimal(5,2);not null;default:0;column:tax_percent"`
	Total       float64     `gorm:"type:decimal(15,2);not null;default:0"`
	OwnerID     uuid.UUID   `gorm:"type:uuid;not null;index;column:owner_id"`
	Scope       Scope       `gorm:"type:varchar(10);not null;default:'ALL';index"`
}

// QuoteItem represents a line item in a quote
type QuoteItem struct {
	BaseModel
	QuoteID     uuid.UUID `gorm:"type:uuid;not null;index;column:quote_id"`
	Description string    `gorm:"type:varchar(500);not null"`
	Quantity    float64   `gorm:"type:decimal(10,2);not null;default:1"`
	UnitPrice   float64   `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
	Position    int       `gorm:"type:int;not null;default:0"`
}

// LineTotal returns quantity times unit price for the item
func (qi *QuoteItem) LineTotal() float64 {
	return qi.Quantity * qi.UnitPrice
}

// ActivityTargetType represents the kind of entity an activity is attached to
type ActivityTargetType string

const (
	ActivityTargetLead ActivityTargetType = "lead"
	ActivityTargetDeal ActivityTargetType = "deal"
)

// ActivityType represents the kind of interaction recorded
type ActivityType string

const (
	ActivityTypeNote    ActivityType = "note"
	ActivityTypeCall    ActivityType = "call"
	ActivityTypeEmail   ActivityType = "email"
	ActivityTypeMeeting ActivityType = "meeting"
)

// Activity represents a timestamped interaction on a lead or deal
type Activity struct {
	ID         uuid.UUID          `gorm:"type:uuid;primary_key;default:(gen_random_uuid())"`
	TargetType ActivityTargetType `gorm:"type:varchar(50);not null;index:idx_activity_target;column:target_type"`
	TargetID   uuid.UUID          `gorm:"type:uuid;not null;index:idx_activity_target;column:target_id"`
	Type       ActivityType       `gorm:"type:varchar(50);not null"`
	Content    string             `gorm:"type:text;not null"`
	UserID     uuid.UUID          `gorm:"type:uuid;not null;column:user_id"`
	UserName   string             `gorm:"type:varchar(200);column:user_name"`
	CreatedAt  time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID so inserts work on databases without
// gen_random_uuid.
func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ActivityLogEntry is an append-only record of a user action.
// Entries are written best-effort and never updated or deleted.
type ActivityLogEntry struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;default:(gen_random_uuid())"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index;column:user_id"`
	UserName   string     `gorm:"type:varchar(200);column:user_name"`
	UserAvatar string     `gorm:"type:varchar(500);column:user_avatar"`
	Action     string     `gorm:"type:varchar(500);not null"`
	EntityType string     `gorm:"type:varchar(50);column:entity_type"`
	EntityID   *uuid.UUID `gorm:"type:uuid;column:entity_id"`
	CreatedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

// BeforeCreate assigns an ID so inserts work on databases without
// gen_random_uuid.
func (e *ActivityLogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName overrides the default table name to match the migration
func (ActivityLogEntry) TableName() string {
	return "activity_log"
}

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationTypeLeadAssigned   NotificationType = "lead_assigned"
	NotificationTypeLeadConverted  NotificationType = "lead_converted"
	NotificationTypeStaleLead      NotificationType = "stale_lead"
	NotificationTypeDealWon        NotificationType = "deal_won"
	NotificationTypeDealLost       NotificationType = "deal_lost"
	NotificationTypeMeetingBooked  NotificationType = "meeting_booked"
	NotificationTypeProjectCreated NotificationType = "project_created"
	NotificationTypeQuoteAccepted  NotificationType = "quote_accepted"
	NotificationTypeTaskAssigned   NotificationType = "task_assigned"
)

// Notification represents an in-app message for a user
type Notification struct {
	BaseModel
	UserID     uuid.UUID        `gorm:"type:uuid;not null;index;column:user_id"`
	Type       NotificationType `gorm:"type:varchar(50);not null"`
	Title      string           `gorm:"type:varchar(200);not null"`
	Message    string           `gorm:"type:text"`
	EntityType string           `gorm:"type:varchar(50);column:entity_type"`
	EntityID   *uuid.UUID       `gorm:"type:uuid;column:entity_id"`
	Read       bool             `gorm:"not null;default:false;index"`
	ReadAt     *time.Time       `gorm:"column:read_at"`
}

// NumberSequence issues gapless document numbers per key (quote, invoice)
type NumberSequence struct {
	Key       string    `gorm:"type:varchar(50);primaryKey"`
	Prefix    string    `gorm:"type:varchar(20);not null"`
	NextValue int64     `gorm:"not null;default:1;column:next_value"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName overrides the default table name to match the migration
func (NumberSequence) TableName() string {
	return "number_sequences"
}
