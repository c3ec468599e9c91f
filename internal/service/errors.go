package service

import "errors"

// Sentinel errors returned by the service layer. Handlers translate these
// into RFC 7807 problem responses.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
	ErrUnauthorized     = errors.New("unauthorized")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrEmailTaken         = errors.New("email is already registered")

	ErrLeadNotQualified    = errors.New("lead must be qualified before conversion")
	ErrLeadAlreadyClosed   = errors.New("lead has already been converted")
	ErrDismissReasonNeeded = errors.New("a reason is required when marking a lead not interested")

	ErrDealNotOpen         = errors.New("deal is already closed")
	ErrLossReasonRequired  = errors.New("a loss reason is required to close a deal as lost")
	ErrLossDetailsRequired = errors.New("details are required when the loss reason is other")
	ErrMeetingInPast       = errors.New("meeting time must be in the future")
	ErrDealHasProject      = errors.New("deal already has a project")

	ErrProjectNotCompleted = errors.New("project must be completed first")
	ErrInvalidWebStage     = errors.New("unknown web development stage")
	ErrTaskNestingTooDeep  = errors.New("subtasks cannot have their own subtasks")

	ErrQuoteNotEditable = errors.New("quote can no longer be edited")
	ErrInvoiceNotDraft  = errors.New("invoice is no longer a draft")

	ErrGroupManagerRole = errors.New("group manager must hold the manager or admin role")

	ErrAssistantDisabled = errors.New("assistant features are not enabled")
)
