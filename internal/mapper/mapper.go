package mapper

import (
	"time"

	"github.com/saqrcrm/sales-api/internal/domain"
)

// ToUserDTO converts a User model to its API representation
func ToUserDTO(user *domain.User) domain.UserDTO {
	dto := domain.UserDTO{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		Role:          user.Role,
		Scope:         user.Scope,
		GroupID:       user.GroupID,
		Avatar:        user.Avatar,
		IsActive:      user.IsActive,
		TargetDeals:   user.TargetDeals,
		TargetCalls:   user.TargetCalls,
		TargetRevenue: user.TargetRevenue,
		CreatedAt:     domain.FormatTime(user.CreatedAt),
		UpdatedAt:     domain.FormatTime(user.UpdatedAt),
	}
	if user.Group != nil {
		dto.GroupName = user.Group.Name
	}
	return dto
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []domain.User) []domain.UserDTO {
	dtos := make([]domain.UserDTO, len(users))
	for i := range users {
		dtos[i] = ToUserDTO(&users[i])
	}
	return dtos
}

// ToGroupDTO converts a Group model to its API representation
func ToGroupDTO(group *domain.Group) domain.GroupDTO {
	return domain.GroupDTO{
		ID:          group.ID,
		Name:        group.Name,
		ManagerID:   group.ManagerID,
		ManagerName: group.ManagerName,
		Scope:       group.Scope,
		MemberCount: len(group.Members),
		Members:     ToUserDTOs(group.Members),
		CreatedAt:   domain.FormatTime(group.CreatedAt),
		UpdatedAt:   domain.FormatTime(group.UpdatedAt),
	}
}

// ToGroupDTOs converts a slice of groups
func ToGroupDTOs(groups []domain.Group) []domain.GroupDTO {
	dtos := make([]domain.GroupDTO, len(groups))
	for i := range groups {
		dtos[i] = ToGroupDTO(&groups[i])
	}
	return dtos
}

// ToLeadDTO converts a Lead model to its API representation. Staleness is
// computed at read time so the flag is always current.
func ToLeadDTO(lead *domain.Lead, activities []domain.Activity) domain.LeadDTO {
	return domain.LeadDTO{
		ID:                  lead.ID,
		CompanyName:         lead.CompanyName,
		ContactPerson:       lead.ContactPerson,
		Email:               lead.Email,
		Phone:               lead.Phone,
		Source:              lead.Source,
		Status:              lead.Status,
		Services:            lead.Services,
		Notes:               lead.Notes,
		NotInterestedReason: lead.NotInterestedReason,
		OwnerID:             lead.OwnerID,
		OwnerName:           lead.OwnerName,
		Scope:               lead.Scope,
		ConvertedDealID:     lead.ConvertedDealID,
		LastActivityAt:      domain.FormatTime(lead.LastActivityAt),
		Stale:               domain.IsLeadStale(lead, time.Now()),
		Activities:          ToActivityDTOs(activities),
		CreatedAt:           domain.FormatTime(lead.CreatedAt),
		UpdatedAt:           domain.FormatTime(lead.UpdatedAt),
	}
}

// ToLeadDTOs converts a slice of leads without activity timelines
func ToLeadDTOs(leads []domain.Lead) []domain.LeadDTO {
	dtos := make([]domain.LeadDTO, len(leads))
	for i := range leads {
		dtos[i] = ToLeadDTO(&leads[i], nil)
	}
	return dtos
}

// ToAccountDTO converts an Account model to its API representation
func ToAccountDTO(account *domain.Account) domain.AccountDTO {
	return domain.AccountDTO{
		ID:            account.ID,
		Name:          account.Name,
		ContactPerson: account.ContactPerson,
		Email:         account.Email,
		Phone:         account.Phone,
		Website:       account.Website,
		Industry:      account.Industry,
		Status:        account.Status,
		OwnerID:       account.OwnerID,
		Scope:         account.Scope,
		SourceLeadID:  account.SourceLeadID,
		CreatedAt:     domain.FormatTime(account.CreatedAt),
		UpdatedAt:     domain.FormatTime(account.UpdatedAt),
	}
}

// ToAccountDTOs converts a slice of accounts
func ToAccountDTOs(accounts []domain.Account) []domain.AccountDTO {
	dtos := make([]domain.AccountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = ToAccountDTO(&accounts[i])
	}
	return dtos
}

// ToDealDTO converts a Deal model to the snake_case wire shape. The model's
// Title travels as "name".
func ToDealDTO(deal *domain.Deal, activities []domain.Activity) domain.DealDTO {
	return domain.DealDTO{
		ID:                deal.ID,
		Name:              deal.Title,
		AccountID:         deal.AccountID,
		CompanyName:       deal.CompanyName,
		ContactPerson:     deal.ContactPerson,
		Email:             deal.Email,
		Phone:             deal.Phone,
		Value:             deal.Value,
		Status:            deal.Status,
		Source:            deal.Source,
		Services:          deal.Services,
		Notes:             deal.Notes,
		MeetingAt:         domain.FormatTimePtr(deal.MeetingAt),
		PaymentStatus:     deal.PaymentStatus,
		ProjectManagerID:  deal.ProjectManagerID,
		LostReason:        deal.LostReason,
		LostReasonDetails: deal.LostReasonDetails,
		ActualCloseDate:   domain.FormatDatePtr(deal.ActualCloseDate),
		OwnerID:           deal.OwnerID,
		OwnerName:         deal.OwnerName,
		Scope:             deal.Scope,
		SourceLeadID:      deal.SourceLeadID,
		Activities:        ToActivityDTOs(activities),
		CreatedAt:         domain.FormatTime(deal.CreatedAt),
		UpdatedAt:         domain.FormatTime(deal.UpdatedAt),
	}
}

// ToDealDTOs converts a slice of deals without activity timelines
func ToDealDTOs(deals []domain.Deal) []domain.DealDTO {
	dtos := make([]domain.DealDTO, len(deals))
	for i := range deals {
		dtos[i] = ToDealDTO(&deals[i], nil)
	}
	return dtos
}

// ToDealStageHistoryDTO converts a stage transition record
func ToDealStageHistoryDTO(h *domain.DealStageHistory) domain.DealStageHistoryDTO {
	return domain.DealStageHistoryDTO{
		ID:            h.ID,
		DealID:        h.DealID,
		FromStatus:    h.FromStatus,
		ToStatus:      h.ToStatus,
		ChangedByID:   h.ChangedByID,
		ChangedByName: h.ChangedByName,
		Notes:         h.Notes,
		ChangedAt:     domain.FormatTime(h.ChangedAt),
	}
}

// ToDealStageHistoryDTOs converts a slice of stage transitions
func ToDealStageHistoryDTOs(history []domain.DealStageHistory) []domain.DealStageHistoryDTO {
	dtos := make([]domain.DealStageHistoryDTO, len(history))
	for i := range history {
		dtos[i] = ToDealStageHistoryDTO(&history[i])
	}
	return dtos
}

// ToProjectDTO converts a Project model to its API representation
func ToProjectDTO(project *domain.Project) domain.ProjectDTO {
	return domain.ProjectDTO{
		ID:                project.ID,
		Name:              project.Name,
		ClientName:        project.ClientName,
		DealID:            project.DealID,
		Status:            project.Status,
		ProjectType:       project.ProjectType,
		StartDate:         domain.FormatDate(project.StartDate),
		EndDate:           domain.FormatDatePtr(project.EndDate),
		Services:          project.Services,
		ProjectManagerID:  project.ProjectManagerID,
		ManagerName:       project.ManagerName,
		WebStagesDone:     project.WebStagesDone,
		MarketingPlatform: project.MarketingPlatform,
		MarketingBudget:   project.MarketingBudget,
		MarketingDuration: project.MarketingDuration,
		Scope:             project.Scope,
		Tasks:             ToTaskDTOs(project.Tasks),
		CreatedAt:         domain.FormatTime(project.CreatedAt),
		UpdatedAt:         domain.FormatTime(project.UpdatedAt),
	}
}

// ToProjectDTOs converts a slice of projects
func ToProjectDTOs(projects []domain.Project) []domain.ProjectDTO {
	dtos := make([]domain.ProjectDTO, len(projects))
	for i := range projects {
		dtos[i] = ToProjectDTO(&projects[i])
	}
	return dtos
}

// ToTaskDTO converts a Task model including one level of subtasks
func ToTaskDTO(task *domain.Task) domain.TaskDTO {
	return domain.TaskDTO{
		ID:         task.ID,
		ProjectID:  task.ProjectID,
		ParentID:   task.ParentID,
		Title:      task.Title,
		Details:    task.Details,
		Status:     task.Status,
		Priority:   task.Priority,
		AssigneeID: task.AssigneeID,
		StartDate:  domain.FormatDatePtr(task.StartDate),
		DueDate:    domain.FormatDatePtr(task.DueDate),
		Checklist:  task.Checklist,
		Subtasks:   ToTaskDTOs(task.Subtasks),
		CreatedAt:  domain.FormatTime(task.CreatedAt),
		UpdatedAt:  domain.FormatTime(task.UpdatedAt),
	}
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []domain.Task) []domain.TaskDTO {
	if len(tasks) == 0 {
		return nil
	}
	dtos := make([]domain.TaskDTO, len(tasks))
	for i := range tasks {
		dtos[i] = ToTaskDTO(&tasks[i])
	}
	return dtos
}

// ToInvoiceDTO converts an Invoice model to its API representation
func ToInvoiceDTO(invoice *domain.Invoice) domain.InvoiceDTO {
	return domain.InvoiceDTO{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		ClientName:    invoice.ClientName,
		Amount:        invoice.Amount,
		Status:        invoice.Status,
		IssueDate:     domain.FormatDate(invoice.IssueDate),
		DueDate:       domain.FormatDatePtr(invoice.DueDate),
		Description:   invoice.Description,
		DealID:        invoice.DealID,
		ProjectID:     invoice.ProjectID,
		QuoteID:       invoice.QuoteID,
		OwnerID:       invoice.OwnerID,
		Scope:         invoice.Scope,
		CreatedAt:     domain.FormatTime(invoice.CreatedAt),
		UpdatedAt:     domain.FormatTime(invoice.UpdatedAt),
	}
}

// ToInvoiceDTOs converts a slice of invoices
func ToInvoiceDTOs(invoices []domain.Invoice) []domain.InvoiceDTO {
	dtos := make([]domain.InvoiceDTO, len(invoices))
	for i := range invoices {
		dtos[i] = ToInvoiceDTO(&invoices[i])
	}
	return dtos
}

// ToQuoteDTO converts a Quote model with its line items
func ToQuoteDTO(quote *domain.Quote) domain.QuoteDTO {
	items := make([]domain.QuoteItemDTO, len(quote.Items))
	for i := range quote.Items {
		items[i] = ToQuoteItemDTO(&quote.Items[i])
	}
	return domain.QuoteDTO{
		ID:          quote.ID,
		QuoteNumber: quote.QuoteNumber,
		ClientName:  quote.ClientName,
		DealID:      quote.DealID,
		Status:      quote.Status,
		IssueDate:   domain.FormatDate(quote.IssueDate),
		ExpiryDate:  domain.FormatDatePtr(quote.ExpiryDate),
		Items:       items,
		Terms:       quote.Terms,
		Subtotal:    quote.Subtotal,
		Discount:    quote.Discount,
		TaxPercent:  quote.TaxPercent,
		Total:       quote.Total,
		OwnerID:     quote.OwnerID,
		Scope:       quote.Scope,
		CreatedAt:   domain.FormatTime(quote.CreatedAt),
		UpdatedAt:   domain.FormatTime(quote.UpdatedAt),
	}
}

// ToQuoteItemDTO converts a quote line item
func ToQuoteItemDTO(item *domain.QuoteItem) domain.QuoteItemDTO {
	return domain.QuoteItemDTO{
		ID:          item.ID,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		LineTotal:   item.LineTotal(),
		Position:    item.Position,
	}
}

// ToQuoteDTOs converts a slice of quotes
func ToQuoteDTOs(quotes []domain.Quote) []domain.QuoteDTO {
	dtos := make([]domain.QuoteDTO, len(quotes))
	for i := range quotes {
		dtos[i] = ToQuoteDTO(&quotes[i])
	}
	return dtos
}

// ToActivityDTO converts an Activity model to its API representation
func ToActivityDTO(activity *domain.Activity) domain.ActivityDTO {
	return domain.ActivityDTO{
		ID:         activity.ID,
		TargetType: activity.TargetType,
		TargetID:   activity.TargetID,
		Type:       activity.Type,
		Content:    activity.Content,
		UserID:     activity.UserID,
		UserName:   activity.UserName,
		CreatedAt:  domain.FormatTime(activity.CreatedAt),
	}
}

// ToActivityDTOs converts a slice of activities
func ToActivityDTOs(activities []domain.Activity) []domain.ActivityDTO {
	if len(activities) == 0 {
		return nil
	}
	dtos := make([]domain.ActivityDTO, len(activities))
	for i := range activities {
		dtos[i] = ToActivityDTO(&activities[i])
	}
	return dtos
}

// ToActivityLogEntryDTO converts an action feed entry
func ToActivityLogEntryDTO(entry *domain.ActivityLogEntry) domain.ActivityLogEntryDTO {
	return domain.ActivityLogEntryDTO{
		ID:         entry.ID,
		UserID:     entry.UserID,
		UserName:   entry.UserName,
		UserAvatar: entry.UserAvatar,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		CreatedAt:  domain.FormatTime(entry.CreatedAt),
	}
}

// ToActivityLogEntryDTOs converts a slice of action feed entries
func ToActivityLogEntryDTOs(entries []domain.ActivityLogEntry) []domain.ActivityLogEntryDTO {
	dtos := make([]domain.ActivityLogEntryDTO, len(entries))
	for i := range entries {
		dtos[i] = ToActivityLogEntryDTO(&entries[i])
	}
	return dtos
}

// ToNotificationDTO converts a Notification model to its API representation
func ToNotificationDTO(notification *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:         notification.ID,
		UserID:     notification.UserID,
		Type:       notification.Type,
		Title:      notification.Title,
		Message:    notification.Message,
		EntityType: notification.EntityType,
		EntityID:   notification.EntityID,
		Read:       notification.Read,
		ReadAt:     domain.FormatTimePtr(notification.ReadAt),
		CreatedAt:  domain.FormatTime(notification.CreatedAt),
	}
}

// ToNotificationDTOs converts a slice of notifications
func ToNotificationDTOs(notifications []domain.Notification) []domain.NotificationDTO {
	dtos := make([]domain.NotificationDTO, len(notifications))
	for i := range notifications {
		dtos[i] = ToNotificationDTO(&notifications[i])
	}
	return dtos
}

// ToPermissionsDTO converts a resolved verb matrix to its API shape
func ToPermissionsDTO(matrix map[domain.Resource]domain.VerbSet) map[domain.Resource]domain.PermissionsDTO {
	dto := make(map[domain.Resource]domain.PermissionsDTO, len(matrix))
	for res, verbs := range matrix {
		dto[res] = domain.PermissionsDTO{
			Create: verbs.Create,
			Read:   verbs.Read,
			Update: verbs.Update,
			Delete: verbs.Delete,
		}
	}
	return dto
}
