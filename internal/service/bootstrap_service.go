package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/mapper"
	"github.com/saqrcrm/sales-api/internal/repository"
)

// BootstrapService assembles the initial dataset a client loads right
// after login
type BootstrapService struct {
	userRepo         *repository.UserRepository
	groupRepo        *repository.GroupRepository
	leadRepo         *repository.LeadRepository
	accountRepo      *repository.AccountRepository
	dealRepo         *repository.DealRepository
	projectRepo      *repository.ProjectRepository
	invoiceRepo      *repository.InvoiceRepository
	quoteRepo        *repository.QuoteRepository
	notificationRepo *repository.NotificationRepository
}

// NewBootstrapService creates a new bootstrap service
func NewBootstrapService(
	userRepo *repository.UserRepository,
	groupRepo *repository.GroupRepository,
	leadRepo *repository.LeadRepository,
	accountRepo *repository.AccountRepository,
	dealRepo *repository.DealRepository,
	projectRepo *repository.ProjectRepository,
	invoiceRepo *repository.InvoiceRepository,
	quoteRepo *repository.QuoteRepository,
	notificationRepo *repository.NotificationRepository,
) *BootstrapService {
	return &BootstrapService{
		userRepo:         userRepo,
		groupRepo:        groupRepo,
		leadRepo:         leadRepo,
		accountRepo:      accountRepo,
		dealRepo:         dealRepo,
		projectRepo:      projectRepo,
		invoiceRepo:      invoiceRepo,
		quoteRepo:        quoteRepo,
		notificationRepo: notificationRepo,
	}
}

// Load gathers every collection the client renders on first paint. The
// collections are fetched concurrently; scope filtering rides in on ctx.
func (s *BootstrapService) Load(ctx context.Context, actor domain.Actor) (*domain.BootstrapDTO, error) {
	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load current user: %w", err)
	}

	result := &domain.BootstrapDTO{
		CurrentUser: mapper.ToUserDTO(user),
		Permissions: mapper.ToPermissionsDTO(domain.ResolvePermissions(user.Role)),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		users, err := s.userRepo.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		result.Users = mapper.ToUserDTOs(users)
		return nil
	})
	g.Go(func() error {
		groups, err := s.groupRepo.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to list groups: %w", err)
		}
		result.Groups = mapper.ToGroupDTOs(groups)
		return nil
	})
	g.Go(func() error {
		leads, err := s.leadRepo.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("failed to list leads: %w", err)
		}
		result.Leads = mapper.ToLeadDTOs(leads)
		return nil
	})
	g.Go(func() error {
		accounts, err := s.accountRepo.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("failed to list accounts: %w", err)
		}
		result.Accounts = mapper.ToAccountDTOs(accounts)
		return nil
	})
	g.Go(func() error {
		deals, err := s.dealRepo.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("failed to list deals: %w", err)
		}
		result.Deals = mapper.ToDealDTOs(deals)
		return nil
	})
	g.Go(func() error {
		projects, err := s.projectRepo.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}
		result.Projects = mapper.ToProjectDTOs(projects)
		return nil
	})
	g.Go(func() error {
		invoices, err := s.invoiceRepo.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("failed to list invoices: %w", err)
		}
		result.Invoices = mapper.ToInvoiceDTOs(invoices)
		return nil
	})
	g.Go(func() error {
		quotes, err := s.quoteRepo.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("failed to list quotes: %w", err)
		}
		result.Quotes = mapper.ToQuoteDTOs(quotes)
		return nil
	})
	g.Go(func() error {
		notifications, _, err := s.notificationRepo.ListByUser(gctx, actor.ID, 1, 50, false, "")
		if err != nil {
			return fmt.Errorf("failed to list notifications: %w", err)
		}
		result.Notifications = mapper.ToNotificationDTOs(notifications)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
