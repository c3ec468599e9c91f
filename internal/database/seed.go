package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/saqrcrm/sales-api/internal/auth"
	"github.com/saqrcrm/sales-api/internal/domain"
)

// Seed populates the database with demo users, a small pipeline and
// supporting records. Every demo user's password is "demo1234".
func Seed(db *gorm.DB, bcryptCost int) error {
	hash, err := auth.HashPassword("demo1234", bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	now := time.Now().UTC()

	ksaGroup := domain.Group{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Name:      "Riyadh Sales",
		Scope:     domain.ScopeKSA,
	}
	egyGroup := domain.Group{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Name:      "Cairo Sales",
		Scope:     domain.ScopeEGY,
	}

	admin := domain.User{
		BaseModel:    domain.BaseModel{ID: uuid.New()},
		Name:         "Demo Admin",
		Email:        "admin@demo.local",
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Scope:        domain.ScopeAll,
		IsActive:     true,
	}
	manager := domain.User{
		BaseModel:    domain.BaseModel{ID: uuid.New()},
		Name:         "Mona Khalil",
		Email:        "manager@demo.local",
		PasswordHash: hash,
		Role:         domain.RoleManager,
		Scope:        domain.ScopeKSA,
		GroupID:      &ksaGroup.ID,
		IsActive:     true,
	}
	sales := domain.User{
		BaseModel:    domain.BaseModel{ID: uuid.New()},
		Name:         "Omar Haddad",
		Email:        "sales@demo.local",
		PasswordHash: hash,
		Role:         domain.RoleSales,
		Scope:        domain.ScopeKSA,
		GroupID:      &ksaGroup.ID,
		IsActive:     true,
		TargetDeals:  10,
		TargetCalls:  60,
	}
	telesales := domain.User{
		BaseModel:    domain.BaseModel{ID: uuid.New()},
		Name:         "Sara Adel",
		Email:        "telesales@demo.local",
		PasswordHash: hash,
		Role:         domain.RoleTelesales,
		Scope:        domain.ScopeEGY,
		GroupID:      &egyGroup.ID,
		IsActive:     true,
		TargetCalls:  120,
	}
	pm := domain.User{
		BaseModel:    domain.BaseModel{ID: uuid.New()},
		Name:         "Karim Nassar",
		Email:        "pm@demo.local",
		PasswordHash: hash,
		Role:         domain.RoleProjectManager,
		Scope:        domain.ScopeAll,
		IsActive:     true,
	}
	finance := domain.User{
		BaseModel:    domain.BaseModel{ID: uuid.New()},
		Name:         "Huda Samir",
		Email:        "finance@demo.local",
		PasswordHash: hash,
		Role:         domain.RoleFinance,
		Scope:        domain.ScopeAll,
		IsActive:     true,
	}

	ksaGroup.ManagerID = &manager.ID
	ksaGroup.ManagerName = manager.Name

	leads := []domain.Lead{
		{
			BaseModel:      domain.BaseModel{ID: uuid.New()},
			CompanyName:    "Noor Trading Co",
			ContactPerson:  "Faisal Noor",
			Email:          "faisal@noortrading.example",
			Phone:          "+966500000001",
			Source:         domain.LeadSourceWebsite,
			Status:         domain.LeadStatusQualified,
			Services:       pq.StringArray{"web_development"},
			OwnerID:        sales.ID,
			OwnerName:      sales.Name,
			Scope:          domain.ScopeKSA,
			LastActivityAt: now,
		},
		{
			BaseModel:      domain.BaseModel{ID: uuid.New()},
			CompanyName:    "Delta Foods",
			ContactPerson:  "Nadia Fathy",
			Email:          "nadia@deltafoods.example",
			Source:         domain.LeadSourceColdCall,
			Status:         domain.LeadStatusContacted,
			Services:       pq.StringArray{"digital_marketing"},
			OwnerID:        telesales.ID,
			OwnerName:      telesales.Name,
			Scope:          domain.ScopeEGY,
			LastActivityAt: now.Add(-10 * 24 * time.Hour),
		},
		{
			BaseModel:      domain.BaseModel{ID: uuid.New()},
			CompanyName:    "Gulf Horizon",
			ContactPerson:  "Yousef Rami",
			Source:         domain.LeadSourceExhibition,
			Status:         domain.LeadStatusNew,
			OwnerID:        sales.ID,
			OwnerName:      sales.Name,
			Scope:          domain.ScopeKSA,
			LastActivityAt: now,
		},
	}

	account := domain.Account{
		BaseModel:     domain.BaseModel{ID: uuid.New()},
		Name:          "Almasa Holdings",
		ContactPerson: "Rania Almasa",
		Email:         "rania@almasa.example",
		Status:        domain.AccountStatusActive,
		OwnerID:       sales.ID,
		Scope:         domain.ScopeKSA,
	}

	meeting := now.Add(72 * time.Hour)
	deals := []domain.Deal{
		{
			BaseModel:     domain.BaseModel{ID: uuid.New()},
			Title:         "Almasa corporate site",
			AccountID:     &account.ID,
			CompanyName:   account.Name,
			ContactPerson: account.ContactPerson,
			Value:         48000,
			Status:        domain.DealStatusNegotiation,
			Source:        domain.LeadSourceReferral,
			Services:      pq.StringArray{"web_development"},
			OwnerID:       sales.ID,
			OwnerName:     sales.Name,
			Scope:         domain.ScopeKSA,
		},
		{
			BaseModel:   domain.BaseModel{ID: uuid.New()},
			Title:       "Delta Foods campaign",
			CompanyName: "Delta Foods",
			Value:       15000,
			Status:      domain.DealStatusMeetingScheduled,
			Source:      domain.LeadSourceColdCall,
			Services:    pq.StringArray{"digital_marketing"},
			MeetingAt:   &meeting,
			OwnerID:     telesales.ID,
			OwnerName:   telesales.Name,
			Scope:       domain.ScopeEGY,
		},
	}

	quote := domain.Quote{
		BaseModel:   domain.BaseModel{ID: uuid.New()},
		QuoteNumber: "Q-2026-0001",
		ClientName:  account.Name,
		DealID:      &deals[0].ID,
		Status:      domain.QuoteStatusSent,
		IssueDate:   now,
		Subtotal:    48000,
		Discount:    3000,
		TaxPercent:  15,
		Total:       (48000 - 3000) * 1.15,
		OwnerID:     sales.ID,
		Scope:       domain.ScopeKSA,
		Items: []domain.QuoteItem{
			{BaseModel: domain.BaseModel{ID: uuid.New()}, Description: "Design and build", Quantity: 1, UnitPrice: 40000, Position: 0},
			{BaseModel: domain.BaseModel{ID: uuid.New()}, Description: "First year hosting", Quantity: 1, UnitPrice: 8000, Position: 1},
		},
	}

	sequences := []domain.NumberSequence{
		{Key: "quote", Prefix: "Q", NextValue: 2},
		{Key: "invoice", Prefix: "INV", NextValue: 1},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, g := range []*domain.Group{&ksaGroup, &egyGroup} {
			if err := tx.Create(g).Error; err != nil {
				return err
			}
		}
		for _, u := range []*domain.User{&admin, &manager, &sales, &telesales, &pm, &finance} {
			if err := tx.Create(u).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(&leads).Error; err != nil {
			return err
		}
		if err := tx.Create(&account).Error; err != nil {
			return err
		}
		if err := tx.Create(&deals).Error; err != nil {
			return err
		}
		if err := tx.Create(&quote).Error; err != nil {
			return err
		}
		if err := tx.Create(&sequences).Error; err != nil {
			return err
		}
		return nil
	})
}
