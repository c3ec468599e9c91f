// Package testutil provides shared database fixtures for service and
// repository tests. Tests run against an in-memory SQLite database so they
// need no external services.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/saqrcrm/sales-api/internal/database"
	"github.com/saqrcrm/sales-api/internal/domain"
)

var emailSeq atomic.Int64

// SetupTestDB opens a fresh in-memory database with the full schema. Each
// call returns an isolated database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	// One connection keeps the memory database alive for the whole test
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// UniqueEmail returns an address that is unique within the test binary
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@test.local", prefix, emailSeq.Add(1))
}

// CreateTestUser inserts a user with a throwaway password hash
func CreateTestUser(t *testing.T, db *gorm.DB, name string, role domain.UserRole, scope domain.Scope) *domain.User {
	t.Helper()

	user := &domain.User{
		Name:         name,
		Email:        UniqueEmail("user"),
		PasswordHash: "$2a$04$notarealhashnotarealhashnotarealhashnotareal",
		Role:         role,
		Scope:        scope,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestGroup inserts a group
func CreateTestGroup(t *testing.T, db *gorm.DB, name string, scope domain.Scope) *domain.Group {
	t.Helper()

	group := &domain.Group{Name: name, Scope: scope}
	require.NoError(t, db.Create(group).Error)
	return group
}

// CreateTestLead inserts a lead owned by the given user
func CreateTestLead(t *testing.T, db *gorm.DB, owner *domain.User, status domain.LeadStatus) *domain.Lead {
	t.Helper()

	lead := &domain.Lead{
		CompanyName:    "Test Company",
		ContactPerson:  "Test Contact",
		Email:          UniqueEmail("lead"),
		Source:         domain.LeadSourceOther,
		Status:         status,
		OwnerID:        owner.ID,
		OwnerName:      owner.Name,
		Scope:          owner.Scope,
		LastActivityAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(lead).Error)
	return lead
}

// CreateTestDeal inserts a deal owned by the given user
func CreateTestDeal(t *testing.T, db *gorm.DB, owner *domain.User, status domain.DealStatus) *domain.Deal {
	t.Helper()

	deal := &domain.Deal{
		Title:       "Test Deal",
		CompanyName: "Test Company",
		Value:       10000,
		Status:      status,
		Source:      domain.LeadSourceOther,
		Services:    pq.StringArray{"web_development"},
		OwnerID:     owner.ID,
		OwnerName:   owner.Name,
		Scope:       owner.Scope,
	}
	require.NoError(t, db.Create(deal).Error)
	return deal
}

// CreateTestProject inserts a project, optionally linked to a deal
func CreateTestProject(t *testing.T, db *gorm.DB, status domain.ProjectStatus, dealID *uuid.UUID) *domain.Project {
	t.Helper()

	project := &domain.Project{
		Name:        "Test Project",
		ClientName:  "Test Client",
		DealID:      dealID,
		Status:      status,
		ProjectType: domain.ProjectTypeGeneral,
		StartDate:   time.Now().UTC(),
		Scope:       domain.ScopeAll,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

// CreateTestInvoice inserts an invoice owned by the given user
func CreateTestInvoice(t *testing.T, db *gorm.DB, owner *domain.User, status domain.InvoiceStatus) *domain.Invoice {
	t.Helper()

	invoice := &domain.Invoice{
		InvoiceNumber: fmt.Sprintf("INV-T%06d", emailSeq.Add(1)),
		ClientName:    "Test Client",
		Amount:        5000,
		Status:        status,
		IssueDate:     time.Now().UTC(),
		OwnerID:       owner.ID,
		Scope:         owner.Scope,
	}
	require.NoError(t, db.Create(invoice).Error)
	return invoice
}

// ActorFor builds the permission actor for a user
func ActorFor(user *domain.User) domain.Actor {
	return domain.Actor{
		ID:      user.ID,
		Role:    user.Role,
		Scope:   user.Scope,
		GroupID: user.GroupID,
	}
}
