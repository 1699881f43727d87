package service

import (
	"errors"
	"testing"
	"time"

	"github.com/visulab/backend/internal/domain"
	"github.com/visulab/backend/internal/security/auth"
)

type memUserRepo struct {
	byID    map[string]*domain.UserAccount
	byEmail map[string]*domain.UserAccount
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.UserAccount{}, byEmail: map[string]*domain.UserAccount{}}
}

func (m *memUserRepo) Create(u *domain.UserAccount) error {
	if u.ID == "" {
		u.ID = "u-" + u.Email
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}
func (m *memUserRepo) GetByID(id string) (*domain.UserAccount, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}
func (m *memUserRepo) GetByEmail(email string) (*domain.UserAccount, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}
func (m *memUserRepo) Update(u *domain.UserAccount) error {
	u.UpdatedAt = time.Now()
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}
func (m *memUserRepo) Delete(id string) error {
	if u, ok := m.byID[id]; ok {
		delete(m.byEmail, u.Email)
	}
	delete(m.byID, id)
	return nil
}
func (m *memUserRepo) List() ([]domain.UserAccount, error) {
	out := []domain.UserAccount{}
	for _, u := range m.byID {
		out = append(out, *u)
	}
	return out, nil
}
func (m *memUserRepo) ListByCompany(companyID string) ([]domain.UserAccount, error) {
	out := []domain.UserAccount{}
	for _, u := range m.byID {
		if u.CompanyID == companyID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func newTestAuthService(repo domain.UserRepository) *AuthService {
	tm := auth.NewTokenManager("test-secret", "visulab")
	return NewAuthService(repo, tm, 15*time.Minute, "changeme123", nil)
}

func TestCreateUserAndLogin(t *testing.T) {
	repo := newMemUserRepo()
	s := newTestAuthService(repo)

	u, err := s.CreateUser(CreateUserInput{
		Email:     "alice@example.com",
		FullName:  "Alice",
		Role:      domain.RoleUser,
		CompanyID: "company-1",
		Password:  "Password123",
	})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if u.ID == "" || u.PasswordHash == "Password123" {
		t.Fatalf("expected id and hashed password")
	}

	// Duplicate email
	if _, err := s.CreateUser(CreateUserInput{
		Email: "alice@example.com", FullName: "Alice 2", Role: domain.RoleUser, CompanyID: "company-1", Password: "Password123",
	}); err == nil {
		t.Fatalf("expected duplicate email error")
	}

	// Regular user requires a company
	if _, err := s.CreateUser(CreateUserInput{
		Email: "nocompany@example.com", FullName: "No Company", Role: domain.RoleUser, Password: "Password123",
	}); err == nil {
		t.Fatalf("expected missing company error")
	}

	lr, err := s.Login("alice@example.com", "Password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if lr.Token == "" || lr.CompanyID != "company-1" || lr.Role != domain.RoleUser {
		t.Fatalf("unexpected login result: %+v", lr)
	}

	if _, err := s.Login("alice@example.com", "Wrong"); err == nil {
		t.Fatalf("expected invalid credentials error")
	}
}

func TestCreateUserDefaultPassword(t *testing.T) {
	repo := newMemUserRepo()
	s := newTestAuthService(repo)

	_, err := s.CreateUser(CreateUserInput{
		Email: "bob@example.com", FullName: "Bob", Role: domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if _, err := s.Login("bob@example.com", "changeme123"); err != nil {
		t.Fatalf("login with default password failed: %v", err)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := newMemUserRepo()
	s := newTestAuthService(repo)

	u, err := s.CreateUser(CreateUserInput{
		Email: "carol@example.com", FullName: "Carol", Role: domain.RoleUser, CompanyID: "company-1", Password: "Password123",
	})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	inactive := false
	if _, err := s.UpdateUser(u.ID, UpdateUserInput{Active: &inactive}); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if _, err := s.Login("carol@example.com", "Password123"); err == nil {
		t.Fatalf("expected inactive account to be rejected")
	}
}

func TestDeleteUserSelfGuard(t *testing.T) {
	repo := newMemUserRepo()
	s := newTestAuthService(repo)

	u, err := s.CreateUser(CreateUserInput{
		Email: "dave@example.com", FullName: "Dave", Role: domain.RoleAdmin, Password: "Password123",
	})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	if err := s.DeleteUser(u.ID, u.ID); err == nil {
		t.Fatalf("expected self-delete to be rejected")
	}
	if err := s.DeleteUser("someone-else", u.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.GetByID(u.ID); err == nil {
		t.Fatalf("expected user to be gone")
	}
}

func TestChangePassword(t *testing.T) {
	repo := newMemUserRepo()
	s := newTestAuthService(repo)

	u, err := s.CreateUser(CreateUserInput{
		Email: "eve@example.com", FullName: "Eve", Role: domain.RoleUser, CompanyID: "company-1", Password: "OldPass123",
	})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	// Wrong old password
	if err := s.ChangePassword(u.ID, "bad", "NewPass123"); err == nil {
		t.Fatalf("expected wrong old password error")
	}
	// Good change
	if err := s.ChangePassword(u.ID, "OldPass123", "NewPass123"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	// Old password should no longer work
	if _, err := s.Login("eve@example.com", "OldPass123"); err == nil {
		t.Fatalf("expected old password to fail after change")
	}
	// New password works
	if _, err := s.Login("eve@example.com", "NewPass123"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}
