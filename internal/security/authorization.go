package security

import (
	"fmt"
	"log/slog"
)

// Role represents a user role
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Permission represents an action permission
type Permission string

const (
	PermCreateRecord     Permission = "create_record"
	PermListRecords      Permission = "list_records"
	PermEditRecord       Permission = "edit_record"
	PermDeleteRecord     Permission = "delete_record"
	PermViewDashboard    Permission = "view_dashboard"
	PermGenerateReport   Permission = "generate_report"
	PermManageUsers      Permission = "manage_users"
	PermManageCompanies  Permission = "manage_companies"
	PermManagePurchases  Permission = "manage_purchases"
	PermViewAllCompanies Permission = "view_all_companies"
)

// RolePermissions maps roles to their permissions. Admins see every
// tenant; regular users operate inside their own company only.
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermCreateRecord,
		PermListRecords,
		PermEditRecord,
		PermDeleteRecord,
		PermViewDashboard,
		PermGenerateReport,
		PermManageUsers,
		PermManageCompanies,
		PermManagePurchases,
		PermViewAllCompanies,
	},
	RoleUser: {
		PermCreateRecord,
		PermListRecords,
		PermViewDashboard,
		PermGenerateReport,
	},
}

// AuthorizationService handles authorization checks
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{
		logger: logger,
	}
}

// HasPermission checks if a role has a specific permission
func (as *AuthorizationService) HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// ValidatePermission validates that a role has a specific permission
func (as *AuthorizationService) ValidatePermission(role Role, permission Permission) error {
	if !as.HasPermission(role, permission) {
		as.logger.Warn("permission denied",
			slog.String("role", string(role)),
			slog.String("permission", string(permission)),
		)
		return fmt.Errorf("permission denied: %s role cannot %s", role, permission)
	}
	return nil
}

// GetRolePermissions returns all permissions for a role
func (as *AuthorizationService) GetRolePermissions(role Role) []Permission {
	return RolePermissions[role]
}

// ValidateTenantAccess checks if a user may read a company's data.
// Admins pass for any tenant.
func (as *AuthorizationService) ValidateTenantAccess(role Role, userTenantID, requestedTenantID string) error {
	if role == RoleAdmin {
		return nil
	}
	if userTenantID != requestedTenantID {
		as.logger.Warn("tenant access denied",
			slog.String("user_tenant", userTenantID),
			slog.String("requested_tenant", requestedTenantID),
		)
		return fmt.Errorf("access denied: invalid tenant")
	}
	return nil
}
