package auth

const (
	PermManageAccounts   = "manage_accounts"
	PermViewAudit        = "view_audit"
	PermManageCandidates = "manage_candidates"
)

type PermissionDefinition struct {
	Codename    string
	Description string
}

// Permissions is the catalog seeded into storage and referenced by route guards.
func Permissions() []PermissionDefinition {
	return []PermissionDefinition{
		{Codename: PermManageAccounts, Description: "Create, update and delete manager accounts"},
		{Codename: PermViewAudit, Description: "Read the account audit log"},
		{Codename: PermManageCandidates, Description: "Create, update and delete recruitment candidates"},
	}
}

// DefaultGroups maps seeded group names to the permissions their members usually hold.
func DefaultGroups() map[string][]string {
	return map[string][]string{
		"administrators": {PermManageAccounts, PermViewAudit, PermManageCandidates},
		"recruiters":     {PermManageCandidates},
		"auditors":       {PermViewAudit},
	}
}

type PermissionChecker interface {
	HasPermission(userPermissions []string, permission string) bool
	HasAnyPermission(userPermissions []string, requiredPermissions []string) bool
}

type DefaultPermissionChecker struct{}

func NewPermissionChecker() PermissionChecker {
	return &DefaultPermissionChecker{}
}

func (c *DefaultPermissionChecker) HasPermission(userPermissions []string, permission string) bool {
	return c.HasAnyPermission(userPermissions, []string{permission})
}

func (c *DefaultPermissionChecker) HasAnyPermission(userPermissions []string, requiredPermissions []string) bool {
	for _, userPerm := range userPermissions {
		for _, requiredPerm := range requiredPermissions {
			if userPerm == requiredPerm {
				return true
			}
		}
	}
	return false
}
