package domain

// Role constants define the allowed user roles.
const (
	RoleSuperAdmin     = "super-admin"
	RoleAdmin          = "admin"
	RoleProjectManager = "project-manager"
	RoleTeamLead       = "team-lead"
	RoleTeamMember     = "team-member"
)

// ValidRoles returns the set of valid user roles.
func ValidRoles() []string {
	return []string{RoleSuperAdmin, RoleAdmin, RoleProjectManager, RoleTeamLead, RoleTeamMember}
}

// IsValidRole checks whether the given role string is a valid user role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if r == role {
			return true
		}
	}
	return false
}
