package utils

// contains checks if a slice of strings contains an element.
func contains(slice []string, item string) bool {
	for _, a := range slice {
		if a == item {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether any of the member's roles is in the allowed
// set. This is the authorization predicate behind direct bans and managing
// other people's records.
func HasAnyRole(memberRoleIDs, allowedRoleIDs []string) bool {
	for _, roleID := range memberRoleIDs {
		if contains(allowedRoleIDs, roleID) {
			return true
		}
	}
	return false
}
