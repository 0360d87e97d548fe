package utils

import (
	"net/http"

	"gatepass/globals"
)

func GetUserIDFromRequest(r *http.Request) string {
	ctx := r.Context()
	requestingUserID, ok := ctx.Value(globals.UserIDKey).(string)
	if !ok || requestingUserID == "" {
		return ""
	}
	return requestingUserID
}

func GetRolesFromRequest(r *http.Request) []string {
	roles, ok := r.Context().Value(globals.RoleKey).([]string)
	if !ok {
		return nil
	}
	return roles
}

// IsAdminRequest reports whether the caller carries the elevated role
// that gates destructive operations and PII visibility.
func IsAdminRequest(r *http.Request) bool {
	for _, role := range GetRolesFromRequest(r) {
		if role == "admin" || role == "organizer" {
			return true
		}
	}
	return false
}
