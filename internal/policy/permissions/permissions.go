package permissions

import api "github.com/OvyFlash/telegram-bot-api"

// IsAdministrator reports whether the member may run admin-only commands:
// the chat creator or any administrator, regardless of individual rights.
func IsAdministrator(member *api.ChatMember) bool {
	if member == nil {
		return false
	}
	return member.IsCreator() || member.IsAdministrator()
}

// IsAllowlisted reports whether userID is in the configured admin allowlist.
func IsAllowlisted(admins map[int64]struct{}, userID int64) bool {
	_, ok := admins[userID]
	return ok
}
