package session

import "strings"

// MatchPermission reports whether a granted permission string covers a
// requested one. Both are dot-segmented; a `*` in the granted string matches
// exactly one segment at that position, and every segment must align.
// `admin.*` therefore matches `admin.read` but not `admin.read.extra`.
func MatchPermission(granted, requested string) bool {
	if granted == "" || requested == "" {
		return false
	}
	grantedSegments := strings.Split(granted, ".")
	requestedSegments := strings.Split(requested, ".")
	if len(grantedSegments) != len(requestedSegments) {
		return false
	}
	for i, segment := range grantedSegments {
		if segment == "*" {
			continue
		}
		if segment != requestedSegments[i] {
			return false
		}
	}
	return true
}

// HasPermission evaluates the requested permission against the current
// user's permission list. In bypass mode (non-production, explicit opt-in)
// every check passes.
func (c *Controller) HasPermission(permission string) bool {
	if c.bypass != nil && c.bypass.GetPermissionBypass() {
		return true
	}

	c.mu.Lock()
	user := c.user
	c.mu.Unlock()
	if user == nil || len(user.Permissions) == 0 {
		return false
	}
	for _, granted := range user.Permissions {
		if MatchPermission(granted, permission) {
			return true
		}
	}
	return false
}
