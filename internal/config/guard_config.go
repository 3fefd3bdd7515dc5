package config

const (
	loginPathVar        = "LOGIN_PATH"
	defaultPageVar      = "DEFAULT_PAGE"
	permissionBypassVar = "PERMISSION_BYPASS"
	guardBypassVar      = "GUARD_BYPASS"
)

type Guard struct{}

var _ GuardConfig = Guard{}

func (Guard) GetLoginPath() string {
	return GetEnv(loginPathVar, "/login")
}

// GetDefaultPage returns the page permitted as a fallback when the menu map
// is missing or empty.
func (Guard) GetDefaultPage() string {
	return GetEnv(defaultPageVar, "/dashboard")
}

// GetPermissionBypass reports whether permission checks are short-circuited.
// Only honoured outside production.
func (g Guard) GetPermissionBypass() bool {
	return EnvVars{}.GetEnv() != "PROD" && GetEnv(permissionBypassVar, "") == "true"
}

// GetGuardBypass reports whether the authorization guard skips straight to
// Authorized. Only honoured outside production.
func (g Guard) GetGuardBypass() bool {
	return EnvVars{}.GetEnv() != "PROD" && GetEnv(guardBypassVar, "") == "true"
}
