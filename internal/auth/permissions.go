package auth

import (
	"slices"
	"strings"
)

const (
	RoleAdmin = "admin"
	RoleHR    = "hr"
	RoleStaff = "staff"
)

const (
	PermRecordsRead      = "records.read"
	PermRecordsWrite     = "records.write"
	PermCredentialsRead  = "credentials.read"
	PermCredentialsWrite = "credentials.write"
	PermTasksWrite       = "tasks.write"
	PermReportsRead      = "reports.read"
	PermAuditRead        = "audit.read"
	PermJobsRun          = "jobs.run"
)

var RolePermissions = map[string][]string{
	RoleStaff: {
		PermRecordsRead,
		PermTasksWrite,
	},
	RoleHR: {
		PermRecordsRead,
		PermRecordsWrite,
		PermCredentialsRead,
		PermCredentialsWrite,
		PermTasksWrite,
		PermReportsRead,
	},
	RoleAdmin: {
		PermRecordsRead,
		PermRecordsWrite,
		PermCredentialsRead,
		PermCredentialsWrite,
		PermTasksWrite,
		PermReportsRead,
		PermAuditRead,
		PermJobsRun,
	},
}

func NormalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

func KnownRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}

func HasPermission(role, permission string) bool {
	return slices.Contains(RolePermissions[NormalizeRole(role)], permission)
}
