package user

type Permission string

const (
	// Self service
	PermissionAttendanceRecord  Permission = "attendance.record"
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionLeaveCreate       Permission = "leave.create"
	PermissionLeaveViewOwn      Permission = "leave.view_own"
	PermissionOvertimeSubmit    Permission = "overtime.submit"

	// Administration
	PermissionScheduleManage     Permission = "schedule.manage"
	PermissionLeaveViewAll       Permission = "leave.view_all"
	PermissionLeaveApprove       Permission = "leave.approve"
	PermissionLeaveBalanceManage Permission = "leave.balance_manage"
	PermissionOvertimeReview     Permission = "overtime.review"
	PermissionReportsView        Permission = "reports.view"
	PermissionAbsenceSweep       Permission = "attendance.absence_sweep"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionAttendanceViewOwn,
		PermissionLeaveViewOwn,
		PermissionScheduleManage,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionLeaveBalanceManage,
		PermissionOvertimeReview,
		PermissionReportsView,
		PermissionAbsenceSweep,
	},
	RoleEmployee: {
		PermissionAttendanceRecord,
		PermissionAttendanceViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveViewOwn,
		PermissionOvertimeSubmit,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
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
