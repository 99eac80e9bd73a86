package models

// Audit actions recorded for privileged operations.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionLogout         = "LOGOUT"
	AuditActionBlockSlot      = "BLOCK_SLOT"
	AuditActionUnblockSlot    = "UNBLOCK_SLOT"
	AuditActionCancelBooking  = "CANCEL_BOOKING"
	AuditActionUpdateSettings = "UPDATE_SETTINGS"
	AuditActionExportBookings = "EXPORT_BOOKINGS"
)
