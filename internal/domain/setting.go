package domain

// Setting is a persisted key-value configuration entry. Absence of a key is a
// valid state and is interpreted per key (feature disabled, type default).
type Setting struct {
	Key   string
	Value string
}

// Notification setting keys. Boolean settings are truthy only when the stored
// value is exactly "true".
const (
	SettingEmailNewTicket      = "email_new_ticket"
	SettingEmailStatusChange   = "email_status_change"
	SettingEmailAdminAddress   = "email_admin_address"
	SettingEmailOldTickets     = "email_admin_old_tickets"
	SettingEmailOldTicketsDays = "email_admin_old_tickets_days"
)

// DefaultOldTicketsDays is the stale-ticket threshold used when
// email_admin_old_tickets_days is absent or unparsable.
const DefaultOldTicketsDays = 7
