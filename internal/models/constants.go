package models

// Booking statuses persisted in the database. StatusConflict is intentionally
// never written to storage: it is a read-time annotation computed by the
// schedule package on top of the persisted status.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
	StatusConflict  = "conflict"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

// StatusLabels is the single status-to-label table shared by every consumer.
var StatusLabels = map[string]string{
	StatusPending:   "Pendente",
	StatusConfirmed: "Confirmado",
	StatusRejected:  "Recusado",
	StatusCancelled: "Cancelado",
	StatusConflict:  "Conflito",
}

const (
	BookingTypeInternal = "internal"
	BookingTypeExternal = "external"
)

const (
	PatternWeekly   = "weekly"
	PatternBiweekly = "biweekly"
	PatternMonthly  = "monthly"
)

const (
	RoleAdmin       = "admin"
	RoleManager     = "manager"
	RoleCoordinator = "coordinator"
	RoleInstructor  = "instructor"
	RoleAthlete     = "athlete"
	RoleExternal    = "external"
)

const (
	// OpeningHour and ClosingHour bound the facility operating range.
	// A booking may start at 8 at the earliest and must end by 22.
	OpeningHour = 8
	ClosingHour = 22

	// DefaultRecurrenceDays is the horizon applied when a recurring booking
	// has no explicit end date.
	DefaultRecurrenceDays = 60

	// SessionTTL matches the 30-day portal cookie expiry.
	SessionTTLSeconds = 30 * 24 * 60 * 60

	// WorkerQueueSize bounds the export worker task queue.
	WorkerQueueSize = 100

	// DefaultPageSize is used when list endpoints receive no per_page value.
	DefaultPageSize = 20

	// LoginRateLimit and LoginRateWindowSeconds throttle login attempts.
	LoginRateLimit         = 10
	LoginRateWindowSeconds = 60
)

// ApproverRoles can move a booking through its lifecycle and hard-delete it.
var ApproverRoles = map[string]bool{
	RoleAdmin:       true,
	RoleManager:     true,
	RoleCoordinator: true,
}
