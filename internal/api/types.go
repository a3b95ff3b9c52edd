package api

// Backend-owned records. The client treats these as immutable values for
// the lifetime of a view; a full re-fetch is the only reconciliation
// strategy after any mutation.

// User is a member record as the backend reports it.
type User struct {
	ID                int    `json:"id"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	Role              string `json:"role"`
	ClassName         string `json:"class_name,omitempty"`
	CanMarkAttendance bool   `json:"can_mark_attendance"`
	MustChangePass    bool   `json:"must_change_password"`
	PicID             *int   `json:"pic_id"`
	PicName           string `json:"pic_name,omitempty"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

// PicRef is the short PIC form embedded in session and PIC listings.
type PicRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Session is a scheduled meeting or event (distinct from the auth
// session). Once IsLocked is true the backend refuses attendance
// mutations; the client treats the lock as terminal.
type Session struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Date            string   `json:"date"`
	IsLocked        bool     `json:"is_locked"`
	SessionType     string   `json:"session_type"`
	Description     string   `json:"description,omitempty"`
	CreatedAt       string   `json:"created_at,omitempty"`
	AssignedPics    []PicRef `json:"assigned_pics"`
	AttendanceCount int      `json:"attendance_count"`
}

// Session types accepted by the backend.
const (
	SessionTypeAll   = "all"
	SessionTypeCore  = "core"
	SessionTypeEvent = "event"
)

// Attendance statuses accepted by the marking endpoints.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusExcused = "excused"
	StatusLate    = "late"
)

// Attendance is one (session, user) mark. The backend enforces at most
// one record per pair; a second mark surfaces as a conflict.
type Attendance struct {
	ID             int    `json:"id"`
	SessionID      int    `json:"session_id"`
	SessionName    string `json:"session_name,omitempty"`
	SessionDate    string `json:"session_date,omitempty"`
	UserID         int    `json:"user_id"`
	Status         string `json:"status"`
	AttendanceType string `json:"attendance_type"`
	Timestamp      string `json:"timestamp,omitempty"`
}

// AttendanceSummary aggregates a history listing.
type AttendanceSummary struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Excused int `json:"excused"`
	Late    int `json:"late"`
	Total   int `json:"total"`
}

// Pic is a division a member can be assigned to. Deleting one detaches
// all member assignments.
type Pic struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
	MemberCount int      `json:"member_count"`
	Members     []PicRef `json:"members"`
}

// Notulensi is the meeting-minutes document for one session. At most one
// exists per session; edit permission is backend-supplied, never derived
// client-side.
type Notulensi struct {
	ID          int    `json:"id"`
	SessionID   int    `json:"session_id"`
	SessionName string `json:"session_name,omitempty"`
	SessionDate string `json:"session_date,omitempty"`
	Content     string `json:"content"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// NotulensiListItem pairs a session with its minutes document, if any.
type NotulensiListItem struct {
	SessionID    int        `json:"session_id"`
	SessionName  string     `json:"session_name"`
	SessionDate  string     `json:"session_date"`
	HasNotulensi bool       `json:"has_notulensi"`
	Notulensi    *Notulensi `json:"notulensi"`
}

// PiketAssignment is one member on a duty day.
type PiketAssignment struct {
	UserID        int    `json:"user_id"`
	Name          string `json:"name"`
	ClassName     string `json:"class_name,omitempty"`
	Email         string `json:"email"`
	IsCurrentUser bool   `json:"is_current_user"`
}

// PiketDay is one day of the weekly duty roster. Updating a day replaces
// its full assignment set.
type PiketDay struct {
	DayOfWeek   int               `json:"day_of_week"`
	DayName     string            `json:"day_name"`
	IsToday     bool              `json:"is_today"`
	Assignments []PiketAssignment `json:"assignments"`
	UpdatedAt   string            `json:"updated_at,omitempty"`
}

// EmailLog is one entry of the read-only reminder audit trail.
type EmailLog struct {
	ID              int      `json:"id"`
	DayOfWeek       int      `json:"day_of_week"`
	DayName         string   `json:"day_name"`
	RecipientsCount int      `json:"recipients_count"`
	Recipients      []string `json:"recipients"`
	SentAt          string   `json:"sent_at,omitempty"`
	Status          string   `json:"status"`
	ErrorMessage    string   `json:"error_message,omitempty"`
}

// FeedUpcoming is an upcoming session on the dashboard feed.
type FeedUpcoming struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
	Pic  string `json:"pic"`
}

// FeedRecent is a recently updated minutes document on the feed.
type FeedRecent struct {
	ID          int    `json:"id"`
	SessionName string `json:"session_name"`
	SessionDate string `json:"session_date"`
	Summary     string `json:"summary"`
	UpdatedAt   string `json:"updated_at"`
}

// CalendarEvent is one calendar entry: a ROHIS session or an Islamic
// holiday, optionally labeled with its Hijri date.
type CalendarEvent struct {
	Title         string             `json:"title"`
	Start         string             `json:"start"`
	AllDay        bool               `json:"allDay,omitempty"`
	ExtendedProps CalendarEventProps `json:"extendedProps"`
}

// CalendarEventProps carries the event type and optional Hijri label.
type CalendarEventProps struct {
	Type      string `json:"type"`
	SessionID int    `json:"session_id,omitempty"`
	Hijri     string `json:"hijri,omitempty"`
}

// Calendar event types.
const (
	CalendarTypeSession = "rohis_session"
	CalendarTypeHoliday = "islamic_holiday"
)

// ChatReply is the assistant's answer to a chat message. When Action is
// ChatActionNavigate, Route names the view the client should switch to.
type ChatReply struct {
	Action  string `json:"action"`
	Message string `json:"message"`
	Route   string `json:"route,omitempty"`
}

// ChatActionNavigate instructs the client to change the current view.
const ChatActionNavigate = "navigate"
