package enums

import "fmt"

// AttendanceStatus tracks a salesperson's daily attendance record.
type AttendanceStatus string

const (
	AttendanceStatusLoggedIn   AttendanceStatus = "LOGGED_IN"
	AttendanceStatusLoggedOut  AttendanceStatus = "LOGGED_OUT"
	AttendanceStatusIncomplete AttendanceStatus = "INCOMPLETE"
)

var validAttendanceStatuses = []AttendanceStatus{
	AttendanceStatusLoggedIn,
	AttendanceStatusLoggedOut,
	AttendanceStatusIncomplete,
}

// String implements fmt.Stringer.
func (a AttendanceStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AttendanceStatus.
func (a AttendanceStatus) IsValid() bool {
	for _, candidate := range validAttendanceStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAttendanceStatus converts raw input into an AttendanceStatus.
func ParseAttendanceStatus(value string) (AttendanceStatus, error) {
	for _, candidate := range validAttendanceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid attendance status %q", value)
}
