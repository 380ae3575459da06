package dataserver

import "fmt"

// toolError is the {code, message} pair every failed tool call returns,
// drawn from the closed error-code taxonomy.
type toolError struct {
	Code    string
	Message string
}

func (e *toolError) Error() string { return e.Message }

func newError(code, format string, args ...any) *toolError {
	return &toolError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Closed error-code taxonomy.
const (
	CodeAthleteNotFound     = "ATHLETE_NOT_FOUND"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeDBError             = "DB_ERROR"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInvalidLimit        = "INVALID_LIMIT"
	CodeInvalidDays         = "INVALID_DAYS"
	CodeInvalidSessionData  = "INVALID_SESSION_DATA"
	CodeInvalidDateFormat   = "INVALID_DATE_FORMAT"
	CodeInvalidWorkoutDesc  = "INVALID_WORKOUT_DESCRIPTION"
	CodeMissingRaceInfo     = "MISSING_RACE_INFO"
	CodeInvalidRaceDate     = "INVALID_RACE_DATE"
	CodeMissingSeasonInfo   = "MISSING_SEASON_INFO"
	CodeInvalidSeasonDates  = "INVALID_SEASON_DATES"
	CodeInvalidMessage      = "INVALID_MESSAGE"
	CodeUnknownTool         = "INVALID_INPUT"
)
