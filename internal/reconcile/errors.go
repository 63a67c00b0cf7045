package reconcile

// errors.go maps technical errors to user-facing messages.
//
// Technical errors are matched case-insensitively against known patterns and
// turned into a message, a suggested action and a code support staff can look
// up. Codes are grouped by category:
//
//	RUN001-RUN099   run requests and the run limiter
//	FEED001-FEED099 uploaded feed files
//	REF001-REF099   reference data (periodic set, vendor directory)
//	DB001-DB099     run persistence
//	RATE001         request throttling
//	ERR000          fallback; check the logs for the technical error
//
// The first matching pattern wins, so specific patterns come first.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Run requests
	{
		pattern: "too many concurrent runs",
		msg: UserMessage{
			Message: "The system is busy with other runs",
			Action:  "Please wait a moment and try again",
			Code:    "RUN001",
		},
	},
	{
		pattern: "base channel not loaded",
		msg: UserMessage{
			Message: "The base channel has no usable file",
			Action:  "Upload a valid file for the base channel or pick another base",
			Code:    "RUN002",
		},
	},
	{
		pattern: "invalid run request",
		msg: UserMessage{
			Message: "The run request is incomplete or invalid",
			Action:  "Check the base channel, the date (YYYYMMDD) and the uploaded files",
			Code:    "RUN003",
		},
	},
	{
		pattern: "run not found",
		msg: UserMessage{
			Message: "The run does not exist",
			Action:  "It may have expired. Start a new run",
			Code:    "RUN004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The run timed out",
			Action:  "Try again with fewer or smaller files",
			Code:    "RUN005",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The run was cancelled",
			Action:  "Please try again",
			Code:    "RUN006",
		},
	},

	// Feed files
	{
		pattern: "cannot determine channel from file name",
		msg: UserMessage{
			Message: "A file name does not name a channel",
			Action:  "Include the channel name (for example 楽天 or チョイス) in the file name",
			Code:    "FEED001",
		},
	},
	{
		pattern: "more than one file for the same channel",
		msg: UserMessage{
			Message: "Two files were uploaded for the same channel",
			Action:  "Upload one file per channel",
			Code:    "FEED002",
		},
	},
	{
		pattern: "paired feeds must be uploaded together",
		msg: UserMessage{
			Message: "A listing file is missing its stock file",
			Action:  "Upload the listing and stock files of the channel together",
			Code:    "FEED003",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "The file type is not supported",
			Action:  "Upload CSV, TSV, TXT or XLSX files",
			Code:    "FEED004",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "A file exceeds the maximum size",
			Action:  "Export a smaller file",
			Code:    "FEED005",
		},
	},
	{
		pattern: "missing required columns",
		msg: UserMessage{
			Message: "A file lacks required columns",
			Action:  "Export the file again with all required columns checked",
			Code:    "FEED006",
		},
	},

	// Reference data
	{
		pattern: "reference sheet is missing a column",
		msg: UserMessage{
			Message: "The reference spreadsheet has an unexpected layout",
			Action:  "Check the headers of 定期便DB and 事業者DB",
			Code:    "REF001",
		},
	},
	{
		pattern: "load reference data",
		msg: UserMessage{
			Message: "Reference data could not be loaded",
			Action:  "Please try again in a few moments",
			Code:    "REF002",
		},
	},

	// Persistence
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "save run",
		msg: UserMessage{
			Message: "The run result could not be saved",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. If no
// pattern matches, the ERR000 fallback is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a specific pattern rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message. Error returns
// the user message; Unwrap returns the technical error for logging.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
