package core

// User-facing error codes. Quote the code to support staff; ERR000 means
// the technical error is only in the server log.
//
// Lists and columns (LST, COL):
//
//	LST001 - List, column, view or item not found    ("not found")
//	COL001 - Unknown column type                     ("unknown column type")
//	COL002 - Duplicate column name in an import      ("duplicate column")
//
// Values (VAL):
//
//	VAL001 - Value cannot be converted to a number   ("invalid number")
//	VAL002 - Required column left empty              ("required field")
//
// Files (FILE):
//
//	FILE001 - Upload exceeds the size limit          ("file too large")
//	FILE002 - Not parseable as CSV                   ("invalid csv")
//	FILE003 - Upload contains no rows                ("csv file is empty")
//	FILE004 - Upload is not a .csv file              ("only csv files")
//	FILE005 - Multipart form missing the file        ("no file provided")
//
// Imports (IMP):
//
//	IMP001 - All import slots busy                   ("too many imports")
//	IMP002 - Request cancelled                       ("context canceled")
//	IMP003 - Request timed out                       ("context deadline exceeded")
//
// Database (DB):
//
//	DB001 - Unique constraint violated               ("unique constraint", "duplicate key")
//	DB002 - Referenced row missing                   ("foreign key")
//	DB003 - Database unreachable                     ("connection refused")
//	DB004 - Database locked by another writer        ("database is locked")
//
// Rate limiting (RATE):
//
//	RATE001 - Too many requests                      ("rate limit")
//
// Patterns match case-insensitively with strings.Contains and the first
// match wins, so specific patterns precede general ones.

import (
	"fmt"
	"strings"
)

// UserMessage is an error rendered for people rather than logs.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Imports first: "too many imports" and the context errors can wrap
	// messages that would otherwise match a database pattern.
	{"too many imports", UserMessage{"The server is busy with other imports", "Wait a moment and try again", "IMP001"}},
	{"context canceled", UserMessage{"The request was cancelled", "Try again", "IMP002"}},
	{"context deadline exceeded", UserMessage{"The request took too long", "Try a smaller file or try again later", "IMP003"}},

	{"unknown column type", UserMessage{"That column type is not supported", "Pick one of the listed column types", "COL001"}},
	{"duplicate column", UserMessage{"Two columns share the same name", "Rename the columns so each is unique", "COL002"}},
	{"not found", UserMessage{"The requested record does not exist", "It may have been deleted; refresh and try again", "LST001"}},

	{"invalid number", UserMessage{"A value is not a valid number", "Use digits with an optional decimal point", "VAL001"}},
	{"required field", UserMessage{"A required column is empty", "Fill in every required column", "VAL002"}},

	{"file too large", UserMessage{"The file exceeds the upload size limit", "Split the file into smaller parts", "FILE001"}},
	{"invalid csv", UserMessage{"The file could not be read as CSV", "Check that the file is comma-separated with matching quotes", "FILE002"}},
	{"csv file is empty", UserMessage{"The uploaded file has no rows", "Upload a CSV file with data", "FILE003"}},
	{"only csv files", UserMessage{"Only CSV files are accepted", "Save the file with a .csv extension", "FILE004"}},
	{"no file provided", UserMessage{"No file was selected", "Choose a CSV file to upload", "FILE005"}},

	{"unique constraint", UserMessage{"A record with this value already exists", "Check for duplicates and try again", "DB001"}},
	{"duplicate key", UserMessage{"A record with this value already exists", "Check for duplicates and try again", "DB001"}},
	{"foreign key", UserMessage{"A referenced record does not exist", "Refresh the list and try again", "DB002"}},
	{"connection refused", UserMessage{"Unable to reach the database", "Try again in a few moments", "DB003"}},
	{"database is locked", UserMessage{"The database is busy", "Try again in a few moments", "DB004"}},

	{"rate limit", UserMessage{"Too many requests", "Wait a moment before trying again", "RATE001"}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts err to a user message. Unmatched errors map to ERR000;
// a nil error maps to the zero UserMessage.
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

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matched a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
