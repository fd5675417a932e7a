package schema

import (
	"strconv"
	"strings"
)

// ValidateUserID ensures a user id matches [a-z0-9._-] with no normalization.
func ValidateUserID(userID UserID) error {
	raw := string(userID)
	if raw == "" {
		return ErrInvalidUser
	}
	if strings.TrimSpace(raw) != raw || raw == "." || raw == ".." {
		return ErrInvalidUser
	}
	for _, r := range raw {
		if r >= 'a' && r <= 'z' {
			continue
		}
		if r >= '0' && r <= '9' {
			continue
		}
		if r == '.' || r == '_' || r == '-' {
			continue
		}
		return ErrInvalidUser
	}
	return nil
}

// DefaultTabNameFor returns the untitled name for a tab id.
func DefaultTabNameFor(id TabID) TabName {
	if id == 1 {
		return DefaultTabName
	}
	return TabName(string(DefaultTabName) + "-" + strconv.Itoa(int(id)))
}

// ValidSaveDecision reports whether d is a known decision.
func ValidSaveDecision(d SaveDecision) bool {
	switch d {
	case DecisionSave, DecisionDontSave, DecisionCancel:
		return true
	default:
		return false
	}
}
