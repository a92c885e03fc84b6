package models

import (
	"errors"
	"fmt"
	"strings"
)

type Status string

const (
	StatusSubmitted  Status = "SUBMITTED"
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusRejected   Status = "REJECTED"
)

var AllStatuses = []Status{StatusSubmitted, StatusPending, StatusInProgress, StatusResolved, StatusRejected}

// ExportStatuses are the statuses allowed in geographic exports.
var ExportStatuses = []Status{StatusPending, StatusInProgress, StatusResolved}

// PublicMapStatuses are the statuses shown on the citizen map.
var PublicMapStatuses = []Status{StatusSubmitted, StatusPending, StatusInProgress, StatusResolved}

var ErrInvalidTransition = errors.New("invalid status transition")

var transitions = map[Status][]Status{
	StatusSubmitted:  {StatusPending, StatusRejected},
	StatusPending:    {StatusInProgress, StatusRejected, StatusResolved},
	StatusInProgress: {StatusResolved, StatusPending, StatusRejected},
	StatusResolved:   {StatusInProgress},
	StatusRejected:   {StatusPending},
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllStatuses {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// CheckTransition returns an error wrapping ErrInvalidTransition unless the
// lifecycle allows moving from one status to the other.
func CheckTransition(from, to Status) error {
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// ContainsStatus reports whether st is one of statuses.
func ContainsStatus(statuses []Status, st Status) bool {
	for _, s := range statuses {
		if s == st {
			return true
		}
	}
	return false
}
