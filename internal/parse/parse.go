// Package parse turns console command lines into alarm records.
//
// The grammar is six fixed, case-sensitive forms:
//
//	Start_Alarm(<id>): Group(<gid>) <interval> <time> <message>
//	Change_Alarm(<id>): Group(<gid>) <time> <message>
//	Cancel_Alarm(<id>)
//	Suspend_Alarm(<id>)
//	Reactivate_Alarm(<id>)
//	View_Alarms
//
// All integer fields must be strictly positive. Messages are trimmed of
// surrounding whitespace and capped at 127 bytes.
package parse

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	domain "github.com/oshokin/alarm-console/internal/domain/alarm"
)

var (
	// ErrInvalidParameters is returned when an id, group, interval, or
	// time field is zero or out of range.
	ErrInvalidParameters = errors.New("Invalid parameters (IDs, interval, or time must be positive)")
	// ErrUnrecognized is returned when the line matches no command form.
	ErrUnrecognized = errors.New("Unrecognized command format")
)

var (
	startRe      = regexp.MustCompile(`^Start_Alarm\((\d+)\): Group\((\d+)\) (\d+) (\d+)(?: (.*))?$`)
	changeRe     = regexp.MustCompile(`^Change_Alarm\((\d+)\): Group\((\d+)\) (\d+)(?: (.*))?$`)
	cancelRe     = regexp.MustCompile(`^Cancel_Alarm\((\d+)\)$`)
	suspendRe    = regexp.MustCompile(`^Suspend_Alarm\((\d+)\)$`)
	reactivateRe = regexp.MustCompile(`^Reactivate_Alarm\((\d+)\)$`)
)

// Command parses line into a fresh alarm record stamped with now.
// Start and Change records get their Expiry computed from the time field.
func Command(line string, now time.Time) (*domain.Alarm, error) {
	line = strings.TrimSpace(line)

	if m := startRe.FindStringSubmatch(line); m != nil {
		id, gid, interval, seconds, err := positiveFields(m[1], m[2], m[3], m[4])
		if err != nil {
			return nil, err
		}

		return &domain.Alarm{
			Kind:      domain.KindStart,
			Status:    domain.StatusActive,
			Timestamp: now,
			Expiry:    now.Add(time.Duration(seconds) * time.Second),
			Seconds:   seconds,
			Interval:  interval,
			ID:        id,
			GroupID:   gid,
			Message:   trimMessage(m[5]),
		}, nil
	}

	if m := changeRe.FindStringSubmatch(line); m != nil {
		id, gid, _, seconds, err := positiveFields(m[1], m[2], "1", m[3])
		if err != nil {
			return nil, err
		}

		return &domain.Alarm{
			Kind:      domain.KindChange,
			Status:    domain.StatusActive,
			Timestamp: now,
			Expiry:    now.Add(time.Duration(seconds) * time.Second),
			Seconds:   seconds,
			ID:        id,
			GroupID:   gid,
			Message:   trimMessage(m[4]),
		}, nil
	}

	if m := cancelRe.FindStringSubmatch(line); m != nil {
		return requestRecord(domain.KindCancel, m[1], now)
	}

	if m := suspendRe.FindStringSubmatch(line); m != nil {
		return requestRecord(domain.KindSuspend, m[1], now)
	}

	if m := reactivateRe.FindStringSubmatch(line); m != nil {
		return requestRecord(domain.KindReactivate, m[1], now)
	}

	if line == "View_Alarms" {
		return &domain.Alarm{
			Kind:      domain.KindView,
			Timestamp: now,
		}, nil
	}

	return nil, ErrUnrecognized
}

// requestRecord builds an id-only request record (Cancel/Suspend/Reactivate).
func requestRecord(kind domain.Kind, rawID string, now time.Time) (*domain.Alarm, error) {
	id, err := positiveInt(rawID)
	if err != nil {
		return nil, err
	}

	return &domain.Alarm{
		Kind:      kind,
		Timestamp: now,
		ID:        id,
	}, nil
}

// positiveFields parses the four numeric fields shared by Start/Change.
func positiveFields(rawID, rawGID, rawInterval, rawSeconds string) (id, gid int, interval, seconds int64, err error) {
	if id, err = positiveInt(rawID); err != nil {
		return 0, 0, 0, 0, err
	}

	if gid, err = positiveInt(rawGID); err != nil {
		return 0, 0, 0, 0, err
	}

	if interval, err = positiveInt64(rawInterval); err != nil {
		return 0, 0, 0, 0, err
	}

	if seconds, err = positiveInt64(rawSeconds); err != nil {
		return 0, 0, 0, 0, err
	}

	return id, gid, interval, seconds, nil
}

func positiveInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, ErrInvalidParameters
	}

	return v, nil
}

func positiveInt64(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, ErrInvalidParameters
	}

	return v, nil
}

// trimMessage trims surrounding whitespace and caps the payload at
// MaxMessageBytes bytes.
func trimMessage(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > domain.MaxMessageBytes {
		s = s[:domain.MaxMessageBytes]
	}

	return s
}
