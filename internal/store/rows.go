package store

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ashureev/taskpilot/internal/domain"
)

var _ Repository = (*SQLStore)(nil)

// userColumns is the positional layout of SELECT * FROM users.
var userColumns = []string{
	"id",
	"email",
	"username",
	"password_hash",
	"created_at",
	"updated_at",
	"is_active",
	"last_login_at",
}

// timeLayouts are the textual timestamp encodings accepted from the store.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

func checkUserColumns(columns []string) error {
	if len(columns) != len(userColumns) {
		return &domain.MalformedRowError{
			Reason: fmt.Sprintf("expected %d columns, got %d (%s)", len(userColumns), len(columns), strings.Join(columns, ", ")),
		}
	}
	for i, name := range columns {
		if !strings.EqualFold(name, userColumns[i]) {
			return &domain.MalformedRowError{
				Column: name,
				Reason: fmt.Sprintf("expected column %q at position %d", userColumns[i], i+1),
			}
		}
	}
	return nil
}

// decodeUserRow validates one positional row. Any value that does not fit its
// column's type yields a MalformedRowError instead of a silent coercion.
func decodeUserRow(rowNum int, values []any) (domain.UserRecord, error) {
	var (
		user domain.UserRecord
		err  error
	)
	fail := func(col int, reason string) error {
		return &domain.MalformedRowError{Row: rowNum, Column: userColumns[col], Reason: reason}
	}

	if user.ID, err = asInt64(values[0]); err != nil {
		return user, fail(0, err.Error())
	}
	if user.Email, err = asString(values[1]); err != nil {
		return user, fail(1, err.Error())
	}
	if user.Username, err = asString(values[2]); err != nil {
		return user, fail(2, err.Error())
	}
	if user.PasswordHash, err = asString(values[3]); err != nil {
		return user, fail(3, err.Error())
	}
	if user.CreatedAt, err = asTime(values[4]); err != nil {
		return user, fail(4, err.Error())
	}
	if user.UpdatedAt, err = asTime(values[5]); err != nil {
		return user, fail(5, err.Error())
	}
	active, err := asInt64(values[6])
	if err != nil {
		return user, fail(6, err.Error())
	}
	user.IsActive = active != 0
	if values[7] != nil {
		lastLogin, err := asTime(values[7])
		if err != nil {
			return user, fail(7, err.Error())
		}
		user.LastLoginAt = &lastLogin
	}

	return user, nil
}

func asInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case int:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d out of range", x)
		}
		return int64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("expected integer, got %v", x)
		}
		return int64(x), nil
	case []byte:
		return parseInt(string(x))
	case string:
		return parseInt(x)
	case nil:
		return 0, fmt.Errorf("unexpected NULL")
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func parseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("expected integer, got %q", s)
	}
	return n, nil
}

func asString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case nil:
		return "", fmt.Errorf("unexpected NULL")
	default:
		return "", fmt.Errorf("expected text, got %T", v)
	}
}

func asTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		return parseTime(x)
	case []byte:
		return parseTime(string(x))
	case nil:
		return time.Time{}, fmt.Errorf("unexpected NULL")
	default:
		return time.Time{}, fmt.Errorf("expected timestamp, got %T", v)
	}
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
