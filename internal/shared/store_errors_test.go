package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestIsTransientStoreError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("no such table: users"), false},
		{"busy text", errors.New("SQLITE_BUSY: cannot commit"), true},
		{"locked text", fmt.Errorf("query users: %w", errors.New("database is locked (5)")), true},
		{"mysql deadlock", fmt.Errorf("query users: %w", &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}), true},
		{"mysql syntax", &mysql.MySQLError{Number: 1064, Message: "syntax"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransientStoreError(tt.err); got != tt.want {
				t.Errorf("IsTransientStoreError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
