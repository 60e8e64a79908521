package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "dial timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestPostgreSQLErrorClassifier_IsTransient(t *testing.T) {
	c := NewPostgreSQLErrorClassifier()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection failure 08006", &pgconn.PgError{Code: "08006"}, true},
		{"cannot connect now 57P03", &pgconn.PgError{Code: "57P03"}, true},
		{"too many connections 53300", &pgconn.PgError{Code: "53300"}, true},
		{"deadlock 40P01", &pgconn.PgError{Code: "40P01"}, true},
		{"lock not available 55P03", &pgconn.PgError{Code: "55P03"}, true},
		{"bad password 28P01", &pgconn.PgError{Code: "28P01", Message: "password authentication failed"}, false},
		{"unknown database 3D000", &pgconn.PgError{Code: "3D000"}, false},
		{"syntax error 42601", &pgconn.PgError{Code: "42601"}, false},
		{"wrapped pg error", fmt.Errorf("connect: %w", &pgconn.PgError{Code: "08001"}), true},
		{"refused errno", &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, true},
		{"reset errno", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"net timeout", &net.OpError{Op: "dial", Err: timeoutErr{}}, true},
		{"temporary dns", &net.DNSError{Err: "server misbehaving", IsTemporary: true}, true},
		{"unknown host", &net.DNSError{Err: "no such host", IsNotFound: true}, false},
		{"refused message", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), true},
		{"starting up", errors.New("FATAL: the database system is starting up"), true},
		{"auth message", errors.New("password authentication failed for user \"gis\""), false},
		{"cancelled", context.Canceled, false},
		{"plain", errors.New("something else"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsTransient(tt.err))
		})
	}
}
