package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

// PostgreSQLErrorClassifier decides whether a connection error is worth retrying.
type PostgreSQLErrorClassifier struct{}

// NewPostgreSQLErrorClassifier returns the classifier used by every connector.
func NewPostgreSQLErrorClassifier() *PostgreSQLErrorClassifier {
	return &PostgreSQLErrorClassifier{}
}

// Transient SQLSTATE classes: connection exception, insufficient resources,
// operator intervention.
var transientClasses = []string{"08", "53", "57"}

// Individually transient SQLSTATEs outside those classes.
var transientCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
}

// Messages seen on errors that never reach the server as a SQLSTATE.
var transientMessages = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"i/o timeout",
	"network is unreachable",
	"server closed the connection",
	"unexpected eof",
	"too many connections",
	"the database system is starting up",
}

// IsTransient reports whether err may succeed on a later attempt.
func (c *PostgreSQLErrorClassifier) IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientCode(pgErr.Code)
	}

	if isTransientNetError(err) {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "password authentication failed") || strings.Contains(msg, "does not exist") {
		return false
	}
	for _, pattern := range transientMessages {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func isTransientCode(code string) bool {
	if transientCodes[code] {
		return true
	}
	for _, class := range transientClasses {
		if strings.HasPrefix(code, class) {
			return true
		}
	}
	return false
}

func isTransientNetError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	for _, errno := range []syscall.Errno{syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ENETUNREACH, syscall.EHOSTUNREACH} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

var _ shp2pg.ErrorClassifier = (*PostgreSQLErrorClassifier)(nil)
