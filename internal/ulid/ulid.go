// Package ulid wraps github.com/oklog/ulid/v2 with prefixed identifiers
// and database/JSON integration.
//
// ULIDs are lexicographically sortable by creation time, which makes them
// a good fit for primary keys on append-mostly tables like review history.
// Prefixes ("run-01AN4Z07BY...") make IDs self-describing in logs and
// API payloads.
package ulid

import (
	"crypto/rand"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefixes for the identifier families redline mints.
const (
	// PrefixRun marks persisted review run IDs
	PrefixRun = "run"

	// PrefixRequest marks per-request IDs on the HTTP server
	PrefixRequest = "req"

	// PrefixSeparator separates the prefix from the ULID
	PrefixSeparator = "-"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex

	// Nil is the zero ULID, useful for nil checks
	Nil = ULID{ulid.ULID{}, ""}
)

// ULID wraps ulid.ULID with an optional prefix and implements the
// json and database/sql serialization interfaces.
type ULID struct {
	ulid.ULID
	prefix string
}

// Generate creates a new unprefixed ULID stamped with the current time.
func Generate() ULID {
	return NewWithTime(time.Now())
}

// GenerateWithPrefix creates a new ULID stamped with the current time and
// carrying the given prefix.
func GenerateWithPrefix(prefix string) ULID {
	id := NewWithTime(time.Now())
	id.prefix = prefix
	return id
}

// NewWithTime creates a new ULID with a specific timestamp.
func NewWithTime(t time.Time) ULID {
	entropyLock.Lock()
	id := ulid.MustNew(ulid.Timestamp(t), entropy)
	entropyLock.Unlock()
	return ULID{id, ""}
}

// Parse parses a plain or prefixed ULID string
// (e.g. "run-01AN4Z07BY79KA1307SR9X4MV3").
func Parse(id string) (ULID, error) {
	var prefix, rawID string

	if before, after, found := strings.Cut(id, PrefixSeparator); found {
		prefix = before
		rawID = after
	} else {
		rawID = id
	}

	parsed, err := ulid.Parse(rawID)
	if err != nil {
		return ULID{}, err
	}

	return ULID{parsed, prefix}, nil
}

// MustParse is like Parse but panics on invalid input. It simplifies
// initialization in tests.
func MustParse(s string) ULID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Validate reports whether s is a valid plain or prefixed ULID.
func Validate(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// IsZero returns true if the ULID is the zero value (Nil).
func (u ULID) IsZero() bool {
	return u.ULID == ulid.ULID{}
}

// Prefix returns the prefix of the ULID, or "" if it has none.
func (u ULID) Prefix() string {
	return u.prefix
}

// HasPrefix returns true if the ULID carries a prefix.
func (u ULID) HasPrefix() bool {
	return u.prefix != ""
}

// String returns "prefix-ulid" for prefixed IDs and the bare ULID otherwise.
func (u ULID) String() string {
	if u.prefix != "" {
		return u.prefix + PrefixSeparator + u.ULID.String()
	}
	return u.ULID.String()
}

// RawString returns the ULID without any prefix.
func (u ULID) RawString() string {
	return u.ULID.String()
}

// Time returns the timestamp component of the ULID.
func (u ULID) Time() time.Time {
	return ulid.Time(u.ULID.Time())
}

// MarshalJSON encodes the ULID as its string form.
func (u ULID) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON decodes a ULID from its string form.
func (u *ULID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Value implements driver.Valuer; ULIDs are stored as strings.
func (u ULID) Value() (driver.Value, error) {
	return u.String(), nil
}

// Scan implements sql.Scanner for string and []byte columns.
func (u *ULID) Scan(src interface{}) error {
	switch src := src.(type) {
	case nil:
		return nil
	case string:
		parsed, err := Parse(src)
		if err != nil {
			return err
		}
		*u = parsed
		return nil
	case []byte:
		parsed, err := Parse(string(src))
		if err != nil {
			return err
		}
		*u = parsed
		return nil
	}
	return fmt.Errorf("cannot scan %T into ULID", src)
}

// RunID mints a new review run identifier.
func RunID() string {
	return GenerateWithPrefix(PrefixRun).String()
}

// RequestID mints a new HTTP request identifier.
func RequestID() string {
	return GenerateWithPrefix(PrefixRequest).String()
}
