package audit

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"contract-ledger/internal/observability/logging"
)

// ActionReportExport is recorded for every report download.
const ActionReportExport = "report.export"

// Entry represents an audit log entry.
type Entry struct {
	ID            string
	Actor         string
	Role          string
	DivisionID    int
	Action        string
	Scope         string
	Format        string
	FromYear      int
	ToYear        int
	Metadata      json.RawMessage
	PayloadDigest string
	IP            string
	UserAgent     string
	CreatedAt     time.Time
}

// Logger writes audit entries.
type Logger interface {
	Log(ctx context.Context, entry Entry) error
}

// NewID generates a random audit id.
func NewID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return "audit-" + hex.EncodeToString(buf)
}

// DigestJSON computes a SHA256 hex digest for metadata payloads.
func DigestJSON(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func prepare(entry Entry) Entry {
	if entry.ID == "" {
		entry.ID = NewID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.PayloadDigest == "" {
		entry.PayloadDigest = DigestJSON(entry.Metadata)
	}
	return entry
}

// LogWriter records audit entries in the structured log when no database is configured.
type LogWriter struct {
	logger *logging.Logger
}

// NewLogWriter constructs a LogWriter.
func NewLogWriter(logger *logging.Logger) *LogWriter {
	return &LogWriter{logger: logging.OrNop(logger).WithComponent("audit")}
}

// Log writes entry at info level.
func (w *LogWriter) Log(_ context.Context, entry Entry) error {
	entry = prepare(entry)
	w.logger.Infow("audit",
		"id", entry.ID,
		"action", entry.Action,
		"actor", entry.Actor,
		"role", entry.Role,
		"divisionID", entry.DivisionID,
		"scope", entry.Scope,
		"format", entry.Format,
		"from", entry.FromYear,
		"to", entry.ToYear,
		"ip", entry.IP,
	)
	return nil
}
