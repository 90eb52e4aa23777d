// Package security screens SQL content, connection URLs, and file paths
// before anything is executed. Validation is policy-driven: a named level
// selects how aggressive the pattern screening is.
package security

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/iyuangang/sql-batch-runner/internal/sqlparse"
)

// Level names a validation policy.
type Level string

const (
	// LevelStrict screens all dangerous patterns plus destructive DDL/DCL.
	LevelStrict Level = "strict"
	// LevelNormal screens the dangerous pattern sets and structural limits.
	LevelNormal Level = "normal"
	// LevelPermissive keeps only structural limits (size, counts, lengths).
	LevelPermissive Level = "permissive"
)

// ParseLevel converts a user-supplied level name.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelStrict:
		return LevelStrict, nil
	case LevelNormal, "":
		return LevelNormal, nil
	case LevelPermissive:
		return LevelPermissive, nil
	}
	return "", fmt.Errorf("unknown security level: %q", s)
}

// ValidationError reports a failed security check. Target is one of
// "path", "url", or "content".
type ValidationError struct {
	Target string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("security validation failed for %s: %s", e.Target, e.Reason)
}

func violation(target, format string, args ...any) error {
	return &ValidationError{Target: target, Reason: fmt.Sprintf(format, args...)}
}

// dangerousSQLPatterns are substrings (upper-cased comparison) that indicate
// destructive or out-of-band operations a batch runner should not pass along.
var dangerousSQLPatterns = []string{
	"DROP DATABASE",
	"TRUNCATE DATABASE",
	"DELETE FROM INFORMATION_SCHEMA",
	"DELETE FROM SYS.",
	"EXEC ",
	"EXECUTE ",
	"XP_",
	"SP_",
	"OPENROWSET",
	"OPENDATASOURCE",
	"BACKUP DATABASE",
	"RESTORE DATABASE",
	"SHUTDOWN",
	"RECONFIGURE",
}

// strictSQLPatterns are additionally refused at LevelStrict.
var strictSQLPatterns = []string{
	"DROP TABLE",
	"DROP SCHEMA",
	"TRUNCATE ",
	"GRANT ",
	"REVOKE ",
}

var dangerousURLPatterns = []string{
	"--",
	"/*",
	"*/",
	"xp_",
	"sp_",
	"exec",
	"script:",
	"javascript:",
	"data:",
}

var dangerousPathPatterns = []string{
	"..",
	"~",
	"/etc",
	"/var",
	"/usr",
	"/bin",
	"/sbin",
	"/dev",
	`\windows\system32`,
	`\windows\syswow64`,
	`\program files`,
}

// Config carries the tunable limits for a Validator.
type Config struct {
	Enabled              bool     `json:"enable_validation"`
	Level                Level    `json:"level"`
	MaxFileSizeMB        int      `json:"max_file_size_mb"`
	MaxStatementsPerFile int      `json:"max_statements_per_file"`
	MaxStatementLength   int      `json:"max_statement_length"`
	AllowedExtensions    []string `json:"allowed_extensions"`
}

// DefaultConfig returns the stock limits.
func DefaultConfig() Config {
	return Config{
		Enabled:              true,
		Level:                LevelNormal,
		MaxFileSizeMB:        10,
		MaxStatementsPerFile: 100,
		MaxStatementLength:   10000,
		AllowedExtensions:    []string{".sql"},
	}
}

// Validator applies a security policy. A nil Validator performs no checks.
type Validator struct {
	cfg Config
}

// NewValidator builds a Validator; disabled configs yield nil.
func NewValidator(cfg Config) *Validator {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Level == "" {
		cfg.Level = LevelNormal
	}
	return &Validator{cfg: cfg}
}

// MaxFileSizeBytes returns the configured file size cap.
func (v *Validator) MaxFileSizeBytes() int64 {
	return int64(v.cfg.MaxFileSizeMB) * 1024 * 1024
}

// ValidatePath checks a SQL file path before it is read: no traversal or
// system-directory patterns, an allowed extension, and a size under the cap
// when the file exists.
func (v *Validator) ValidatePath(path string) error {
	if v == nil {
		return nil
	}
	if path == "" {
		return violation("path", "file path cannot be empty")
	}

	lower := strings.ToLower(path)
	if v.cfg.Level != LevelPermissive {
		for _, pattern := range dangerousPathPatterns {
			if strings.Contains(lower, pattern) {
				return violation("path", "path contains dangerous pattern %q", pattern)
			}
		}
	}

	allowed := false
	for _, ext := range v.cfg.AllowedExtensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			allowed = true
			break
		}
	}
	if !allowed {
		return violation("path", "only %s files are allowed", strings.Join(v.cfg.AllowedExtensions, ", "))
	}

	if info, err := os.Stat(path); err == nil {
		if info.Size() > v.MaxFileSizeBytes() {
			return violation("path", "file size %d bytes exceeds maximum %dMB",
				info.Size(), v.cfg.MaxFileSizeMB)
		}
	}

	return nil
}

// ValidateURL checks a database connection URL: it must parse, carry a
// scheme, and contain none of the dangerous URL patterns.
func (v *Validator) ValidateURL(rawURL string) error {
	if v == nil {
		return nil
	}
	if rawURL == "" {
		return violation("url", "database URL cannot be empty")
	}

	if v.cfg.Level != LevelPermissive {
		lower := strings.ToLower(rawURL)
		for _, pattern := range dangerousURLPatterns {
			if strings.Contains(lower, pattern) {
				return violation("url", "URL contains dangerous pattern %q", pattern)
			}
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return violation("url", "invalid database URL: %v", err)
	}
	if u.Scheme == "" {
		return violation("url", "database URL must include a scheme")
	}

	return nil
}

// ValidateContent checks SQL text before execution: dangerous statement
// patterns per level, the statements-per-file budget (counted with the same
// splitter the executor uses), and per-statement length.
func (v *Validator) ValidateContent(sql string) error {
	if v == nil || sql == "" {
		return nil
	}

	if v.cfg.Level != LevelPermissive {
		upper := strings.ToUpper(sql)
		for _, pattern := range dangerousSQLPatterns {
			if strings.Contains(upper, pattern) {
				return violation("content", "SQL contains dangerous operation %q", strings.TrimSpace(pattern))
			}
		}
		if v.cfg.Level == LevelStrict {
			for _, pattern := range strictSQLPatterns {
				if strings.Contains(upper, pattern) {
					return violation("content", "SQL operation %q is not allowed at strict level", strings.TrimSpace(pattern))
				}
			}
		}
	}

	statements := sqlparse.ParseStatements(sql)
	if len(statements) > v.cfg.MaxStatementsPerFile {
		return violation("content", "too many SQL statements (%d), maximum allowed: %d",
			len(statements), v.cfg.MaxStatementsPerFile)
	}
	for i, stmt := range statements {
		if len(stmt) > v.cfg.MaxStatementLength {
			return violation("content", "statement %d is too long (%d chars), maximum allowed: %d",
				i+1, len(stmt), v.cfg.MaxStatementLength)
		}
	}

	return nil
}
