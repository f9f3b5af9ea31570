// Package config loads process settings from SOUTENANCE_* environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"soutenancecore/internal/blob"
	"soutenancecore/internal/console"
	"soutenancecore/internal/core"
	"soutenancecore/pkg/domain"
)

// Prefix is prepended to every variable name.
const Prefix = "SOUTENANCE_"

// Config is the resolved process configuration.
type Config struct {
	HTTPAddr        string
	Storage         core.StorageConfig
	Blob            blob.Config
	LogLevel        string
	LogFormat       string
	JuryRole        string
	Compensation    console.CompensationPolicy
	SeedSpecialites bool
	ShutdownTimeout time.Duration
	ExportQueueSize int
	ExportRetention int
	// AuditLog writes an audit line for every mutating service operation.
	AuditLog bool
	// TraceFile receives one JSON line per service operation when set.
	TraceFile string
	// ExpvarName publishes service metrics under /debug/vars when set.
	ExpvarName string
}

// Default returns the settings used when no variable is set.
func Default() Config {
	return Config{
		HTTPAddr:        ":8080",
		Storage:         core.StorageConfig{Driver: core.StorageSQLite, SQLitePath: "soutenance.db"},
		Blob:            blob.Config{Driver: blob.DriverFilesystem, FSRoot: "./exports"},
		LogLevel:        "info",
		LogFormat:       "json",
		JuryRole:        domain.DefaultJuryRole,
		Compensation:    console.KeepPartial,
		SeedSpecialites: true,
		ShutdownTimeout: 10 * time.Second,
		ExportQueueSize: 16,
		ExportRetention: 256,
		AuditLog:        true,
	}
}

// Load reads envFile when it exists, without overriding variables already
// set in the environment, then resolves the configuration.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup resolves the configuration through lookup, which has the
// signature of os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	r := reader{lookup: lookup}

	cfg.HTTPAddr = r.str("HTTP_ADDR", cfg.HTTPAddr)
	cfg.Storage.Driver = core.StorageDriver(strings.ToLower(r.str("STORAGE_DRIVER", string(cfg.Storage.Driver))))
	cfg.Storage.SQLitePath = r.str("SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Storage.PostgresDSN = r.str("POSTGRES_DSN", "")
	cfg.Blob.Driver = blob.Driver(strings.ToLower(r.str("BLOB_DRIVER", string(cfg.Blob.Driver))))
	cfg.Blob.FSRoot = r.str("BLOB_FS_ROOT", cfg.Blob.FSRoot)
	cfg.Blob.S3 = blob.S3Config{
		Bucket:          r.str("BLOB_S3_BUCKET", ""),
		Region:          r.str("BLOB_S3_REGION", ""),
		Endpoint:        r.str("BLOB_S3_ENDPOINT", ""),
		PathStyle:       r.boolean("BLOB_S3_PATH_STYLE", false),
		AccessKeyID:     r.str("BLOB_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: r.str("BLOB_S3_SECRET_ACCESS_KEY", ""),
	}
	cfg.LogLevel = r.str("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = r.str("LOG_FORMAT", cfg.LogFormat)
	cfg.JuryRole = r.str("DEFAULT_JURY_ROLE", cfg.JuryRole)
	cfg.SeedSpecialites = r.boolean("SEED_SPECIALITES", cfg.SeedSpecialites)
	cfg.ShutdownTimeout = r.duration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.ExportQueueSize = r.integer("EXPORT_QUEUE_SIZE", cfg.ExportQueueSize)
	cfg.ExportRetention = r.integer("EXPORT_RETENTION", cfg.ExportRetention)
	cfg.AuditLog = r.boolean("AUDIT_LOG", cfg.AuditLog)
	cfg.TraceFile = r.str("TRACE_FILE", "")
	cfg.ExpvarName = r.str("EXPVAR_NAME", "")

	if raw, ok := r.get("COMPENSATION_POLICY"); ok {
		policy, err := console.ParseCompensationPolicy(raw)
		if err != nil {
			r.errs = append(r.errs, fmt.Errorf("%sCOMPENSATION_POLICY: %w", Prefix, err))
		} else {
			cfg.Compensation = policy
		}
	}

	switch cfg.Storage.Driver {
	case core.StorageMemory, core.StorageSQLite:
	case core.StoragePostgres:
		if cfg.Storage.PostgresDSN == "" {
			r.errs = append(r.errs, fmt.Errorf("%sPOSTGRES_DSN required for postgres storage", Prefix))
		}
	default:
		r.errs = append(r.errs, fmt.Errorf("%sSTORAGE_DRIVER: unknown driver %q", Prefix, cfg.Storage.Driver))
	}
	switch cfg.Blob.Driver {
	case blob.DriverFilesystem, blob.DriverMemory:
	case blob.DriverS3:
		if cfg.Blob.S3.Bucket == "" {
			r.errs = append(r.errs, fmt.Errorf("%sBLOB_S3_BUCKET required for s3 blob driver", Prefix))
		}
	default:
		r.errs = append(r.errs, fmt.Errorf("%sBLOB_DRIVER: unknown driver %q", Prefix, cfg.Blob.Driver))
	}
	if err := errors.Join(r.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type reader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *reader) get(name string) (string, bool) {
	v, ok := r.lookup(Prefix + name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (r *reader) str(name, def string) string {
	if v, ok := r.get(name); ok {
		return v
	}
	return def
}

func (r *reader) boolean(name string, def bool) bool {
	v, ok := r.get(name)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s%s: %w", Prefix, name, err))
		return def
	}
	return b
}

func (r *reader) integer(name string, def int) int {
	v, ok := r.get(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		r.errs = append(r.errs, fmt.Errorf("%s%s: expected positive integer, got %q", Prefix, name, v))
		return def
	}
	return n
}

func (r *reader) duration(name string, def time.Duration) time.Duration {
	v, ok := r.get(name)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s%s: %w", Prefix, name, err))
		return def
	}
	return d
}
