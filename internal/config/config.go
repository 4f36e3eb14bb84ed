package config

import (
	"os"
	"strconv"
	"strings"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// StoreKind selects the exam.Store implementation.
type StoreKind string

const (
	StoreMemory   StoreKind = "memory"
	StoreSQLite   StoreKind = "sqlite"
	StorePostgres StoreKind = "postgres"
	StoreRedis    StoreKind = "redis"
)

type Config struct {
	Mode     Mode
	HTTPAddr string
	LogMode  string // prod|dev

	Store StoreKind
	DBDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSOrigins []string

	BankPath string // optional exam bank loaded at startup

	// grading
	PartialMulti     bool
	MaxEditDistance  int
	DefaultPoints    float64
	NumericTolerance string // e.g. "tol=0.01,reltol=0.05"

	LegacyTrueFalse bool // decode discriminant 3 as true/false
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	defLog := "dev"
	if mode == ModeOnline {
		defLog = "prod"
	}
	return Config{
		Mode:     mode,
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),
		LogMode:  envOr("LOG_MODE", defLog),

		Store: StoreKind(strings.ToLower(envOr("STORE", string(StoreSQLite)))),
		DBDSN: envOr("DB_DSN", ""),

		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:3010"),
		BankPath:    os.Getenv("BANK_PATH"),

		PartialMulti:     envBool("GRADING_PARTIAL_MULTI", true),
		MaxEditDistance:  envInt("GRADING_MAX_EDIT", 0),
		DefaultPoints:    envFloat("DEFAULT_POINTS", 1),
		NumericTolerance: os.Getenv("GRADING_NUMERIC_TOL"),

		LegacyTrueFalse: envBool("LEGACY_TRUE_FALSE", false),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return n
}
func envFloat(k string, def float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(k), 64)
	if err != nil {
		return def
	}
	return f
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
