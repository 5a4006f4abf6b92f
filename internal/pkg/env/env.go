package env

import (
	"os"
	"strconv"
	"strings"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
)

var Env map[string]string

func GetEnv(key, def string) string {
	// First check our loaded Env map
	if val, ok := Env[key]; ok {
		return val
	}
	// Fallback to OS environment variables (for Docker/tests)
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetInt returns the integer value of key or def when unset or malformed.
func GetInt(key string, def int) int {
	raw := strings.TrimSpace(GetEnv(key, ""))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		fiberlog.Warnf("env: %s=%q is not an integer, using %d", key, raw, def)
		return def
	}
	return v
}

// GetBool accepts the usual strconv.ParseBool spellings.
func GetBool(key string, def bool) bool {
	raw := strings.TrimSpace(GetEnv(key, ""))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		fiberlog.Warnf("env: %s=%q is not a boolean, using %t", key, raw, def)
		return def
	}
	return v
}

// GetDuration parses values like "15s" or "720h". Bare integers are seconds.
func GetDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(GetEnv(key, ""))
	if raw == "" {
		return def
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		fiberlog.Warnf("env: %s=%q is not a duration, using %s", key, raw, def)
		return def
	}
	return v
}

func SetupEnvFile() {
	// Look for .env file in project root
	envFiles := []string{
		".env",          // Current directory
		"../../.env",    // From cmd/tutorfox to project root
		"../../../.env", // Fallback for deeper nesting
	}

	var err error
	for _, envFile := range envFiles {
		Env, err = godotenv.Read(envFile)
		if err == nil {
			return
		}
	}

	// Containers inject configuration through the process environment.
	Env = map[string]string{}
	fiberlog.Warn("no .env file found, using process environment only")
}

func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
