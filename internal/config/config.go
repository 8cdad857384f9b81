package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
    "time"     // time parses token lifetime durations
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations for token
// lifetimes, an int for the bcrypt cost.
type Config struct {
    Env        string        // application environment ("development", "production")
    Port       string        // HTTP port to listen on
    DBUser     string        // database username
    DBPass     string        // database password (optional)
    DBHost     string        // database host address
    DBPort     string        // database port number
    DBName     string        // database name
    JWTSecret  string        // secret used to sign JWTs
    AccessTTL  time.Duration // access token time-to-live
    RefreshTTL time.Duration // refresh token time-to-live
    BcryptCost int           // bcrypt cost for password hashing
}

// Load reads configuration values from environment variables and returns a
// Config.  Every value has a development default so the server can start
// from an empty environment; JWT_SECRET is the one variable enforced by
// must(), because signing tokens with a guessable default secret would
// defeat authentication entirely.
func Load() Config {
    return Config{
        Env:        getenv("APP_ENV", "development"), // environment (development/production)
        Port:       getenv("PORT", "3000"),           // port to bind the HTTP server
        DBUser:     getenv("DB_USER", "root"),        // database user
        DBPass:     os.Getenv("DB_PASS"),             // database password (empty allowed)
        DBHost:     getenv("DB_HOST", "localhost"),   // database host
        DBPort:     getenv("DB_PORT", "3306"),        // database port
        DBName:     getenv("DB_NAME", "store_db"),    // database name
        JWTSecret:  must("JWT_SECRET"),               // secret used for signing JWTs
        AccessTTL:  envDuration("JWT_ACCESS_EXPIRATION", 480*time.Hour), // 20 days
        RefreshTTL: envDuration("JWT_REFRESH_EXPIRATION", 10*time.Hour), // 10 hours
        BcryptCost: envInt("BCRYPT_COST", 10),        // bcrypt cost factor
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// getenv returns the environment value for key, or def when unset/empty.
func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// envInt reads an integer from the environment, falling back to def when
// the variable is unset or does not parse.
func envInt(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return def
}

// envDuration reads a Go duration string (e.g. "480h", "10h") from the
// environment, falling back to def when unset or malformed.
func envDuration(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    if d, err := time.ParseDuration(v); err == nil {
        return d
    }
    return def
}
