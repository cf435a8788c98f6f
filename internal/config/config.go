package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Simulation defaults (per-session, overridable via the API)
	Gravity          float64
	Friction         float64
	BounceDamping    float64
	MinVelocity      float64
	HexRadius        float64
	BallRadius       float64
	RotationSpeed    float64
	ImpulseMagnitude float64

	// Session scheduling
	TickRate               int // simulation ticks per second
	SessionIdleSeconds     int // stop sessions with no activity for this long
	SessionSnapshotSeconds int // how often live state is mirrored to Redis
	ReaperPollSeconds      int

	// Security
	JWTSecret       string
	TokenExpiryMins int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/spindrop?sslmode=disable"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Simulation defaults
		Gravity:          getEnvFloat("SIM_GRAVITY", 500.0),
		Friction:         getEnvFloat("SIM_FRICTION", 0.99),
		BounceDamping:    getEnvFloat("SIM_BOUNCE_DAMPING", 0.85),
		MinVelocity:      getEnvFloat("SIM_MIN_VELOCITY", 0.08),
		HexRadius:        getEnvFloat("SIM_HEX_RADIUS", 200.0),
		BallRadius:       getEnvFloat("SIM_BALL_RADIUS", 10.0),
		RotationSpeed:    getEnvFloat("SIM_ROTATION_SPEED", 0.5),
		ImpulseMagnitude: getEnvFloat("SIM_IMPULSE_MAGNITUDE", 300.0),

		// Session scheduling
		TickRate:               getEnvInt("SIM_TICK_RATE", 60),
		SessionIdleSeconds:     getEnvInt("SESSION_IDLE_SECONDS", 300),
		SessionSnapshotSeconds: getEnvInt("SESSION_SNAPSHOT_SECONDS", 1),
		ReaperPollSeconds:      getEnvInt("REAPER_POLL_SECONDS", 10),

		// Security
		JWTSecret:       getEnv("JWT_SECRET", "change-me-in-production"),
		TokenExpiryMins: getEnvInt("TOKEN_EXPIRY_MINUTES", 120),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
