package admin

import (
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/spindrop/backend/internal/config"
	"github.com/spindrop/backend/internal/models"
)

// GetAllRuntimeConfig returns all runtime config entries
func GetAllRuntimeConfig(db *sqlx.DB) ([]models.RuntimeConfig, error) {
	var configs []models.RuntimeConfig
	err := db.Select(&configs, `
		SELECT key, value, value_type, description, updated_by, updated_at
		FROM runtime_config
		ORDER BY key
	`)
	return configs, err
}

// GetRuntimeConfigValue returns a single runtime config value
func GetRuntimeConfigValue(db *sqlx.DB, key string) (*models.RuntimeConfig, error) {
	var cfg models.RuntimeConfig
	err := db.Get(&cfg, `SELECT key, value, value_type, description, updated_by, updated_at FROM runtime_config WHERE key=$1`, key)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpdateRuntimeConfigValue updates a single runtime config value
func UpdateRuntimeConfigValue(db *sqlx.DB, key, value, adminUsername string) error {
	// Get existing config to validate type
	existing, err := GetRuntimeConfigValue(db, key)
	if err != nil {
		return fmt.Errorf("config key not found: %s", key)
	}

	// Validate value against type
	switch existing.ValueType {
	case "int":
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("invalid integer value: %s", value)
		}
	case "float":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("invalid float value: %s", value)
		}
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("invalid boolean value: %s (must be 'true' or 'false')", value)
		}
	}

	_, err = db.Exec(`
		UPDATE runtime_config SET value=$1, updated_by=$2, updated_at=NOW() WHERE key=$3
	`, value, adminUsername, key)
	return err
}

// ApplyRuntimeConfigToConfig loads runtime config from the DB and applies
// overrides to the service config. New sessions pick up the overridden
// defaults; running sessions keep the config they were created with.
func ApplyRuntimeConfigToConfig(db *sqlx.DB, cfg *config.Config) error {
	configs, err := GetAllRuntimeConfig(db)
	if err != nil {
		return err
	}

	for _, c := range configs {
		switch c.Key {
		case "sim_gravity":
			if v, err := strconv.ParseFloat(c.Value, 64); err == nil {
				cfg.Gravity = v
			}
		case "sim_friction":
			if v, err := strconv.ParseFloat(c.Value, 64); err == nil && v > 0 && v < 1 {
				cfg.Friction = v
			}
		case "sim_bounce_damping":
			if v, err := strconv.ParseFloat(c.Value, 64); err == nil && v > 0 && v < 1 {
				cfg.BounceDamping = v
			}
		case "sim_min_velocity":
			if v, err := strconv.ParseFloat(c.Value, 64); err == nil && v >= 0 {
				cfg.MinVelocity = v
			}
		case "sim_rotation_speed":
			if v, err := strconv.ParseFloat(c.Value, 64); err == nil {
				cfg.RotationSpeed = v
			}
		case "sim_impulse_magnitude":
			if v, err := strconv.ParseFloat(c.Value, 64); err == nil && v >= 0 {
				cfg.ImpulseMagnitude = v
			}
		case "session_idle_seconds":
			if v, err := strconv.Atoi(c.Value); err == nil && v > 0 {
				cfg.SessionIdleSeconds = v
			}
		}
	}

	return nil
}
