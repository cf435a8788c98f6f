package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// SimSession is the persistent record of a simulation session.
type SimSession struct {
	ID           int             `db:"id" json:"id"`
	Token        string          `db:"token" json:"token"`
	Status       string          `db:"status" json:"status"`
	Config       json.RawMessage `db:"config" json:"config"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	LastActivity time.Time       `db:"last_activity" json:"last_activity"`
	StoppedAt    sql.NullTime    `db:"stopped_at" json:"stopped_at,omitempty"`
}

// CollisionEvent is one recorded wall hit.
type CollisionEvent struct {
	ID           int64     `db:"id" json:"id"`
	SessionToken string    `db:"session_token" json:"session_token"`
	Tick         int64     `db:"tick" json:"tick"`
	WallIndex    int       `db:"wall_index" json:"wall_index"`
	ImpactSpeed  float64   `db:"impact_speed" json:"impact_speed"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// AdminAccount is an operator allowed to change global sim defaults.
type AdminAccount struct {
	Username    string         `db:"username" json:"username"`
	DisplayName string         `db:"display_name" json:"display_name"`
	TokenHash   string         `db:"token_hash" json:"-"`
	Roles       pq.StringArray `db:"roles" json:"roles"`
	AllowedIPs  pq.StringArray `db:"allowed_ips" json:"allowed_ips"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// AdminAudit records one admin action.
type AdminAudit struct {
	ID            int64           `db:"id" json:"id"`
	AdminUsername string          `db:"admin_username" json:"admin_username"`
	IP            string          `db:"ip" json:"ip"`
	Route         string          `db:"route" json:"route"`
	Action        string          `db:"action" json:"action"`
	Details       json.RawMessage `db:"details" json:"details"`
	Success       bool            `db:"success" json:"success"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// RuntimeConfig is a DB-backed override for a service default.
type RuntimeConfig struct {
	Key         string    `db:"key" json:"key"`
	Value       string    `db:"value" json:"value"`
	ValueType   string    `db:"value_type" json:"value_type"`
	Description string    `db:"description" json:"description,omitempty"`
	UpdatedBy   string    `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
