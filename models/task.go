package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskStatus represents task execution status
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// Task represents a queued port scan task
type Task struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Status      TaskStatus         `json:"status" bson:"status"`

	// Target Configuration
	HostExpr string `json:"host_expr" bson:"host_expr"` // single IP or last-octet range
	PortExpr string `json:"port_expr" bson:"port_expr"` // e.g. "22,80,1000-2000"

	// Scan Configuration
	Config TaskConfig `json:"config" bson:"config"`

	// Execution Info
	Progress    int       `json:"progress" bson:"progress"` // 0-100
	StartedAt   time.Time `json:"started_at,omitempty" bson:"started_at,omitempty"`
	CompletedAt time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`

	// Results Summary
	Stats TaskStats `json:"stats" bson:"stats"`

	LastError string `json:"last_error,omitempty" bson:"last_error,omitempty"`

	// Metadata
	CreatedBy primitive.ObjectID `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// TaskConfig represents per-task scan options
type TaskConfig struct {
	ServiceDetect bool `json:"service_detect,omitempty" bson:"service_detect,omitempty"`
	Concurrency   int  `json:"concurrency,omitempty" bson:"concurrency,omitempty"`
	TimeoutMS     int  `json:"timeout_ms,omitempty" bson:"timeout_ms,omitempty"`
}

// TaskStats summarizes the outcome of a finished task
type TaskStats struct {
	TotalUnits  int `json:"total_units" bson:"total_units"`
	OpenPorts   int `json:"open_ports" bson:"open_ports"`
	ClosedPorts int `json:"closed_ports" bson:"closed_ports"`
	Filtered    int `json:"filtered" bson:"filtered"`
	NotScanned  int `json:"not_scanned" bson:"not_scanned"`
}

// Collection names for tasks
const (
	CollectionTasks = "tasks"
)
