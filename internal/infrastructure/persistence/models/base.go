// Package models holds the persistence representations of the domain
// aggregates. Models are flat rows; conversion to and from the domain
// happens in ToDomain/FromDomain pairs.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// BaseModel carries the columns shared by every table
type BaseModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// VersionedModel adds the optimistic locking column
type VersionedModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// jsonValue marshals v for storage in a json column
func jsonValue(v interface{}) (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// jsonScan unmarshals a json column into dst
func jsonScan(value interface{}, dst interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("cannot scan %T as json", value)
	}
}
