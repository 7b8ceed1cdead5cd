package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ValueType describes how a config entry's serialized value deserializes.
type ValueType string

const (
	TypeString  ValueType = "string"
	TypeNumber  ValueType = "number"
	TypeBoolean ValueType = "boolean"
	TypeJSON    ValueType = "json"
)

// ConfigSyncStatus marks whether a setting has been pushed remotely.
type ConfigSyncStatus string

const (
	ConfigLocal  ConfigSyncStatus = "local"
	ConfigSynced ConfigSyncStatus = "synced"
)

// ConfigEntry is a typed key/value setting. Keys are unique; writes are
// last-write-wins with no versioning.
type ConfigEntry struct {
	ID           string           `json:"id"`
	Key          string           `json:"key"`
	Value        string           `json:"value"`
	Type         ValueType        `json:"type"`
	Category     string           `json:"category"`
	LastModified time.Time        `json:"last_modified"`
	SyncStatus   ConfigSyncStatus `json:"sync_status"`
}

// EncodeConfigValue serializes a runtime value and infers its ValueType:
// string, number (any integer or float), boolean, anything else as JSON.
func EncodeConfigValue(value any) (string, ValueType, error) {
	switch v := value.(type) {
	case string:
		return v, TypeString, nil
	case bool:
		return strconv.FormatBool(v), TypeBoolean, nil
	case int:
		return strconv.FormatInt(int64(v), 10), TypeNumber, nil
	case int32:
		return strconv.FormatInt(int64(v), 10), TypeNumber, nil
	case int64:
		return strconv.FormatInt(v, 10), TypeNumber, nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 64), TypeNumber, nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), TypeNumber, nil
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return "", "", fmt.Errorf("marshal config value: %w", err)
		}
		return string(data), TypeJSON, nil
	}
}

// Decode deserializes the stored value according to its recorded type.
// Numbers decode as float64, json as whatever encoding/json produces.
func (e *ConfigEntry) Decode() (any, error) {
	switch e.Type {
	case TypeString:
		return e.Value, nil
	case TypeNumber:
		n, err := strconv.ParseFloat(e.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("parse number for key %s: %w", e.Key, err)
		}
		return n, nil
	case TypeBoolean:
		b, err := strconv.ParseBool(e.Value)
		if err != nil {
			return nil, fmt.Errorf("parse boolean for key %s: %w", e.Key, err)
		}
		return b, nil
	case TypeJSON:
		var v any
		if err := json.Unmarshal([]byte(e.Value), &v); err != nil {
			return nil, fmt.Errorf("parse json for key %s: %w", e.Key, err)
		}
		return v, nil
	default:
		return nil, &ValidationError{Entity: "config", Field: "type", Reason: "unknown value " + string(e.Type)}
	}
}

// Validate checks the fields required at import time.
func (e *ConfigEntry) Validate() error {
	if e.Key == "" {
		return &ValidationError{Entity: "config", Field: "key", Reason: "required"}
	}
	switch e.Type {
	case TypeString, TypeNumber, TypeBoolean, TypeJSON:
	default:
		return &ValidationError{Entity: "config", Field: "type", Reason: "unknown value " + string(e.Type)}
	}
	switch e.SyncStatus {
	case "", ConfigLocal, ConfigSynced:
	default:
		return &ValidationError{Entity: "config", Field: "sync_status", Reason: "unknown value " + string(e.SyncStatus)}
	}
	return nil
}
