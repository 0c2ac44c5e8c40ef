package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// isUniqueConstraintError checks if an error is a unique constraint violation
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "unique") ||
		strings.Contains(errStr, "duplicate") ||
		strings.Contains(errStr, "already exists")
}

// convertSurrealID converts a SurrealDB ID (which may be a complex object) to a string
func convertSurrealID(id interface{}) string {
	// Already a string
	if str, ok := id.(string); ok {
		return str
	}

	// Handle models.RecordID from SurrealDB Go client
	if rid, ok := id.(models.RecordID); ok {
		return fmt.Sprintf("%s:%v", rid.Table, rid.ID)
	}
	if rid, ok := id.(*models.RecordID); ok && rid != nil {
		return fmt.Sprintf("%s:%v", rid.Table, rid.ID)
	}

	// Handle map format: {"tb": "book", "id": {"String": "demo"}} or similar
	if m, ok := id.(map[string]interface{}); ok {
		tb := ""
		idPart := ""

		// Get table name
		if t, ok := m["tb"].(string); ok {
			tb = t
		} else if t, ok := m["TB"].(string); ok {
			tb = t
		} else if t, ok := m["Table"].(string); ok {
			tb = t
		}

		// Get ID part - could be nested
		if idVal, ok := m["id"]; ok {
			idPart = extractIDValue(idVal)
		} else if idVal, ok := m["ID"]; ok {
			idPart = extractIDValue(idVal)
		}

		if tb != "" && idPart != "" {
			return tb + ":" + idPart
		}
		if idPart != "" {
			return idPart
		}
	}

	// Fallback: use fmt.Sprintf
	return fmt.Sprintf("%v", id)
}

// extractIDValue extracts the ID value which may be nested
func extractIDValue(val interface{}) string {
	if str, ok := val.(string); ok {
		return str
	}
	if m, ok := val.(map[string]interface{}); ok {
		// Check for {"String": "value"} format
		if s, ok := m["String"].(string); ok {
			return s
		}
		if s, ok := m["string"].(string); ok {
			return s
		}
	}
	return fmt.Sprintf("%v", val)
}

// extractQueryResults extracts query results array from SurrealDB response
func extractQueryResults(result interface{}) ([]interface{}, bool) {
	// Handle SurrealDB response format
	if results, ok := result.([]interface{}); ok {
		if len(results) > 0 {
			if firstResult, ok := results[0].(map[string]interface{}); ok {
				if resultArray, ok := firstResult["result"].([]interface{}); ok {
					return resultArray, true
				}
			}
			// Direct array format
			return results, true
		}
	}
	return nil, false
}

// extractCount extracts count from SurrealDB count query result
func extractCount(result interface{}) int {
	if resp, ok := result.(map[string]interface{}); ok {
		if status, ok := resp["status"].(string); ok && status == "OK" {
			if resultData, ok := resp["result"].([]interface{}); ok && len(resultData) > 0 {
				if data, ok := resultData[0].(map[string]interface{}); ok {
					return extractCountValue(data["count"])
				}
			}
		}
		// Direct access
		return extractCountValue(resp["count"])
	}
	return 0
}

// extractCountValue converts various numeric types to int
func extractCountValue(v interface{}) int {
	switch c := v.(type) {
	case float64:
		return int(c)
	case float32:
		return int(c)
	case int:
		return c
	case int64:
		return int(c)
	case uint64:
		return int(c)
	}
	return 0
}

// getString extracts a string value from a map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// getStringPtr extracts an optional string value from a map
func getStringPtr(m map[string]interface{}, key string) *string {
	if v, ok := m[key].(string); ok && v != "" {
		return &v
	}
	return nil
}

// getInt extracts an int value from a map
func getInt(m map[string]interface{}, key string) int {
	if v, ok := m[key].(float64); ok {
		return int(v)
	}
	if v, ok := m[key].(float32); ok {
		return int(v)
	}
	if v, ok := m[key].(int); ok {
		return v
	}
	if v, ok := m[key].(int64); ok {
		return int(v)
	}
	if v, ok := m[key].(uint64); ok {
		return int(v)
	}
	return 0
}

// getTime extracts a time value from a map
func getTime(m map[string]interface{}, key string) *time.Time {
	if v, ok := m[key].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return &t
		}
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return &t
		}
	}
	if t, ok := m[key].(time.Time); ok {
		return &t
	}
	// Handle SurrealDB CustomDateTime type
	if dt, ok := m[key].(models.CustomDateTime); ok {
		t := dt.Time
		return &t
	}
	if dt, ok := m[key].(*models.CustomDateTime); ok && dt != nil {
		t := dt.Time
		return &t
	}
	return nil
}

// unwrapSingle peels the SurrealDB response wrapper down to a single
// record map, or reports not-ok when the result set is empty.
func unwrapSingle(result interface{}) (map[string]interface{}, bool) {
	if result == nil {
		return nil, false
	}

	// Handle the {status: "OK", result: [...]} wrapper
	if resp, ok := result.(map[string]interface{}); ok {
		if status, ok := resp["status"].(string); ok && status == "OK" {
			if resultData, ok := resp["result"].([]interface{}); ok {
				if len(resultData) == 0 {
					return nil, false
				}
				result = resultData[0]
			} else if resp["result"] != nil {
				result = resp["result"]
			}
		}
	}

	// Handle array wrapper
	if arr, ok := result.([]interface{}); ok {
		if len(arr) == 0 {
			return nil, false
		}
		result = arr[0]
	}

	data, ok := result.(map[string]interface{})
	return data, ok
}
