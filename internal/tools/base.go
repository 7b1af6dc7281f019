package tools

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/prodsight/yield-mcp-server/internal/config"
)

// BaseTool provides common functionality for all tools
type BaseTool struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewBaseTool creates a new base tool
func NewBaseTool(cfg *config.Config, logger *zap.Logger) *BaseTool {
	return &BaseTool{
		cfg:    cfg,
		logger: logger,
	}
}

// GetStringParam safely gets a string parameter from arguments
func GetStringParam(arguments map[string]interface{}, key string, required bool) (string, error) {
	val, exists := arguments[key]
	if !exists || val == nil {
		if required {
			return "", fmt.Errorf("missing required parameter: %s", key)
		}
		return "", nil
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s must be a string", key)
	}
	return str, nil
}

// GetIntParam safely gets an integer parameter from arguments
func GetIntParam(arguments map[string]interface{}, key string, required bool) (int, bool, error) {
	val, exists := arguments[key]
	if !exists || val == nil {
		if required {
			return 0, false, fmt.Errorf("missing required parameter: %s", key)
		}
		return 0, false, nil
	}

	// JSON numbers arrive as float64
	switch v := val.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, false, fmt.Errorf("parameter %s must be an integer", key)
		}
		return int(v), true, nil
	case int:
		return v, true, nil
	default:
		return 0, false, fmt.Errorf("parameter %s must be a number", key)
	}
}

// GetFloatParam safely gets a float parameter from arguments
func GetFloatParam(arguments map[string]interface{}, key string, required bool) (float64, bool, error) {
	val, exists := arguments[key]
	if !exists || val == nil {
		if required {
			return 0, false, fmt.Errorf("missing required parameter: %s", key)
		}
		return 0, false, nil
	}

	switch v := val.(type) {
	case float64:
		return v, true, nil
	case int:
		return float64(v), true, nil
	default:
		return 0, false, fmt.Errorf("parameter %s must be a number", key)
	}
}

// GetNumberListParam safely gets a list of numbers from arguments
func GetNumberListParam(arguments map[string]interface{}, key string, required bool) ([]float64, error) {
	val, exists := arguments[key]
	if !exists || val == nil {
		if required {
			return nil, fmt.Errorf("missing required parameter: %s", key)
		}
		return nil, nil
	}

	list, ok := val.([]interface{})
	if !ok {
		return nil, fmt.Errorf("parameter %s must be a list of numbers", key)
	}

	out := make([]float64, len(list))
	for i, item := range list {
		switch v := item.(type) {
		case float64:
			out[i] = v
		case int:
			out[i] = float64(v)
		default:
			return nil, fmt.Errorf("parameter %s must contain only numbers (element %d is %T)", key, i, item)
		}
	}
	return out, nil
}

// GetStringListParam safely gets a list of strings from arguments
func GetStringListParam(arguments map[string]interface{}, key string, required bool) ([]string, error) {
	val, exists := arguments[key]
	if !exists || val == nil {
		if required {
			return nil, fmt.Errorf("missing required parameter: %s", key)
		}
		return nil, nil
	}

	list, ok := val.([]interface{})
	if !ok {
		return nil, fmt.Errorf("parameter %s must be a list of strings", key)
	}

	out := make([]string, len(list))
	for i, item := range list {
		str, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("parameter %s must contain only strings (element %d is %T)", key, i, item)
		}
		out[i] = str
	}
	return out, nil
}

// GetObjectListParam safely gets a list of objects from arguments
func GetObjectListParam(arguments map[string]interface{}, key string, required bool) ([]map[string]interface{}, error) {
	val, exists := arguments[key]
	if !exists || val == nil {
		if required {
			return nil, fmt.Errorf("missing required parameter: %s", key)
		}
		return nil, nil
	}

	list, ok := val.([]interface{})
	if !ok {
		return nil, fmt.Errorf("parameter %s must be a list of objects", key)
	}

	out := make([]map[string]interface{}, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("parameter %s must contain only objects (element %d is %T)", key, i, item)
		}
		out[i] = obj
	}
	return out, nil
}
