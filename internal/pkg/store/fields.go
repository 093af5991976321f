package store

import (
	"fmt"
	"time"
)

// Typed accessors for document fields. Stored numeric fields may come back
// as int, int64 or float64 depending on the backend, so IntField folds all
// three.

func StringField(d Document, key string) (string, error) {
	v, ok := d.Data[key]
	if !ok {
		return "", fmt.Errorf("missing field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q is %T, want string", key, v)
	}
	return s, nil
}

func TimeField(d Document, key string) (time.Time, error) {
	v, ok := d.Data[key]
	if !ok {
		return time.Time{}, fmt.Errorf("missing field %q", key)
	}
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("field %q is %T, want time.Time", key, v)
	}
	return t, nil
}

func IntField(d Document, key string) (int, error) {
	v, ok := d.Data[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("field %q is %T, want integer", key, v)
	}
}
