package bloom

import "fmt"

// KeyOf converts v to key bytes. Only []byte and string are keys; anything
// else, nil included, is ErrTypeMismatch.
func KeyOf(v any) ([]byte, error) {
	switch k := v.(type) {
	case []byte:
		return k, nil
	case string:
		return []byte(k), nil
	default:
		return nil, fmt.Errorf("%w, got %T", ErrKeyNotBytes, v)
	}
}
