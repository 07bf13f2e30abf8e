package market

import "fmt"

// Key is anything that resolves to provider keys: a RawKey, a Security or
// a KeyList. The set is closed.
type Key interface {
	appendProviderKeys(dst []string) ([]string, error)
}

// RawKey is a bare A-share code such as "sh600000".
type RawKey string

// KeyList is an ordered collection of keys. Lists may nest.
type KeyList []Key

// UnsupportedKeyError reports a key that cannot be mapped.
type UnsupportedKeyError struct {
	Key Key
}

func (e *UnsupportedKeyError) Error() string {
	return fmt.Sprintf("unsupported key type %T", e.Key)
}

func (k RawKey) appendProviderKeys(dst []string) ([]string, error) {
	return append(dst, "s_"+string(k)), nil
}

func (s Security) appendProviderKeys(dst []string) ([]string, error) {
	return append(dst, s.ProviderKey()), nil
}

func (l KeyList) appendProviderKeys(dst []string) ([]string, error) {
	var err error
	for _, k := range l {
		if k == nil {
			return nil, &UnsupportedKeyError{Key: k}
		}
		if dst, err = k.appendProviderKeys(dst); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// ProviderKeys flattens k into provider keys, preserving order.
func ProviderKeys(k Key) ([]string, error) {
	if k == nil {
		return nil, &UnsupportedKeyError{}
	}
	return k.appendProviderKeys(nil)
}

// Securities wraps a slice of securities as a KeyList.
func Securities(list []Security) KeyList {
	keys := make(KeyList, len(list))
	for i, s := range list {
		keys[i] = s
	}
	return keys
}
