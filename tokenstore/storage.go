package tokenstore

// Storage is durable client storage for token state. Implementations must be
// safe for concurrent use. Get reports whether a value is present; missing
// keys are not errors.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}
