package kvdb

const (
	RequestsBucket = "requests"
	SearchesBucket = "searches"
)

var buckets = []string{RequestsBucket, SearchesBucket}

type DB interface {
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
	Delete(bucket string, key string) error
	GetAllKeys(bucket string) ([]string, error)
	GetByPrefix(bucket string, prefix string) ([]KeyValue, error)
	Close() error
}
