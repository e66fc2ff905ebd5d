package searchdb

type DB interface {
	BuildIndex(documents []*Document) error
	DeleteDocuments(documentIDs []string) error
	FindByStatus(status string) (*Response, error)
	FindByStatusInCells(status string, cells []string) (*Response, error)
	GetDocCount() (uint64, error)
	Close() error
}
