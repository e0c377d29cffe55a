package archive

// StorageInterface defines the contract for report snapshot storage.
// Snapshots are written on generation and read back through the API.
type StorageInterface interface {
	Store(filename string, data []byte) error
	Retrieve(filename string) ([]byte, error)
	List(prefix string) ([]string, error)
}
