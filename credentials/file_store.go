package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const credentialsFileName = "credentials.json"

// FileStore persists credentials as a JSON file under the data folder.
// Writes go through a temp file and rename so a crash mid-write never leaves
// a half-written record behind.
type FileStore struct {
	folder string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(folder string) (*FileStore, error) {
	if folder == "" {
		return nil, errors.New("[NewFileStore] data folder is required")
	}
	return &FileStore{folder: folder}, nil
}

func (fs *FileStore) path() string {
	return filepath.Join(fs.folder, credentialsFileName)
}

func (fs *FileStore) Load() (*Record, error) {
	data, err := os.ReadFile(fs.path())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileStore.Load] reading credentials file")
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrap(err, "[FileStore.Load] decoding credentials file")
	}
	if record.Token == "" && len(record.User) == 0 {
		return nil, nil
	}
	return &record, nil
}

func (fs *FileStore) Save(record Record) error {
	if err := os.MkdirAll(fs.folder, 0o700); err != nil {
		return errors.Wrap(err, "[FileStore.Save] creating data folder")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "[FileStore.Save] encoding credentials")
	}

	tmp, err := os.CreateTemp(fs.folder, credentialsFileName+".*")
	if err != nil {
		return errors.Wrap(err, "[FileStore.Save] creating temp file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileStore.Save] writing credentials")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileStore.Save] setting file mode")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileStore.Save] closing temp file")
	}
	if err := os.Rename(tmpName, fs.path()); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileStore.Save] replacing credentials file")
	}
	return nil
}

func (fs *FileStore) Clear() error {
	err := os.Remove(fs.path())
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileStore.Clear] removing credentials file")
	}
	return nil
}
