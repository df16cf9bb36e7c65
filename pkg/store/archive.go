package store

import (
	"context"
	"time"

	"go.etcd.io/bbolt"

	"github.com/millie-ai/millie/pkg/models"
)

const TranscriptArchiveFile = "transcripts.db"

var bucketTranscripts = []byte("transcripts")

var _ models.TranscriptArchive = &BoltArchive{}

// BoltArchive stores raw transcript text in a bbolt database, keyed by the
// file name recorded in TranscriptMeta.File.
type BoltArchive struct {
	db *bbolt.DB
}

func NewBoltArchive(path string) (*BoltArchive, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, NewStorageError("failed to open transcript archive", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketTranscripts)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, NewStorageError("failed to create transcript bucket", err)
	}

	return &BoltArchive{db: db}, nil
}

func (a *BoltArchive) Put(ctx context.Context, name, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketTranscripts).Put([]byte(name), []byte(text))
	})
}

func (a *BoltArchive) Get(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var text string
	err := a.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketTranscripts).Get([]byte(name))
		if data == nil {
			return models.NewNotFoundError("transcript " + name)
		}
		// data is only valid for the life of the transaction
		text = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

func (a *BoltArchive) Close() error {
	return a.db.Close()
}
