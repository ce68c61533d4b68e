// Package searchindex stores the search documents for bills and bill
// versions. Each collection is an object-store bucket holding one JSON object
// per key; a refresh marker records the last point at which every written
// object was confirmed readable.
package searchindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dharsanguruparan/BillIndex/internal/config"
	"github.com/dharsanguruparan/BillIndex/internal/sink"
)

// ErrNotFound is returned by Get for unknown keys.
var ErrNotFound = errors.New("search document not found")

const refreshObject = "_refresh.json"

// Refresh is the content of a collection's refresh marker.
type Refresh struct {
	Collection  string    `json:"collection"`
	RefreshedAt time.Time `json:"refreshed_at"`
	Confirmed   int       `json:"confirmed"`
}

// MinioIndex wraps MinIO/S3 interactions for the search collections.
type MinioIndex struct {
	client  *minio.Client
	prefix  string
	region  string
	pending *pendingKeys
}

var _ sink.SearchIndex = (*MinioIndex)(nil)

// NewMinio creates a MinIO client from the Config.
func NewMinio(cfg *config.Config) (*MinioIndex, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &MinioIndex{
		client:  client,
		prefix:  cfg.IndexBucketPrefix,
		region:  cfg.S3Region,
		pending: newPendingKeys(),
	}, nil
}

// Bucket maps a collection to its bucket name. Bucket names cannot contain
// underscores.
func (s *MinioIndex) Bucket(collection string) string {
	return s.prefix + strings.ReplaceAll(collection, "_", "-")
}

// EnsureBuckets makes sure every collection bucket exists before use.
func (s *MinioIndex) EnsureBuckets(ctx context.Context) error {
	for _, collection := range []string{sink.CollectionBills, sink.CollectionVersions} {
		bucket := s.Bucket(collection)
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("check bucket %s: %w", bucket, err)
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
				return fmt.Errorf("make bucket %s: %w", bucket, err)
			}
		}
	}
	return nil
}

// Upsert replaces the object stored under key.
func (s *MinioIndex) Upsert(ctx context.Context, collection, key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, key, err)
	}
	if err := s.put(ctx, collection, objectKey(key), data); err != nil {
		return err
	}
	s.pending.add(collection, key)
	return nil
}

// Refresh confirms every object written since the last refresh is readable
// and then rewrites the collection's refresh marker.
func (s *MinioIndex) Refresh(ctx context.Context, collection string) error {
	keys := s.pending.snapshot(collection)

	bucket := s.Bucket(collection)
	for _, key := range keys {
		if _, err := s.client.StatObject(ctx, bucket, objectKey(key), minio.StatObjectOptions{}); err != nil {
			return fmt.Errorf("confirm %s/%s: %w", collection, key, err)
		}
	}
	marker, err := json.Marshal(Refresh{
		Collection:  collection,
		RefreshedAt: time.Now().UTC(),
		Confirmed:   len(keys),
	})
	if err != nil {
		return fmt.Errorf("marshal refresh marker: %w", err)
	}
	if err := s.put(ctx, collection, refreshObject, marker); err != nil {
		return err
	}

	s.pending.confirm(collection, len(keys))
	return nil
}

// Get decodes the document stored under key into out.
func (s *MinioIndex) Get(ctx context.Context, collection, key string, out any) error {
	obj, err := s.client.GetObject(ctx, s.Bucket(collection), objectKey(key), minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return ErrNotFound
		}
		return fmt.Errorf("read %s/%s: %w", collection, key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *MinioIndex) put(ctx context.Context, collection, object string, data []byte) error {
	opts := minio.PutObjectOptions{ContentType: "application/json"}
	_, err := s.client.PutObject(ctx, s.Bucket(collection), object, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, object, err)
	}
	return nil
}

func objectKey(key string) string {
	return key + ".json"
}

// pendingKeys tracks, per collection, the keys written since the last
// confirmed refresh. Keys written while a refresh runs stay pending for the
// next one.
type pendingKeys struct {
	mu   sync.Mutex
	keys map[string][]string
}

func newPendingKeys() *pendingKeys {
	return &pendingKeys{keys: make(map[string][]string)}
}

func (p *pendingKeys) add(collection, key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys[collection] = append(p.keys[collection], key)
}

// snapshot copies the pending keys of a collection in write order.
func (p *pendingKeys) snapshot(collection string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys[collection]...)
}

// confirm drops the first n keys of a collection.
func (p *pendingKeys) confirm(collection string, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rest := p.keys[collection]
	if n > len(rest) {
		n = len(rest)
	}
	if n == len(rest) {
		delete(p.keys, collection)
		return
	}
	p.keys[collection] = append([]string(nil), rest[n:]...)
}
