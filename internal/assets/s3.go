package assets

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// PortraitStore keeps character portraits in S3-compatible object storage
// under stories/<story id>/portraits/<character id>.png.
type PortraitStore struct {
	client     *minio.Client
	bucketName string
	region     string
	initOnce   sync.Once
	initErr    error
}

func NewPortraitStore(cfg S3Config) (*PortraitStore, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &PortraitStore{
		client:     client,
		bucketName: bucket,
		region:     region,
	}, nil
}

func (s *PortraitStore) ensureBucket(ctx context.Context) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("store is nil")
	}
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

func (s *PortraitStore) Put(ctx context.Context, storyID, characterID string, image []byte) error {
	if strings.TrimSpace(storyID) == "" || strings.TrimSpace(characterID) == "" {
		return fmt.Errorf("story id and character id are required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	key := portraitKey(storyID, characterID)
	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(image), int64(len(image)), minio.PutObjectOptions{
		ContentType: "image/png",
	})
	return err
}

// URL returns a presigned link to the portrait, valid for 24 hours.
func (s *PortraitStore) URL(ctx context.Context, storyID, characterID string) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("store is nil")
	}
	key := portraitKey(storyID, characterID)
	u, err := s.client.PresignedGetObject(ctx, s.bucketName, key, 24*time.Hour, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func portraitKey(storyID, characterID string) string {
	return "stories/" + strings.TrimSpace(storyID) + "/portraits/" + strings.TrimSpace(characterID) + ".png"
}
