package source

import (
	"context"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/ajitpratap0/tabprofile/pkg/errors"
)

// SplitURI splits scheme://bucket/key into bucket and key.
func SplitURI(uri string) (bucket, key string, err error) {
	idx := strings.Index(uri, "://")
	if idx < 0 {
		return "", "", errors.New(errors.ErrorTypeConfig, "object URI has no scheme").
			WithDetail("uri", uri)
	}
	rest := uri[idx+3:]
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", errors.New(errors.ErrorTypeConfig, "object URI needs a bucket and a key").
			WithDetail("uri", uri)
	}
	return bucket, key, nil
}

// fetchS3 downloads an object into memory.
func (l *Loader) fetchS3(ctx context.Context, uri string) ([]byte, error) {
	bucket, key, err := SplitURI(uri)
	if err != nil {
		return nil, err
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(l.cfg.Region),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to load AWS configuration")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if l.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(l.cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	downloader := manager.NewDownloader(client)

	buf := manager.NewWriteAtBuffer(nil)
	n, err := downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to download S3 object").
			WithDetail("bucket", bucket).
			WithDetail("key", key)
	}

	l.logger.Debug("downloaded S3 object",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Int64("bytes", n))
	return buf.Bytes(), nil
}

// fetchGCS downloads an object into memory.
func (l *Loader) fetchGCS(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := SplitURI(uri)
	if err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	if l.cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(l.cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to create GCS client")
	}
	defer client.Close()

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return nil, errors.Wrap(err, errors.ErrorTypeNotFound, "GCS object not found").
				WithDetail("uri", uri)
		}
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to open GCS object").
			WithDetail("uri", uri)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to read GCS object").
			WithDetail("uri", uri)
	}

	l.logger.Debug("downloaded GCS object",
		zap.String("bucket", bucket),
		zap.String("object", object),
		zap.Int("bytes", len(data)))
	return data, nil
}
