package output

import (
	"bytes"
	"context"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/rinkside/internal/backfill"
)

// ObjectPutter is the subset of the S3 client the sink needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config addresses an S3-compatible bucket. Endpoint is optional and
// switches the client to path-style addressing (R2, MinIO).
type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Sink uploads each checkpoint as whole CSV objects, overwriting the
// previous ones.
type S3Sink struct {
	client ObjectPutter
	bucket string
	prefix string
	logger *zap.Logger
}

// NewS3Client builds an S3 client from cfg. Static credentials are used
// when given, otherwise the default AWS credential chain applies.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load s3 config")
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewS3Sink creates a sink uploading into bucket under prefix.
func NewS3Sink(client ObjectPutter, bucket, prefix string, logger *zap.Logger) *S3Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3Sink{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger.Named("output.s3"),
	}
}

// Key returns the object key for a file name.
func (s *S3Sink) Key(name string) string {
	return path.Join(s.prefix, name)
}

// Checkpoint implements backfill.Sink.
func (s *S3Sink) Checkpoint(ctx context.Context, snap backfill.Snapshot) error {
	var buf bytes.Buffer
	if err := EncodeEvents(&buf, snap.Events); err != nil {
		return errors.Wrap(err, "encode events")
	}
	if err := s.put(ctx, eventsPrefix+snap.Label+".csv", buf.Bytes()); err != nil {
		return err
	}

	if snap.IncludeShifts {
		buf.Reset()
		if err := EncodeShifts(&buf, snap.Shifts); err != nil {
			return errors.Wrap(err, "encode shifts")
		}
		if err := s.put(ctx, shiftsPrefix+snap.Label+".csv", buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func (s *S3Sink) put(ctx context.Context, name string, data []byte) error {
	key := s.Key(name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return errors.Wrapf(err, "upload s3://%s/%s", s.bucket, key)
	}
	s.logger.Debug("snapshot uploaded", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}
