package archive

import (
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
	"github.com/riskibarqy/tournament-engine/internal/infrastructure/events"
	"github.com/riskibarqy/tournament-engine/internal/platform/logging"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Config struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Prefix    string
}

// S3Sink stores the final standings of every finished tournament as one JSON object
// under <prefix>/<tournamentID>.json. Works against any S3-compatible endpoint.
type S3Sink struct {
	client objectPutter
	bucket string
	prefix string
	logger *logging.Logger
}

func NewS3Sink(ctx context.Context, cfg Config, logger *logging.Logger) (*S3Sink, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, crerr.New("archive bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	sdkCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, crerr.Wrap(err, "load aws sdk config")
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Sink(client, cfg.Bucket, cfg.Prefix, logger), nil
}

func newS3Sink(client objectPutter, bucket, prefix string, logger *logging.Logger) *S3Sink {
	if logger == nil {
		logger = logging.Default()
	}
	return &S3Sink{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger,
	}
}

func (s *S3Sink) Name() string { return "archive" }

func (s *S3Sink) Key(tournamentID string) string {
	return path.Join(s.prefix, tournamentID+".json")
}

func (s *S3Sink) Deliver(ctx context.Context, event tournament.Event) error {
	if event.Type != tournament.EventTournamentFinished {
		return nil
	}

	body, err := events.Encode(event)
	if err != nil {
		return crerr.Wrap(err, "encode standings")
	}

	key := s.Key(event.TournamentID)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"event-id": event.ID,
		},
	})
	if err != nil {
		return crerr.Wrapf(err, "put object %s/%s", s.bucket, key)
	}

	s.logger.InfoContext(ctx, "tournament results archived", "tournament_id", event.TournamentID, "bucket", s.bucket, "key", key)
	return nil
}
