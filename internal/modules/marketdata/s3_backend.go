package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// S3Config configures the direct-bucket lookup backend
type S3Config struct {
	Bucket    string
	Region    string
	Term      string
	Topic     string
	SubFolder string

	// Optional static credentials; the default AWS chain is used when empty
	AccessKeyID     string
	SecretAccessKey string
}

// S3Backend reads ticker objects straight from the lake's backing bucket,
// bypassing the HTTP proxy. Deployments holding AWS credentials use this
// via LOOKUP_BACKEND=s3; the session token is not consulted.
type S3Backend struct {
	cfg    S3Config
	client *s3.Client
	log    zerolog.Logger
}

// NewS3Backend creates a direct S3 lookup backend.
func NewS3Backend(ctx context.Context, cfg S3Config, log zerolog.Logger) (*S3Backend, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Backend{
		cfg:    cfg,
		client: s3.NewFromConfig(awsCfg),
		log:    log.With().Str("client", "s3").Logger(),
	}, nil
}

// Lookup fetches {term}/{topic}/{sub_folder}/{symbol}.json from the bucket
// and applies the same case-insensitive symbol filter as the lake proxy.
func (b *S3Backend) Lookup(ctx context.Context, _ string, symbol string) ([]TickerRecord, error) {
	key := fmt.Sprintf("%s/%s/%s/%s.json", b.cfg.Term, b.cfg.Topic, b.cfg.SubFolder, symbol)

	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrUnknownSymbol
		}
		b.log.Error().Err(err).Str("key", key).Msg("GetObject failed")
		return nil, ErrUnavailable
	}
	defer out.Body.Close()

	var entries []lakeEntry
	if err := json.NewDecoder(out.Body).Decode(&entries); err != nil {
		b.log.Error().Err(err).Str("key", key).Msg("Failed to decode object")
		return nil, ErrUnavailable
	}

	records := filterBySymbol(entries, symbol)
	b.log.Debug().Str("symbol", symbol).Int("records", len(records)).Msg("Direct S3 lookup complete")
	return records, nil
}
