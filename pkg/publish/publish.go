package publish

import (
	"bytes"
	"context"
	"log/slog"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/progressive/internal/config"
	"github.com/vango-dev/progressive/internal/errors"
	"github.com/vango-dev/progressive/pkg/render"
	"github.com/vango-dev/progressive/pkg/vdom"
)

// Object metadata keys.
const (
	MetaChecksum = "render-checksum"
	MetaMode     = "render-mode"
	MetaChunks   = "render-chunks"
)

const contentType = "text/html; charset=utf-8"

// ObjectPutter is the subset of *s3.Client used by Publisher.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config configures a Publisher.
type Config struct {
	// Bucket is the target bucket. Required.
	Bucket string

	// Prefix is prepended to every key.
	Prefix string

	// Static publishes markup without identity markers or checksum.
	Static bool

	// Header is written in front of every non-empty page, e.g.
	// "<!DOCTYPE html>".
	Header string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Result describes a published page.
type Result struct {
	// Key is the full object key, prefix included.
	Key string
	// Bytes is the size of the stored body.
	Bytes int
	// Chunks is the number of chunks the render produced.
	Chunks int
	// Checksum is the checksum embedded in the page. Zero for static pages.
	Checksum uint64
}

// Publisher renders pages and stores them in a bucket.
type Publisher struct {
	client   ObjectPutter
	renderer *render.Renderer
	config   Config
	logger   *slog.Logger
}

// New creates a Publisher.
func New(client ObjectPutter, renderer *render.Renderer, cfg Config) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("S002").
			WithSuggestion("Set publish.bucket in progressive.json or PROGRESSIVE_PUBLISH_BUCKET")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Publisher{
		client:   client,
		renderer: renderer,
		config:   cfg,
		logger:   cfg.Logger.With("component", "publish"),
	}, nil
}

// Publish renders node and stores it under key.
func (p *Publisher) Publish(ctx context.Context, key string, node *vdom.VNode) (Result, error) {
	if key == "" {
		return Result{}, errors.Newf(errors.CategoryUsage, "publish key must not be empty")
	}

	var opts []render.StreamOption
	if p.config.Static {
		opts = append(opts, render.WithStatic())
	}
	stream, err := p.renderer.RenderStream(ctx, node, opts...)
	if err != nil {
		return Result{}, err
	}
	defer stream.Close()

	var buf bytes.Buffer
	if _, err := stream.WriteTo(&buf); err != nil {
		return Result{}, err
	}
	chunks, _ := stream.Stats()

	body := buf.String()
	res := Result{Key: p.config.Prefix + key, Chunks: chunks}
	mode := "static"
	if sum, ok := stream.Checksum(); ok {
		body = render.AddChecksumToMarkup(body, sum)
		res.Checksum = sum
		mode = "string"
	}
	if body != "" {
		body = p.config.Header + body
	}
	res.Bytes = len(body)

	metadata := map[string]string{
		MetaMode:   mode,
		MetaChunks: strconv.Itoa(chunks),
	}
	if mode == "string" {
		metadata[MetaChecksum] = strconv.FormatUint(res.Checksum, 10)
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.config.Bucket),
		Key:           aws.String(res.Key),
		Body:          bytes.NewReader([]byte(body)),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
		Metadata:      metadata,
	})
	if err != nil {
		return Result{}, errors.New("S001").
			WithDetail("s3://" + p.config.Bucket + "/" + res.Key).
			Wrap(err)
	}

	p.logger.Info("published", "bucket", p.config.Bucket, "key", res.Key, "bytes", res.Bytes, "chunks", chunks)
	return res, nil
}

// NewS3Client builds an S3 client from the publish configuration on top of
// the default AWS configuration chain (environment, shared config and
// credentials files, SSO, instance metadata). A custom endpoint switches to
// path-style addressing, which MinIO and most S3-compatible stores expect.
func NewS3Client(ctx context.Context, cfg config.PublishConfig) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.New("S001").
			WithDetail("load AWS configuration").
			Wrap(err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
