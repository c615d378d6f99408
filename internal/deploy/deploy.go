// Package deploy publishes a built landscape website to an S3 bucket.
package deploy

import (
	"context"
	"crypto/md5" //nolint:gosec // S3 ETags of single-part uploads are MD5 digests
	"encoding/hex"
	stdErrors "errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/gabriel-vasile/mimetype"

	"github.com/bayoss/landscape2/internal/foundation/errors"
	"github.com/bayoss/landscape2/internal/logfields"
	"github.com/bayoss/landscape2/internal/observability"
	"github.com/bayoss/landscape2/internal/parallel"
)

// DefaultConcurrency is the number of uploads in flight.
const DefaultConcurrency = 8

// ObjectAPI is the subset of the S3 client used by the uploader.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Options configures a deploy.
type Options struct {
	Bucket      string
	Prefix      string // key prefix inside the bucket, without leading slash
	Region      string
	Endpoint    string // custom S3 endpoint (S3-compatible stores)
	PathStyle   bool
	Concurrency int
}

// Result summarizes a deploy.
type Result struct {
	Uploaded int
	Skipped  int
	Failed   []string // object keys, sorted
}

// Uploader mirrors a local directory into a bucket.
type Uploader struct {
	api  ObjectAPI
	opts Options
}

// New creates an Uploader over api.
func New(api ObjectAPI, opts Options) (*Uploader, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, errors.ConfigError("deploy: bucket is required").Build()
	}
	if api == nil {
		return nil, errors.ConfigError("deploy: S3 client is required").Build()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	opts.Prefix = strings.Trim(opts.Prefix, "/")
	return &Uploader{api: api, opts: opts}, nil
}

// NewS3 creates an Uploader backed by an S3 client configured from the
// default AWS credential chain.
func NewS3(ctx context.Context, opts Options) (*Uploader, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, errors.ConfigError("deploy: bucket is required").Build()
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to load AWS configuration").Build()
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	})
	return New(client, opts)
}

type localFile struct {
	path string
	key  string
}

// Deploy uploads every file below contentDir whose content differs from the
// object already stored under the same key. All uploads run to completion;
// any failed upload fails the deploy.
func (u *Uploader) Deploy(ctx context.Context, contentDir string) (*Result, error) {
	info, err := os.Stat(contentDir)
	if err != nil || !info.IsDir() {
		return nil, errors.ConfigError("deploy: content directory does not exist").
			WithContext("path", contentDir).
			Build()
	}

	files, err := u.scan(contentDir)
	if err != nil {
		return nil, err
	}
	remote, err := u.remoteETags(ctx)
	if err != nil {
		return nil, err
	}
	observability.InfoContext(ctx, "Deploying landscape website",
		logfields.Bucket(u.opts.Bucket), logfields.Count(len(files)), logfields.Concurrency(u.opts.Concurrency))

	results := parallel.MapBounded(ctx, files, u.opts.Concurrency,
		func(f localFile) string { return f.key },
		func(ctx context.Context, f localFile) (bool, error) {
			if err := ctx.Err(); err != nil {
				return false, err
			}
			return u.upload(ctx, f, remote[f.key])
		})

	res := &Result{}
	for _, f := range files {
		r := results[f.key]
		switch {
		case r.Err != nil:
			observability.ErrorContext(ctx, "Upload failed", logfields.Path(f.key), logfields.Error(r.Err))
			res.Failed = append(res.Failed, f.key)
		case r.Value:
			res.Uploaded++
		default:
			res.Skipped++
		}
	}
	sort.Strings(res.Failed)

	if len(res.Failed) > 0 {
		return res, errors.ExternalError(fmt.Sprintf("%d of %d uploads failed", len(res.Failed), len(files))).
			WithContext("bucket", u.opts.Bucket).
			Build()
	}
	observability.InfoContext(ctx, "Landscape website deployed",
		logfields.Bucket(u.opts.Bucket), logfields.Count(res.Uploaded))
	return res, nil
}

func (u *Uploader) scan(root string) ([]localFile, error) {
	var files []localFile
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, localFile{path: p, key: u.key(filepath.ToSlash(rel))})
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to scan content directory").
			WithContext("path", root).
			Build()
	}
	return files, nil
}

func (u *Uploader) key(rel string) string {
	if u.opts.Prefix == "" {
		return rel
	}
	return path.Join(u.opts.Prefix, rel)
}

// remoteETags lists the objects under the prefix and returns their ETags
// keyed by object key.
func (u *Uploader) remoteETags(ctx context.Context) (map[string]string, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(u.opts.Bucket)}
	if u.opts.Prefix != "" {
		input.Prefix = aws.String(u.opts.Prefix + "/")
	}
	etags := make(map[string]string)
	pages := s3.NewListObjectsV2Paginator(u.api, input)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "failed to list bucket objects", u.opts.Bucket)
		}
		for _, obj := range page.Contents {
			etags[aws.ToString(obj.Key)] = strings.Trim(aws.ToString(obj.ETag), `"`)
		}
	}
	return etags, nil
}

// upload puts f unless its MD5 matches remoteETag. It reports whether the
// object was written.
func (u *Uploader) upload(ctx context.Context, f localFile, remoteETag string) (bool, error) {
	sum, err := md5File(f.path)
	if err != nil {
		return false, err
	}
	if remoteETag != "" && remoteETag == sum {
		return false, nil
	}

	file, err := os.Open(f.path)
	if err != nil {
		return false, err
	}
	defer func() { _ = file.Close() }()

	_, err = u.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.opts.Bucket),
		Key:         aws.String(f.key),
		Body:        file,
		ContentType: aws.String(ContentType(f.path)),
	})
	if err != nil {
		return false, classify(err, "failed to upload object", u.opts.Bucket)
	}
	observability.DebugContext(ctx, "Object uploaded", logfields.Path(f.key))
	return true, nil
}

// ContentType picks the content type of a file from its extension, sniffing
// the content when the extension is unknown.
func ContentType(p string) string {
	if ct := mime.TypeByExtension(filepath.Ext(p)); ct != "" {
		return ct
	}
	mt, err := mimetype.DetectFile(p)
	if err != nil {
		return "application/octet-stream"
	}
	return mt.String()
}

func md5File(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	h := md5.New() //nolint:gosec // see import
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// classify maps S3 API errors onto error categories.
func classify(err error, msg, bucket string) error {
	var apiErr smithy.APIError
	if stdErrors.As(err, &apiErr) {
		var b *errors.ErrorBuilder
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			b = errors.AuthError(msg)
		case "NoSuchBucket":
			b = errors.NotFoundError(msg)
		default:
			b = errors.ExternalError(msg)
		}
		return b.WithCause(err).
			WithContext("bucket", bucket).
			WithContext("code", apiErr.ErrorCode()).
			Build()
	}
	return errors.NetworkError(msg).WithCause(err).WithContext("bucket", bucket).Build()
}
