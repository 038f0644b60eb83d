// Package storage locates and moves the generated book files of a preview job
// in the artifact bucket.
package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
	"golang.org/x/sync/errgroup"

	// Register the bucket drivers selectable through ARTIFACT_BUCKET_URL
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/diffrun/opsdesk/internal/errors"
	"github.com/diffrun/opsdesk/internal/fulfillment/domain"
)

// Artifact folders under output/{job_id}/.
const (
	CoverFolder    = "final_coverpage/"
	InteriorFolder = "approved_output/"
	PreviousFolder = "previous/"

	// TotalPagesMetadata is the object metadata key carrying the interior page count.
	TotalPagesMetadata = "total_pages"

	moveConcurrency = 4
)

// ErrArtifactNotFound indicates a job has no approved file in a folder.
var ErrArtifactNotFound = errors.Wrap(errors.ErrNotFound, "artifact not found")

// ArtifactStore reads and moves job artifacts in a gocloud bucket.
type ArtifactStore struct {
	bucket    *blob.Bucket
	publicURL string
}

// OpenBucket opens the bucket at url, e.g. "s3://bucket?region=ap-south-1",
// "file:///var/artifacts" or "mem://".
func OpenBucket(ctx context.Context, url string) (*blob.Bucket, error) {
	bucket, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact bucket: %w", err)
	}
	return bucket, nil
}

// NewArtifactStore creates an ArtifactStore. publicURL is the prefix that makes
// an object key reachable by the printer.
func NewArtifactStore(bucket *blob.Bucket, publicURL string) *ArtifactStore {
	return &ArtifactStore{
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func jobPrefix(jobID string) string {
	return "output/" + jobID + "/"
}

// Approved returns the cover and interior PDFs approved for jobID.
func (s *ArtifactStore) Approved(ctx context.Context, jobID string) (*domain.Artifacts, error) {
	prefix := jobPrefix(jobID)

	cover, _, err := s.find(ctx, prefix+CoverFolder)
	if err != nil {
		return nil, err
	}
	interior, attrs, err := s.find(ctx, prefix+InteriorFolder)
	if err != nil {
		return nil, err
	}

	pages := 0
	if raw := attrs.Metadata[TotalPagesMetadata]; raw != "" {
		if n, convErr := strconv.Atoi(raw); convErr == nil {
			pages = n
		}
	}

	return &domain.Artifacts{Cover: *cover, Interior: *interior, TotalPages: pages}, nil
}

// find returns the first PDF under prefix.
func (s *ArtifactStore) find(ctx context.Context, prefix string) (*domain.Artifact, *blob.Attributes, error) {
	iter := s.bucket.List(&blob.ListOptions{Prefix: prefix})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			return nil, nil, errors.Wrapf(ErrArtifactNotFound, "no pdf under %s", prefix)
		}
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to list artifacts")
		}
		if obj.IsDir || !strings.HasSuffix(strings.ToLower(obj.Key), ".pdf") {
			continue
		}

		attrs, err := s.bucket.Attributes(ctx, obj.Key)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to read artifact attributes")
		}
		sum := attrs.MD5
		if len(sum) == 0 {
			if sum, err = s.checksum(ctx, obj.Key); err != nil {
				return nil, nil, err
			}
		}

		return &domain.Artifact{
			Key:    obj.Key,
			URL:    s.publicURL + "/" + obj.Key,
			MD5Sum: hex.EncodeToString(sum),
		}, attrs, nil
	}
}

func (s *ArtifactStore) checksum(ctx context.Context, key string) ([]byte, error) {
	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open artifact")
	}
	defer func() { _ = r.Close() }()

	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return nil, errors.Wrap(err, "failed to read artifact")
	}
	return h.Sum(nil), nil
}

// MoveToPrevious moves the approved cover and interior of jobID under
// output/{job_id}/previous/ and returns how many objects moved. A job with no
// approved files moves nothing.
func (s *ArtifactStore) MoveToPrevious(ctx context.Context, jobID string) (int, error) {
	prefix := jobPrefix(jobID)

	var keys []string
	for _, folder := range []string{CoverFolder, InteriorFolder} {
		iter := s.bucket.List(&blob.ListOptions{Prefix: prefix + folder})
		for {
			obj, err := iter.Next(ctx)
			if err == io.EOF {
				break
			}
			if err != nil {
				return 0, errors.Wrap(err, "failed to list artifacts")
			}
			if !obj.IsDir {
				keys = append(keys, obj.Key)
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(moveConcurrency)
	for _, key := range keys {
		dst := prefix + PreviousFolder + strings.TrimPrefix(key, prefix)
		g.Go(func() error {
			if err := s.bucket.Copy(gctx, dst, key, nil); err != nil {
				return errors.Wrapf(err, "failed to copy %s", key)
			}
			if err := s.bucket.Delete(gctx, key); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
				return errors.Wrapf(err, "failed to delete %s", key)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(keys), nil
}
