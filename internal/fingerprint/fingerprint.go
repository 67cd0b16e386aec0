// Package fingerprint derives content fingerprints for files being
// registered. The digest is computed locally over the raw bytes; file
// contents never leave the process.
package fingerprint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"regexp"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Prefix is prepended to the hex digest so the fingerprint can be used
// directly as a service-level identifier and URL query parameter.
const Prefix = "0x"

var (
	// ErrRead indicates the file bytes could not be read.
	ErrRead = errors.New("fingerprint: read failed")
	// ErrDigest indicates the hashing primitive failed mid-digest.
	ErrDigest = errors.New("fingerprint: digest failed")
)

// canonicalForm matches the prefix plus a full sha256 digest in
// lowercase hex. Uppercase digests are rejected; the service treats the
// fingerprint as an opaque case-sensitive key.
var canonicalForm = regexp.MustCompile(`^0x[0-9a-f]{64}$`)

// Compute digests the full contents of r and renders the result in
// canonical form. Identical bytes always yield an identical fingerprint
// regardless of filename or metadata.
func Compute(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", errors.Wrapf(ErrRead, "copy into hasher: %v", err)
	}
	return Prefix + hex.EncodeToString(h.Sum(nil)), nil
}

// ComputeBytes digests an in-memory byte slice.
func ComputeBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return Prefix + hex.EncodeToString(sum[:])
}

// ComputeFile opens path and digests its contents.
func ComputeFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(ErrRead, "open %s: %v", path, err)
	}
	defer f.Close()
	return Compute(f)
}

// Valid reports whether s is a canonical fingerprint string.
func Valid(s string) bool {
	return canonicalForm.MatchString(s)
}

// FileDigest pairs a path with its computed fingerprint.
type FileDigest struct {
	Path   string
	Digest string
}

// ComputeAll digests every path concurrently, bounded by the number of
// CPUs. Results preserve input order. The first failure cancels the
// remaining work.
func ComputeAll(ctx context.Context, paths []string) ([]FileDigest, error) {
	results := make([]FileDigest, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			digest, err := ComputeFile(path)
			if err != nil {
				return err
			}
			results[i] = FileDigest{Path: path, Digest: digest}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
