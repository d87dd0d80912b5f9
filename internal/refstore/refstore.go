// Package refstore fetches and caches the per-species reference
// archives (gene/peak interval CSVs, pre-partitioned by chromosome)
// that internal/driver searches against.
package refstore

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
	"github.com/peakscout/peakscout/internal/perrors"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

// archiveNames maps a species identifier to its S3 object name, per
// the public reference bucket's naming scheme.
var archiveNames = map[string]string{
	"mm10":     "mouse_mm10.tar.zst",
	"mm39":     "mouse_mm39.tar.zst",
	"hg19":     "human_hg19.tar.zst",
	"hg38":     "human_hg38.tar.zst",
	"dm6":      "fly_BDGP6.54.tar.zst",
	"ce11":     "worm_WBcel235.tar.zst",
	"danRer11": "zebrafish_GRCz11.tar.zst",
	"sacCer3":  "yeast_R64-1-1.tar.zst",
	"susScr11": "pig_Sscrofa11.1.tar.zst",
	"tair10":   "arabidopsis_TAIR10.tar.zst",
	"xenTro10": "frog_v10.1.tar.zst",
}

// DefaultBucket is the public bucket reference archives are published to.
const DefaultBucket = "cds-peakscout-public"

// IsSupportedSpecies reports whether species has a published reference
// archive.
func IsSupportedSpecies(species string) bool {
	_, ok := archiveNames[species]
	return ok
}

// SupportedSpecies returns the species identifiers with a published
// reference archive, for validation/help text.
func SupportedSpecies() []string {
	names := make([]string, 0, len(archiveNames))
	for species := range archiveNames {
		names = append(names, species)
	}
	sort.Strings(names)
	return names
}

// Options configures EnsureReference.
type Options struct {
	Bucket   string // defaults to DefaultBucket
	CacheDir string // directory reference trees are cached/extracted under
}

// objectGetter is the subset of the S3 API EnsureReference needs,
// narrowed so tests can substitute a fake without a live AWS session.
type objectGetter interface {
	GetObjectWithContext(aws.Context, *s3.GetObjectInput, ...request.Option) (*s3.GetObjectOutput, error)
}

var _ objectGetter = s3iface.S3API(nil)

// EnsureReference returns the directory holding species's extracted
// reference tree (CacheDir/species), downloading and extracting the
// archive from S3 first if it isn't already cached. A species absent
// from archiveNames is a ConfigError.
func EnsureReference(ctx context.Context, log *zap.SugaredLogger, species string, opts Options) (string, error) {
	archive, ok := archiveNames[species]
	if !ok {
		return "", &perrors.ConfigError{Token: species, Msg: "unsupported reference species"}
	}

	speciesDir := filepath.Join(opts.CacheDir, species)
	if hasGeneReference(speciesDir) {
		log.Debugw("reference already cached", "species", species, "dir", speciesDir)
		return speciesDir, nil
	}

	bucket := opts.Bucket
	if bucket == "" {
		bucket = DefaultBucket
	}
	sess, err := session.NewSession()
	if err != nil {
		return "", &perrors.IOError{Path: bucket, Err: err}
	}

	return fetchAndExtract(ctx, log, s3.New(sess), bucket, archive, species, opts.CacheDir)
}

// hasGeneReference reports whether dir already holds an extracted
// gene reference (mirrors the original Lambda's cache check: the
// gene/ subdirectory exists and is non-empty).
func hasGeneReference(dir string) bool {
	entries, err := os.ReadDir(filepath.Join(dir, "gene"))
	return err == nil && len(entries) > 0
}

func fetchAndExtract(ctx context.Context, log *zap.SugaredLogger, client objectGetter, bucket, archive, species, cacheDir string) (string, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", &perrors.IOError{Path: cacheDir, Err: err}
	}

	scratch := filepath.Join(cacheDir, ".scratch-"+uuid.NewString())
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return "", &perrors.IOError{Path: scratch, Err: err}
	}
	defer os.RemoveAll(scratch)

	log.Infow("downloading reference archive", "species", species, "bucket", bucket, "key", archive)
	out, err := client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(archive),
	})
	if err != nil {
		return "", &perrors.IOError{Path: fmt.Sprintf("s3://%s/%s", bucket, archive), Err: err}
	}
	defer out.Body.Close()

	if err := extractZst(out.Body, scratch); err != nil {
		return "", err
	}

	geneDir, err := findGeneRoot(scratch)
	if err != nil {
		return "", err
	}

	speciesDir := filepath.Join(cacheDir, species)
	if err := os.Rename(geneDir, speciesDir); err != nil {
		return "", &perrors.IOError{Path: speciesDir, Err: err}
	}
	log.Infow("reference ready", "species", species, "dir", speciesDir)
	return speciesDir, nil
}

// extractZst decompresses r as zstd and untars the result into outDir.
func extractZst(r io.Reader, outDir string) error {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return &perrors.IOError{Path: outDir, Err: err}
	}
	defer dec.Close()

	tr := tar.NewReader(dec)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &perrors.IOError{Path: outDir, Err: err}
		}

		target := filepath.Join(outDir, hdr.Name)
		if !withinDir(outDir, target) {
			return &perrors.InputError{Source: outDir, Msg: fmt.Sprintf("archive entry %q escapes extraction directory", hdr.Name)}
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return &perrors.IOError{Path: target, Err: err}
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return &perrors.IOError{Path: target, Err: err}
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return &perrors.IOError{Path: target, Err: err}
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return &perrors.IOError{Path: target, Err: err}
			}
			f.Close()
		}
	}
	return nil
}

func withinDir(dir, target string) bool {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// findGeneRoot walks root looking for a "gene" directory holding
// chromosome CSVs, matching archives that nest the species tree
// under an extra path component (e.g. reference/<full-name>/gene).
func findGeneRoot(root string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || found != "" {
			return err
		}
		if !d.IsDir() || d.Name() != "gene" {
			return nil
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil
		}
		for _, e := range entries {
			if !e.IsDir() && filepath.Ext(e.Name()) == ".csv" {
				found = filepath.Dir(path)
				return filepath.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return "", &perrors.IOError{Path: root, Err: err}
	}
	if found == "" {
		return "", &perrors.InputError{Source: root, Msg: "no gene reference directory found in archive"}
	}
	return found, nil
}
