package module

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/edvald/garden-1/internal/config"
)

const (
	versionHexLength = 10

	// IgnoreFileName lists paths, one pattern per line, left out of the version.
	IgnoreFileName = ".gardenignore"
)

type fileDigest struct {
	rel    string
	digest []byte
}

// hashFiles returns a digest per regular file under dir, sorted by relative
// path. Hidden entries, the metadata dir and paths matching ignore or the
// module's ignore file are skipped. An empty dir means the module has no sources.
func hashFiles(ctx context.Context, dir string, ignore []string) ([]fileDigest, error) {
	if dir == "" {
		return nil, nil
	}

	fromFile, err := readIgnoreFile(filepath.Join(dir, IgnoreFileName))
	if err != nil {
		return nil, err
	}
	patterns := append(append([]string{}, ignore...), fromFile...)

	var out []fileDigest
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == dir {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if strings.HasPrefix(d.Name(), ".") || d.Name() == config.MetadataDir || ignored(rel, patterns) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		digest, err := fileSum(p)
		if err != nil {
			return err
		}
		out = append(out, fileDigest{rel: rel, digest: digest})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].rel < out[j].rel })
	return out, nil
}

// readIgnoreFile returns the patterns in path. Blank lines and # comments are
// skipped. A missing file yields no patterns.
func readIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, scanner.Err()
}

// ignored reports whether rel, a slash-separated path relative to the module
// dir, matches one of patterns. A pattern without a slash matches the base
// name at any depth; otherwise it matches from the module root. A trailing
// slash is accepted for directories.
func ignored(rel string, patterns []string) bool {
	base := path.Base(rel)
	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(strings.TrimSuffix(pattern, "/"), "/")
		if pattern == "" {
			continue
		}
		target := rel
		if !strings.Contains(pattern, "/") {
			target = base
		}
		if ok, _ := path.Match(pattern, target); ok {
			return true
		}
	}
	return false
}

func fileSum(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// computeVersionString hashes the module definition, its files and its
// dependency versions. All fields are length-prefixed and collections sorted.
func computeVersionString(m *Module, files []fileDigest, depVersions map[string]string) string {
	h := sha256.New()

	writeField(h, []byte(m.Name))
	writeField(h, []byte(m.Type))
	writeField(h, []byte(m.Build.Command))

	writeCount(h, len(files))
	for _, f := range files {
		writeField(h, []byte(f.rel))
		writeField(h, f.digest)
	}

	names := make([]string, 0, len(depVersions))
	for name := range depVersions {
		names = append(names, name)
	}
	sort.Strings(names)
	writeCount(h, len(names))
	for _, name := range names {
		writeField(h, []byte(name))
		writeField(h, []byte(depVersions[name]))
	}

	return "v-" + hex.EncodeToString(h.Sum(nil))[:versionHexLength]
}

func writeCount(h hash.Hash, n int) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(n))
	h.Write(buf[:])
}

func writeField(h hash.Hash, data []byte) {
	writeCount(h, len(data))
	h.Write(data)
}
