package files

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"batchtube/internal/domain/consts"
	"batchtube/internal/utils/logging"

	"github.com/spf13/afero"
)

// SimilarPair is two files whose normalized names resemble each other.
type SimilarPair struct {
	A, B  string
	Score float64
}

// leading date stamps like "2025-01-02_" or "20250102-".
var datePrefixRe = regexp.MustCompile(`^\d{4}[-_]?\d{2}[-_]?\d{2}[-_ ]*`)

// FindDuplicatesByHash groups video files under root by content hash. Only
// groups with more than one file are returned, keyed by hex digest.
func FindDuplicatesByHash(fs afero.Fs, root string) (map[string][]string, error) {
	byHash := make(map[string][]string)

	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isVideoFile(path) {
			return nil
		}
		digest, hashErr := hashFile(fs, path)
		if hashErr != nil {
			logging.W("Skipping unreadable file %q: %v", path, hashErr)
			return nil
		}
		byHash[digest] = append(byHash[digest], path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %q: %w", root, err)
	}

	for digest, paths := range byHash {
		if len(paths) < 2 {
			delete(byHash, digest)
		}
	}
	return byHash, nil
}

// FindSimilarNames pairs video files under root whose normalized names score
// at or above threshold (0..1) by Levenshtein ratio.
func FindSimilarNames(fs afero.Fs, root string, threshold float64) ([]SimilarPair, error) {
	var paths []string
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && isVideoFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %q: %w", root, err)
	}

	var pairs []SimilarPair
	for i := 0; i < len(paths); i++ {
		for j := i + 1; j < len(paths); j++ {
			score := levenshteinRatio(normalizeName(paths[i]), normalizeName(paths[j]))
			if score >= threshold {
				pairs = append(pairs, SimilarPair{A: paths[i], B: paths[j], Score: score})
			}
		}
	}
	return pairs, nil
}

// hashFile computes the SHA-256 digest of a file in chunks.
func hashFile(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// isVideoFile reports whether the path carries a known video extension.
func isVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, valid := range consts.AllVidExtensions {
		if ext == valid {
			return true
		}
	}
	return false
}

// normalizeName reduces a path to a comparable name: base name without
// extension, lowercased, date prefix stripped, separators collapsed.
func normalizeName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ToLower(name)
	name = datePrefixRe.ReplaceAllString(name, "")
	name = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(name)
	return strings.Join(strings.Fields(name), " ")
}

// levenshteinRatio returns name similarity in [0.0, 1.0].
func levenshteinRatio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	dist := levenshtein([]rune(a), []rune(b))
	longer := len([]rune(a))
	if l := len([]rune(b)); l > longer {
		longer = l
	}
	return 1.0 - float64(dist)/float64(longer)
}

// levenshtein computes edit distance with a two-row matrix.
func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
