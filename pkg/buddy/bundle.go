package buddy

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/odvcencio/buddy/pkg/errors"
)

// artifactName builds the bundle artifact filename. The assistant id is part
// of the name so artifacts from a replaced assistant are recognizably stale.
func artifactName(profileName, bundleName, assistantID, ext string) string {
	return fmt.Sprintf("%s-%s-bundle-%s.%s", profileName, bundleName, assistantID, ext)
}

// sourceFiles walks srcDir and returns every regular file whose base name
// matches one of the globs, sorted for stable bundle ordering.
func sourceFiles(srcDir string, globs []string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		for _, glob := range globs {
			ok, err := filepath.Match(glob, d.Name())
			if err != nil {
				return err
			}
			if ok {
				out = append(out, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBundleIO, "listing bundle sources").
			WithContext("src_dir", srcDir)
	}
	sort.Strings(out)
	return out, nil
}

// bundleContent concatenates the given files, each prefixed with a path
// header so the assistant can cite where a passage came from.
func bundleContent(paths []string) (string, error) {
	var sb strings.Builder
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeBundleIO, "reading bundle source").
				WithContext("path", path)
		}
		fmt.Fprintf(&sb, "\n// ==== file path: %s\n\n", path)
		sb.Write(data)
		sb.WriteString("\n\n\n")
	}
	return sb.String(), nil
}

var (
	tokenizerOnce sync.Once
	tokenizer     *tiktoken.Tiktoken
)

// countTokens estimates how many tokens a bundle will cost the assistant.
// Falls back to the rough bytes/4 heuristic when the encoding is
// unavailable offline.
func countTokens(content string) int {
	tokenizerOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			tokenizer = enc
		}
	})
	if tokenizer == nil {
		return len(content) / 4
	}
	return len(tokenizer.Encode(content, nil, nil))
}
