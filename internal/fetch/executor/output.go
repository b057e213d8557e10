package executor

import (
	"os"
	"path/filepath"
	"strings"
)

// mediaExts are the output extensions the retrieval tool is expected to
// produce. Partial downloads and metadata side files are never candidates.
var mediaExts = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".webm": true,
	".mov":  true,
	".avi":  true,
	".flv":  true,
	".m4v":  true,
	".ts":   true,
	".m4a":  true,
	".mp3":  true,
	".opus": true,
	".ogg":  true,
	".wav":  true,
}

// findOutputFile locates the attempt's output in the working directory:
// most-recently-modified media file, ties broken by larger size. Returns ""
// when nothing matching materialized, which the engine classifies as
// FileNotFound.
func findOutputFile(workDir string) string {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return ""
	}

	best := ""
	var bestMod int64
	var bestSize int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !mediaExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		mod := info.ModTime().UnixNano()
		if best == "" || mod > bestMod || (mod == bestMod && info.Size() > bestSize) {
			best = filepath.Join(workDir, entry.Name())
			bestMod = mod
			bestSize = info.Size()
		}
	}
	return best
}
