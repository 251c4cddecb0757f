package contextbuild

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/ftahirops/swiftsweep/internal/model"
	"golang.org/x/sys/unix"
)

// maxDownloadsListed bounds the Downloads listing, per spec §4.7.
const maxDownloadsListed = 2000

// DownloadsCollector lists files directly under the user's Downloads
// folder (non-recursive, per spec §4.9's old_downloads rule which reasons
// about top-level items only).
type DownloadsCollector struct {
	DownloadsDir string
}

func (c *DownloadsCollector) Name() string { return "downloads" }

func (c *DownloadsCollector) Collect(ctx context.Context, out *model.RecommendationContext) error {
	entries, err := os.ReadDir(c.DownloadsDir)
	if err != nil {
		return err
	}

	var files []model.DownloadedFile
	for _, entry := range entries {
		if ctx.Err() != nil || len(files) >= maxDownloadsListed {
			break
		}
		if entry.IsDir() {
			continue
		}
		full := filepath.Join(c.DownloadsDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}
		created, accessed := fileTimes(full, info)
		files = append(files, model.DownloadedFile{
			Path:       full,
			SizeBytes:  uint64(info.Size()),
			CreatedAt:  created,
			AccessedAt: accessed,
		})
	}
	out.Downloads = files
	return nil
}

// fileTimes reads creation and access times via the BSD stat birthtime/atime
// fields, falling back to ModTime for both when the stat call fails (e.g. on
// a filesystem that doesn't populate birthtime).
func fileTimes(path string, info os.FileInfo) (created, accessed time.Time) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return info.ModTime(), info.ModTime()
	}
	created = time.Unix(st.Birthtimespec.Sec, st.Birthtimespec.Nsec)
	accessed = time.Unix(st.Atimespec.Sec, st.Atimespec.Nsec)
	return created, accessed
}
