// Package bundle finds the log files of a support bundle.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/vburojevic/sbsearch/internal/domain"
	"go.uber.org/zap"
)

// DefaultProbeBytes is how much of each file is read to decide whether it is text.
const DefaultProbeBytes = 8000

// Layouts maps a named bundle layout to the include globs it implies.
var Layouts = map[string][]string{
	"":          nil,
	"all":       nil,
	"harvester": {"logs/**", "**/logs/**"},
}

// Criteria selects which files of the bundle are returned.
type Criteria struct {
	// Resource selects files whose bundle-relative path contains it, case-insensitive.
	Resource string
	// ScanAll selects every text file. Keyword searches always scan everything.
	ScanAll bool
}

func (c Criteria) String() string {
	if c.ScanAll || c.Resource == "" {
		return "all files"
	}
	return fmt.Sprintf("resource %q", c.Resource)
}

// Options configures a Locator.
type Options struct {
	Include    []string
	Exclude    []string
	ProbeBytes int
	Logger     *zap.Logger
}

// SkipReason tells why a candidate was left out.
type SkipReason string

const (
	SkipArchive    SkipReason = "archive"
	SkipBinary     SkipReason = "binary"
	SkipUnreadable SkipReason = "unreadable"
)

// Skipped is a file that matched the criteria but cannot be read as a log.
type Skipped struct {
	Rel    string     `json:"rel"`
	Reason SkipReason `json:"reason"`
}

// Report is the full outcome of a walk.
type Report struct {
	Root    string
	Files   []domain.ResourceFile
	Skipped []Skipped
}

// Locator walks one bundle root.
type Locator struct {
	root    string
	include []string
	exclude []string
	probe   int
	logger  *zap.Logger
}

// New validates the glob patterns in opts and returns a Locator for root.
func New(root string, opts Options) (*Locator, error) {
	for _, p := range append(append([]string{}, opts.Include...), opts.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	probe := opts.ProbeBytes
	if probe <= 0 {
		probe = DefaultProbeBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locator{
		root:    root,
		include: opts.Include,
		exclude: opts.Exclude,
		probe:   probe,
		logger:  logger,
	}, nil
}

// Locate returns the readable log files selected by c, sorted by relative path.
func (l *Locator) Locate(ctx context.Context, c Criteria) ([]domain.ResourceFile, error) {
	r, err := l.Walk(ctx, c)
	if err != nil {
		return nil, err
	}
	return r.Files, nil
}

// Walk is Locate that also reports what was skipped.
func (l *Locator) Walk(ctx context.Context, c Criteria) (*Report, error) {
	root, err := filepath.Abs(l.root)
	if err != nil {
		return nil, domain.NewError(domain.KindBundleNotFound, l.root, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, domain.NewError(domain.KindBundleNotFound, l.root, err)
	}
	if !info.IsDir() {
		return nil, domain.NewError(domain.KindBundleNotFound, l.root, errors.New("not a directory"))
	}

	resource := strings.ToLower(c.Resource)
	if c.ScanAll {
		resource = ""
	}

	report := &Report{Root: root}
	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == root {
				return domain.NewError(domain.KindBundleNotFound, l.root, err)
			}
			l.logger.Debug("walk error", zap.String("path", p), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if l.excluded(rel) {
				return fs.SkipDir
			}
			return nil
		}

		fi, ok := regularFile(p, d)
		if !ok {
			return nil
		}
		if l.excluded(rel) || !l.included(rel) {
			return nil
		}
		if resource != "" && !strings.Contains(strings.ToLower(rel), resource) {
			return nil
		}

		kind, probeErr := probe(p, l.probe)
		switch {
		case probeErr != nil:
			l.logger.Warn("cannot read file", zap.String("path", rel), zap.Error(probeErr))
			report.Skipped = append(report.Skipped, Skipped{Rel: rel, Reason: SkipUnreadable})
			return nil
		case kind == contentArchive:
			l.logger.Debug("skipping archive", zap.String("path", rel))
			report.Skipped = append(report.Skipped, Skipped{Rel: rel, Reason: SkipArchive})
			return nil
		case kind == contentBinary:
			l.logger.Debug("skipping binary", zap.String("path", rel))
			report.Skipped = append(report.Skipped, Skipped{Rel: rel, Reason: SkipBinary})
			return nil
		}

		report.Files = append(report.Files, domain.ResourceFile{
			Path:     p,
			Rel:      rel,
			Resource: ResourceName(rel),
			Size:     fi.Size(),
			ModTime:  fi.ModTime().UTC(),
		})
		return nil
	})
	if walkErr != nil {
		var de *domain.Error
		if errors.As(walkErr, &de) {
			return nil, de
		}
		return nil, walkErr
	}

	if len(report.Files) == 0 {
		return report, domain.NewError(domain.KindNoMatchingFiles, fmt.Sprintf("%s in %s", c, l.root), nil)
	}

	sort.Slice(report.Files, func(i, j int) bool { return report.Files[i].Rel < report.Files[j].Rel })
	for i := range report.Files {
		report.Files[i].ID = i
	}
	l.logger.Info("located files",
		zap.String("root", root),
		zap.Stringer("criteria", c),
		zap.Int("files", len(report.Files)),
		zap.Int("skipped", len(report.Skipped)))
	return report, nil
}

func (l *Locator) included(rel string) bool {
	if len(l.include) == 0 {
		return true
	}
	return matchAny(l.include, rel)
}

func (l *Locator) excluded(rel string) bool {
	return matchAny(l.exclude, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// regularFile resolves d to a regular file, following symlinks.
func regularFile(p string, d fs.DirEntry) (fs.FileInfo, bool) {
	if d.Type()&fs.ModeSymlink != 0 {
		fi, err := os.Stat(p)
		if err != nil || !fi.Mode().IsRegular() {
			return nil, false
		}
		return fi, true
	}
	if !d.Type().IsRegular() {
		return nil, false
	}
	fi, err := d.Info()
	if err != nil {
		return nil, false
	}
	return fi, true
}

// ResourceName derives the resource identity of a bundle-relative path: the
// parent directory joined with the file name without extension, for example
// "virt-launcher-vm-00-pb825/compute".
func ResourceName(rel string) string {
	rel = filepath.ToSlash(rel)
	base := path.Base(rel)
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	dir := path.Base(path.Dir(rel))
	if dir == "." || dir == "/" {
		return base
	}
	return dir + "/" + base
}
