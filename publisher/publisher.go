package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"banner_agent/design"
	"banner_agent/generator"
	"banner_agent/render"
)

// Export formats.
const (
	FormatJSON  = "json"
	FormatSVG   = "svg"
	FormatFigma = "figma"
	FormatHTML  = "html"
)

// Formats lists every supported export format.
var Formats = []string{FormatJSON, FormatSVG, FormatFigma, FormatHTML}

// ErrUnknownFormat is returned for formats outside Formats.
var ErrUnknownFormat = errors.New("unknown export format")

// Publisher writes a finished run to disk in one or more formats.
type Publisher struct {
	outDir string
	log    logrus.FieldLogger
}

// New creates a Publisher rooted at outDir. Each run goes to outDir/<run-id>/.
func New(outDir string, logger logrus.FieldLogger) (*Publisher, error) {
	if strings.TrimSpace(outDir) == "" {
		return nil, errors.New("output directory is required")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Publisher{outDir: outDir, log: logger}, nil
}

// ParseFormats splits a comma separated list; "all" selects every format.
func ParseFormats(s string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if f == "all" {
			return append([]string(nil), Formats...), nil
		}
		if !isKnown(f) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no export format given")
	}
	return out, nil
}

func isKnown(f string) bool {
	for _, k := range Formats {
		if k == f {
			return true
		}
	}
	return false
}

// Render returns the files of one format keyed by file name.
func Render(res generator.Result, format string) (map[string][]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return nil, err
		}
		return map[string][]byte{"banner.json": append(data, '\n')}, nil
	case FormatSVG:
		return map[string][]byte{"banner.svg": []byte(SVG(res))}, nil
	case FormatFigma:
		files, err := figmaBundle(res)
		if err != nil {
			return nil, err
		}
		out := make(map[string][]byte, len(files))
		for name, data := range files {
			out[filepath.Join("figma-plugin", name)] = data
		}
		return out, nil
	case FormatHTML:
		page, err := HTMLReport(res)
		if err != nil {
			return nil, err
		}
		return map[string][]byte{"report.html": []byte(page)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// SVG renders the run's final layout.
func SVG(res generator.Result) string {
	return render.SVG(res.Canvas, res.Background, res.Layout, render.Assets{LogoDataURI: res.Logo})
}

// Publish renders every requested format and writes the files concurrently.
// It returns the written paths, sorted.
func (p *Publisher) Publish(ctx context.Context, res generator.Result, formats ...string) ([]string, error) {
	if res.RunID == "" {
		return nil, errors.New("result has no run id")
	}
	if len(formats) == 0 {
		return nil, errors.New("no export format given")
	}
	for _, f := range formats {
		if !isKnown(f) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}
	}

	dir := filepath.Join(p.outDir, res.RunID)
	var (
		mu    sync.Mutex
		paths []string
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, format := range formats {
		g.Go(func() error {
			files, err := Render(res, format)
			if err != nil {
				return fmt.Errorf("%s export: %w", format, err)
			}
			for name, data := range files {
				if err := ctx.Err(); err != nil {
					return err
				}
				path := filepath.Join(dir, name)
				if err := writeFile(path, data); err != nil {
					return fmt.Errorf("%s export: %w", format, err)
				}
				mu.Lock()
				paths = append(paths, path)
				mu.Unlock()
			}
			p.log.WithFields(logrus.Fields{"run_id": res.RunID, "format": format, "files": len(files)}).Debug("exported")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(paths)
	p.log.WithFields(logrus.Fields{"run_id": res.RunID, "dir": dir}).Info("export complete")
	return paths, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

type namedElement struct {
	name string
	design.Element
}

// orderedElements follows design.ElementOrder, then the remaining names sorted.
func orderedElements(layout design.Layout) []namedElement {
	out := make([]namedElement, 0, len(layout))
	seen := make(map[string]bool, len(layout))
	for _, name := range design.ElementOrder {
		if el, ok := layout[name]; ok {
			out = append(out, namedElement{name, el})
			seen[name] = true
		}
	}
	var rest []string
	for name := range layout {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		out = append(out, namedElement{name, layout[name]})
	}
	return out
}
