package letter

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/Veraticus/creditrag/internal/common"
	"github.com/Veraticus/creditrag/internal/model"
)

//go:embed templates/markdown/*.md templates/html/*.html
var templateFS embed.FS

// GenericTemplateID is the fallback used when no category template exists.
const GenericTemplateID = "generic_dispute"

// Format selects the template family and therefore the letter output format.
type Format string

// Supported output formats.
const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat validates a configured format name. Empty selects markdown.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatHTML:
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: unknown letter format %q", common.ErrInvalidConfig, s)
	}
}

// Extension returns the template file extension for the format.
func (f Format) Extension() string {
	if f == FormatHTML {
		return ".html"
	}
	return ".md"
}

// TemplateID maps a category onto its template identifier.
func TemplateID(category model.Category) string {
	return strings.ToLower(strings.TrimSpace(string(category)))
}

// FSStore loads templates named <id><ext> from a filesystem.
type FSStore struct {
	fsys   fs.FS
	root   string
	format Format
}

// NewEmbeddedStore returns the built-in template family for format.
func NewEmbeddedStore(format Format) *FSStore {
	return &FSStore{fsys: templateFS, root: path.Join("templates", string(format)), format: format}
}

// NewDirStore loads templates from dir, e.g. dir/derogatory.md.
func NewDirStore(dir string, format Format) (*FSStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("template directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", common.ErrInvalidConfig, dir)
	}
	return &FSStore{fsys: os.DirFS(dir), root: ".", format: format}, nil
}

// Format reports the family this store serves.
func (s *FSStore) Format() Format {
	return s.format
}

// Load implements service.TemplateStore.
func (s *FSStore) Load(ctx context.Context, id string) (*model.Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("%w: %q", common.ErrTemplateNotFound, id)
	}

	name := path.Join(s.root, id+s.format.Extension())
	data, err := fs.ReadFile(s.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", common.ErrTemplateNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", name, err)
	}

	return &model.Template{ID: id, Content: string(data)}, nil
}
