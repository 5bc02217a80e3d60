package digest

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/jobtracker/internal/record"
)

//go:embed schema.cue
var schemaCUE []byte

//go:embed catalog.cue
var defaultCatalogCUE []byte

// Catalog is a fixed list of candidate entries loaded from CUE. It is the
// digest's stand-in for a real matching source.
type Catalog struct {
	entries []record.DigestEntry
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogCUE, "catalog.cue")
}

// LoadCatalog reads a CUE catalog file. The file must define
// entries: [...{title, company, score}].
func LoadCatalog(path string) (*Catalog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(src, path)
}

// ParseCatalog compiles src against the catalog schema and decodes its
// entries. Titles and companies must be non-empty, scores within 0..100.
func ParseCatalog(src []byte, filename string) (*Catalog, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}

	data := ctx.CompileBytes(src, cue.Filename(filename))
	if err := data.Err(); err != nil {
		return nil, fmt.Errorf("compile catalog %s: %w", filename, err)
	}

	if !data.LookupPath(cue.ParsePath("entries")).Exists() {
		return nil, fmt.Errorf("catalog %s: no entries field", filename)
	}

	value := schema.Unify(data)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate catalog %s: %w", filename, err)
	}

	list := value.LookupPath(cue.ParsePath("entries"))
	var entries []record.DigestEntry
	if err := list.Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", filename, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog %s: entries is empty", filename)
	}

	return &Catalog{entries: entries}, nil
}

// Entries returns a copy of the catalog entries in catalog order.
func (c *Catalog) Entries(ctx context.Context) ([]record.DigestEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(c.entries), nil
}

// Len returns the number of entries in the catalog.
func (c *Catalog) Len() int {
	return len(c.entries)
}
