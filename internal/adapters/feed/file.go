package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// FileSource reads a crawler dump from disk. The whole file is decoded at
// once; dumps are a few thousand listings at most.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource { return &FileSource{path: path} }

func (f *FileSource) Listings(ctx context.Context) (map[string]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode dump %s: %w", f.path, err)
	}
	out := map[string]map[string]any{}
	collect(out, doc)
	return out, nil
}
