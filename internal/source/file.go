package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileSource reads a catalog from a JSON or YAML file.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (f *FileSource) Fetch(_ context.Context) ([]domain.Product, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataSourceUnreachable, err)
	}

	var products []domain.Product
	switch strings.ToLower(filepath.Ext(f.path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &products)
	default:
		err = json.Unmarshal(data, &products)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrDataSourceUnreachable, f.path, err)
	}

	return products, nil
}
