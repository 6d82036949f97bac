package static

import (
	"encoding/json"
	"os"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jimlawless/whereami"
)

// LoadDisplayOverrides читает выгрузку CMS: JSON-объект вида {"<product id>": {"name", "description", "image"}}.
// Пустой путь означает отсутствие переопределений.
func LoadDisplayOverrides(path string) (map[string]domain.DisplayOverride, error) {
	if path == "" {
		return map[string]domain.DisplayOverride{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	overrides := make(map[string]domain.DisplayOverride)
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return overrides, nil
}
