package seed

import (
	_ "embed"
	"fmt"
	"strings"

	"circle/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed badges.yml
var badgeCatalogYAML []byte

type badgeCatalog struct {
	Badges []models.Badge `yaml:"badges"`
}

// LoadBadgeCatalog returns the embedded badge catalog.
func LoadBadgeCatalog() ([]models.Badge, error) {
	return ParseBadgeCatalog(badgeCatalogYAML)
}

// ParseBadgeCatalog decodes a YAML catalog. Slugs must be present and unique.
func ParseBadgeCatalog(data []byte) ([]models.Badge, error) {
	var catalog badgeCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse badge catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(catalog.Badges))
	for i := range catalog.Badges {
		b := &catalog.Badges[i]
		b.Slug = strings.ToLower(strings.TrimSpace(b.Slug))
		if b.Slug == "" || strings.TrimSpace(b.Name) == "" {
			return nil, fmt.Errorf("badge %d: slug and name are required", i)
		}
		if _, dup := seen[b.Slug]; dup {
			return nil, fmt.Errorf("badge %q is listed twice", b.Slug)
		}
		seen[b.Slug] = struct{}{}
	}
	return catalog.Badges, nil
}
