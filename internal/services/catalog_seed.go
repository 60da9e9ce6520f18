package services

import (
	"fmt"
	"io"
	"os"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Price       string   `yaml:"price"`
	Category    string   `yaml:"category"`
	Description string   `yaml:"description"`
	Perks       []string `yaml:"perks"`
	Badge       string   `yaml:"badge"`
	Popular     bool     `yaml:"popular"`
}

// LoadCatalogSeed reads a YAML catalog file.
func LoadCatalogSeed(path string) ([]domain.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog seed: %w", err)
	}
	defer f.Close()
	return ParseCatalogSeed(f)
}

func ParseCatalogSeed(r io.Reader) ([]domain.Product, error) {
	var file seedFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode catalog seed: %w", err)
	}

	out := make([]domain.Product, 0, len(file.Products))
	for _, sp := range file.Products {
		price, err := decimal.NewFromString(sp.Price)
		if err != nil {
			return nil, fmt.Errorf("catalog seed %q: bad price %q: %w", sp.ID, sp.Price, err)
		}
		out = append(out, domain.Product{
			ID:          sp.ID,
			Name:        sp.Name,
			Price:       price,
			Category:    domain.Category(sp.Category),
			Description: sp.Description,
			Perks:       sp.Perks,
			Badge:       sp.Badge,
			Popular:     sp.Popular,
		})
	}
	return out, nil
}
