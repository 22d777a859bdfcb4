package business

import (
	"fmt"
	"strings"

	"github.com/pariz/gountries"
)

const DefaultRegion = "BR"

// Region is the country the catalog rankings refer to
type Region struct {
	Code string
	Name string
}

// NewRegion resolves an ISO 3166-1 alpha-2 or alpha-3 code. An empty code means DefaultRegion.
func NewRegion(code string) (Region, error) {
	if code == "" {
		code = DefaultRegion
	}
	country, err := gountries.New().FindCountryByAlpha(strings.ToUpper(code))
	if err != nil {
		return Region{}, fmt.Errorf("unknown region %q: %w", code, err)
	}
	return Region{
		Code: country.Alpha2,
		Name: country.Name.Common,
	}, nil
}
