package geo

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegions(t *testing.T) {
	regions := Regions()

	assert.Len(t, regions, 16)
	assert.True(t, sort.StringsAreSorted(regions))
	assert.Contains(t, regions, "Metropolitana de Santiago")
	assert.Contains(t, regions, "Magallanes y de la Antártica Chilena")
}

func TestComunes(t *testing.T) {
	assert.Contains(t, Comunes("Valparaíso"), "Viña del Mar")
	assert.Nil(t, Comunes("Atlántida"))

	// Returned slice is a copy; mutating it must not corrupt the catalog.
	cs := Comunes("Maule")
	cs[0] = "mutated"
	assert.Equal(t, "Talca", Comunes("Maule")[0])
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("Biobío", "Concepción"))
	assert.False(t, Valid("Biobío", "Santiago"))
	assert.False(t, Valid("nope", "Santiago"))
}

func TestCatalog(t *testing.T) {
	catalog := Catalog()

	assert.Len(t, catalog, 16)
	assert.Contains(t, catalog["Los Lagos"], "Puerto Montt")
}
