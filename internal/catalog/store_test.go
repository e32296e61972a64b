package catalog_test

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/sensorquote/internal/catalog"
	"github.com/Simplici0/sensorquote/internal/db"
	"github.com/Simplici0/sensorquote/internal/migrations"
	"github.com/Simplici0/sensorquote/internal/pricing"
	"github.com/Simplici0/sensorquote/internal/seed"
)

func newSeededStore(t *testing.T) (*catalog.Store, *sql.DB) {
	t.Helper()

	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, migrations.Up(database))
	_, err = seed.Run(database)
	require.NoError(t, err)

	return catalog.NewStore(database), database
}

func variantID(t *testing.T, database *sql.DB, model string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, database.QueryRow(`SELECT id FROM product_variants WHERE model_number = ?`, model).Scan(&id))
	return id
}

func TestStore_GetVariantAndMaterial(t *testing.T) {
	store, database := newSeededStore(t)
	id := variantID(t, database, `LS2000-115VAC-H-10"`)

	v, err := store.GetVariant(id)
	require.NoError(t, err)
	assert.Equal(t, "H", v.MaterialCode)
	assert.Equal(t, "115VAC", v.Voltage)
	assert.Equal(t, "535", v.BasePrice.String())
	require.NotNil(t, v.BaseLength)
	assert.Equal(t, 10.0, *v.BaseLength)

	m, err := store.GetMaterial("U")
	require.NoError(t, err)
	require.NotNil(t, m.LengthAdderPerInch)
	assert.Equal(t, "40", m.LengthAdderPerInch.String())
	assert.Nil(t, m.LengthAdderPerFoot)
	assert.True(t, m.HasNonstandardLengthSurcharge)
	assert.Equal(t, "20", m.BasePriceAdder.String())
}

func TestStore_NotFound(t *testing.T) {
	store, _ := newSeededStore(t)

	_, err := store.GetVariant(10_000)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = store.GetMaterial("Z")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = store.GetAvailability("T", "LS7000/2")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = store.GetOption(10_000)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = store.GetFamily(10_000)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestStore_ReferenceSiblingAndAvailability(t *testing.T) {
	store, database := newSeededStore(t)
	v, err := store.GetVariant(variantID(t, database, `LS2000-115VAC-H-10"`))
	require.NoError(t, err)

	sibling, err := store.GetVariantByFamilyVoltageMaterial(v.FamilyID, v.Voltage, "S")
	require.NoError(t, err)
	assert.Equal(t, `LS2000-115VAC-S-10"`, sibling.ModelNumber)

	a, err := store.GetAvailability("U", "LS7000")
	require.NoError(t, err)
	assert.False(t, a.IsAvailable)

	lengths, err := store.ListStandardLengths("T")
	require.NoError(t, err)
	assert.Len(t, lengths, 11)

	none, err := store.ListStandardLengths("S")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_Options(t *testing.T) {
	store, _ := newSeededStore(t)

	options, err := store.ListOptions()
	require.NoError(t, err)
	require.NotEmpty(t, options)

	byName := map[string]catalog.Option{}
	for _, o := range options {
		byName[o.Name] = o
	}
	sleeve := byName["Probe Insulation Sleeve"]
	assert.Equal(t, catalog.PricePerInch, sleeve.PriceType)
	assert.Equal(t, []string{"LS2000", "LS7000"}, sleeve.ProductFamilies)
	assert.Empty(t, sleeve.ExcludedModels)

	clamp := byName[`2" Tri-Clamp Connection`]
	assert.Equal(t, []string{`LS7000/2-115VAC-H-10"`}, clamp.ExcludedModels)

	got, err := store.GetOption(sleeve.ID)
	require.NoError(t, err)
	assert.Equal(t, sleeve, got)
}

func TestLoad_SnapshotPricesLikeStore(t *testing.T) {
	store, database := newSeededStore(t)

	snap, err := catalog.Load(store)
	require.NoError(t, err)

	variants, err := store.ListVariants()
	require.NoError(t, err)

	twenty := 20.0
	for _, v := range variants {
		for _, override := range []string{"", "S", "H", "U", "T"} {
			fromStore, storeErr := pricing.Calculate(store, v.ID, &twenty, override)
			fromSnap, snapErr := pricing.Calculate(snap, v.ID, &twenty, override)

			if storeErr != nil {
				assert.Error(t, snapErr, "%s/%s", v.ModelNumber, override)
				continue
			}
			require.NoError(t, snapErr, "%s/%s", v.ModelNumber, override)
			assert.True(t, fromStore.Totals.Total.Equal(fromSnap.Totals.Total), "%s/%s", v.ModelNumber, override)
		}
	}

	// LS2000 S → U at 20in: S base 425 + 20, 16in × 40, 20in is non-standard.
	id := variantID(t, database, `LS2000-115VAC-S-10"`)
	price, err := pricing.CalculateProductPrice(snap, id, &twenty, "U")
	require.NoError(t, err)
	assert.Equal(t, "1385", price.String())
}

func TestAvailableMaterialsAndCompatibleOptions(t *testing.T) {
	store, database := newSeededStore(t)

	ms, err := catalog.AvailableMaterials(store, "LS7000")
	require.NoError(t, err)
	codes := make([]string, 0, len(ms))
	for _, m := range ms {
		codes = append(codes, m.Code)
	}
	assert.ElementsMatch(t, []string{"S", "H", "TS"}, codes)

	v, err := store.GetVariant(variantID(t, database, `LS7000/2-115VAC-H-10"`))
	require.NoError(t, err)
	f, err := store.GetFamily(v.FamilyID)
	require.NoError(t, err)
	assert.Equal(t, "LS7000/2", f.Name)

	opts, err := catalog.CompatibleOptions(store, v, f)
	require.NoError(t, err)
	names := make([]string, 0, len(opts))
	for _, o := range opts {
		names = append(names, o.Name)
	}
	assert.ElementsMatch(t, []string{"Stainless Steel Tag", "Extended Cable", "Explosion-Proof Housing"}, names)
}
