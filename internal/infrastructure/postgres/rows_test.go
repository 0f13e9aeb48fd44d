package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
)

func money(t *testing.T, amount, cur string) entity.Money {
	t.Helper()
	m, err := entity.NewMoney(decimal.RequireFromString(amount), cur)
	require.NoError(t, err)
	return m
}

func TestUserRowRoundTrip(t *testing.T) {
	t.Parallel()

	u, err := entity.NewUser("ana@example.com", "ana", "$2a$10$hash", entity.RoleAdmin, "Ana Baker")
	require.NoError(t, err)
	u.Settings, err = u.Settings.WithLanguage("es")
	require.NoError(t, err)
	u.IsActive = false

	got, err := userToRow(u).toEntity()
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestUserRowRejectsUnknownRole(t *testing.T) {
	t.Parallel()

	_, err := userRow{ID: uuid.New(), Role: "owner"}.toEntity()
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestIngredientRowsRoundTrip(t *testing.T) {
	t.Parallel()

	ing, err := entity.NewIngredient("Butter", entity.UnitGram)
	require.NoError(t, err)
	gotIng, err := ingredientToRow(ing).toEntity()
	require.NoError(t, err)
	assert.Equal(t, ing, gotIng)

	c, err := entity.NewIngredientCost(ing.ID, money(t, "0.0125", "EUR"), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	gotCost, err := ingredientCostToRow(c).toEntity()
	require.NoError(t, err)
	assert.Equal(t, c, gotCost)
}

func TestRecipeRowsRoundTrip(t *testing.T) {
	t.Parallel()

	r, err := entity.NewRecipe("Brioche", "knead")
	require.NoError(t, err)
	require.NoError(t, r.AddIngredient(uuid.New(), decimal.RequireFromString("0.5")))
	require.NoError(t, r.AddIngredient(uuid.New(), decimal.RequireFromString("3")))

	head, lines := recipeToRows(r)
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[1].Position)
	assert.Equal(t, r, head.toEntity(lines))
}

func TestProductRowsRoundTrip(t *testing.T) {
	t.Parallel()

	p, err := entity.NewProduct("Eclair", money(t, "0.75", "USD"), decimal.RequireFromString("12.5"), decimal.NewFromInt(40))
	require.NoError(t, err)
	p.SetImageURL("https://storage.googleapis.com/bucket/eclair.png")
	require.NoError(t, p.AddRecipe(uuid.New(), decimal.NewFromInt(2)))

	head, lines := productToRows(p)
	got, err := head.toEntity(lines)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestOrderRowsRoundTrip(t *testing.T) {
	t.Parallel()

	o, err := entity.NewOrder("Ana", "ana@example.com", "no nuts", "USD", uuid.New())
	require.NoError(t, err)
	_, err = o.AddItem(uuid.New(), decimal.NewFromInt(2), money(t, "5.00", "USD"))
	require.NoError(t, err)
	_, err = o.AddItem(uuid.New(), decimal.RequireFromString("0.125"), money(t, "3.00", "USD"))
	require.NoError(t, err)
	require.NoError(t, o.Confirm())

	head, items := orderToRows(o)
	assert.True(t, head.CreatedByUserID.Valid)
	got, err := head.toEntity(items)
	require.NoError(t, err)
	assert.Equal(t, o, got)
}

func TestOrderRowWithoutCreator(t *testing.T) {
	t.Parallel()

	o, err := entity.NewOrder("Walk-in", "walkin@example.com", "", "USD", uuid.Nil)
	require.NoError(t, err)

	head, items := orderToRows(o)
	assert.False(t, head.CreatedByUserID.Valid)
	got, err := head.toEntity(items)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, got.CreatedByUserID)
	assert.Empty(t, got.Items)
}

// storedAs mimics a TIMESTAMPTZ column: microseconds are kept and pgx scans
// the value back in the session's zone.
func storedAs(ts time.Time) time.Time {
	return ts.Truncate(time.Microsecond).In(time.FixedZone("WIB", 7*60*60))
}

func TestRowTimesSurviveStorage(t *testing.T) {
	t.Parallel()

	effective := time.Date(2024, 5, 1, 9, 30, 15, 123456789, time.FixedZone("WIB", 7*60*60))
	ing, err := entity.NewIngredient("Butter", entity.UnitGram)
	require.NoError(t, err)
	c, err := entity.NewIngredientCost(ing.ID, money(t, "1.5", "USD"), effective)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, c.EffectiveDate.Location())
	assert.True(t, c.EffectiveDate.Equal(effective.Truncate(time.Microsecond)))

	ir := ingredientToRow(ing)
	ir.CreatedAt, ir.UpdatedAt = storedAs(ir.CreatedAt), storedAs(ir.UpdatedAt)
	gotIng, err := ir.toEntity()
	require.NoError(t, err)
	assert.Equal(t, ing, gotIng)

	cr := ingredientCostToRow(c)
	cr.EffectiveDate, cr.CreatedAt, cr.UpdatedAt = storedAs(cr.EffectiveDate), storedAs(cr.CreatedAt), storedAs(cr.UpdatedAt)
	gotCost, err := cr.toEntity()
	require.NoError(t, err)
	assert.Equal(t, c, gotCost)

	o, err := entity.NewOrder("Ana", "ana@example.com", "", "USD", uuid.Nil)
	require.NoError(t, err)
	o.CreatedAt = effective
	head, _ := orderToRows(o)
	assert.Equal(t, storedAs(head.CreatedAt).UTC(), head.CreatedAt)
	head.CreatedAt, head.UpdatedAt = storedAs(head.CreatedAt), storedAs(head.UpdatedAt)
	got, err := head.toEntity(nil)
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(effective.Truncate(time.Microsecond)))
	assert.Equal(t, o.UpdatedAt, got.UpdatedAt)
}
