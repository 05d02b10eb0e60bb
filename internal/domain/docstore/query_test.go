package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_EsEstructural(t *testing.T) {
	a := Collection("users/u1/receipts").Where("status", OpEqual, "Draft").OrderBy("receiptDate", true)
	b := Collection("/users/u1/receipts/").Where("status", OpEqual, "Draft").OrderBy("receiptDate", true)
	assert.Equal(t, a.Key(), b.Key(), "consultas equivalentes construidas por separado tienen la misma clave")
	assert.NotSame(t, a, b)
}

func TestKey_FiltrosSinImportarOrdenDeDeclaracion(t *testing.T) {
	a := Collection("products").Where("a", OpEqual, 1).Where("b", OpLess, 2)
	b := Collection("products").Where("b", OpLess, 2).Where("a", OpEqual, 1)
	assert.Equal(t, a.Key(), b.Key())
}

func TestKey_CambiaConRutaFiltroOrdenYLimite(t *testing.T) {
	base := Collection("users/u1/receipts")
	keys := map[string]bool{
		base.Key():                                 true,
		Collection("users/u2/receipts").Key():      true,
		base.Where("status", OpEqual, "Done").Key(): true,
		base.OrderBy("receiptDate", true).Key():    true,
		base.OrderBy("receiptDate", false).Key():   true,
		base.Limit(5).Key():                        true,
	}
	assert.Len(t, keys, 6)
}

func TestKey_QueryNil(t *testing.T) {
	var q *Query
	assert.Equal(t, "", q.Key())
}

func TestQuery_BuilderNoMutaOriginal(t *testing.T) {
	base := Collection("products")
	_ = base.Where("stock", OpLessEq, 10).Limit(3)
	assert.Empty(t, base.Filters)
	assert.Zero(t, base.Max)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Collection("products").Validate())
	assert.NoError(t, Collection("users/u1/receipts").Validate())
	assert.Error(t, Collection("users/u1").Validate(), "ruta de documento, no de colección")
	assert.Error(t, Collection("").Validate())
	assert.Error(t, Collection("products").Where("status", OpIn, "Done").Validate())
	assert.NoError(t, Collection("products").Where("status", OpIn, []string{"Done"}).Validate())
	assert.Error(t, Collection("products").Where("x", Op("~"), 1).Validate())
}

func TestParseOp(t *testing.T) {
	op, err := ParseOp("lte")
	assert.NoError(t, err)
	assert.Equal(t, OpLessEq, op)
	_, err = ParseOp("like")
	assert.Error(t, err)
}

func TestOwnerOf(t *testing.T) {
	uid, ok := OwnerOf("users/abc/receipts")
	assert.True(t, ok)
	assert.Equal(t, "abc", uid)
	_, ok = OwnerOf("products")
	assert.False(t, ok)
}
