package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/greengrocer-ims/internal/domain/docstore"
)

func TestBuildSelect_SinFiltros(t *testing.T) {
	sql, args, err := buildSelect(docstore.Collection("/products/"), false)
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, data, created_at, updated_at FROM documents WHERE collection_path = $1 ORDER BY id", sql)
	assert.Equal(t, []any{"products"}, args)
}

func TestBuildSelect_FiltrosOrdenLimite(t *testing.T) {
	q := docstore.Collection("users/u1/receipts").
		Where("status", docstore.OpIn, []string{"Waiting", "Ready"}).
		Where("warehouseStock.w1", docstore.OpLessEq, 10).
		OrderBy("receiptDate", true).
		Limit(5)

	sql, args, err := buildSelect(q, false)
	require.NoError(t, err)
	assert.Contains(t, sql, "(data #> $2::text[]) IN (SELECT jsonb_array_elements(($3::text)::jsonb))")
	assert.Contains(t, sql, "jsonb_typeof((data #> $4::text[])) = jsonb_typeof(($5::text)::jsonb)")
	assert.Contains(t, sql, "(data #> $6::text[]) DESC NULLS LAST, id LIMIT 5")
	assert.Equal(t, "users/u1/receipts", args[0])
	assert.Equal(t, []string{"status"}, args[1])
	assert.Equal(t, `["Waiting","Ready"]`, args[2])
	assert.Equal(t, []string{"warehouseStock", "w1"}, args[3])
	assert.Equal(t, "10", args[4])
	assert.Equal(t, []string{"receiptDate"}, args[5])
	assert.Len(t, args, 6)
}

func TestBuildSelect_NotEqualExcluyeAusentes(t *testing.T) {
	sql, _, err := buildSelect(docstore.Collection("products").Where("status", docstore.OpNotEqual, "Done"), false)
	require.NoError(t, err)
	assert.Contains(t, sql, "IS NOT NULL AND")
}

func TestBuildSelect_Lock(t *testing.T) {
	sql, _, err := buildSelect(docstore.Collection("products"), true)
	require.NoError(t, err)
	assert.Contains(t, sql, "FOR UPDATE")
}

func TestBuildSelect_ConsultaInvalida(t *testing.T) {
	_, _, err := buildSelect(docstore.Collection("users/u1"), false)
	assert.Error(t, err)
}
