package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brokewala/gestion-stock-aldin/internal/domain/entity"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/inventory"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func batch(id string, expiry *time.Time, received time.Time, remaining int64) *entity.Batch {
	return &entity.Batch{
		ID:           id,
		ProductID:    "p1",
		WarehouseID:  "w1",
		BatchCode:    "B-" + id,
		ExpiryDate:   expiry,
		InitialQty:   remaining,
		RemainingQty: remaining,
		ReceivedAt:   received,
	}
}

// TestPickBatch_VencePrimeroGana el lote con vencimiento más próximo gana
// aunque haya llegado después.
func TestPickBatch_VencePrimeroGana(t *testing.T) {
	recent := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	picked := inventory.PickBatch([]*entity.Batch{
		batch("tarde", date(2026, 12, 1), old, 100),
		batch("pronto", date(2026, 7, 1), recent, 100),
	}, 10)

	require.NotNil(t, picked)
	assert.Equal(t, "pronto", picked.ID, "debe ganar el lote que vence primero")
}

// TestPickBatch_SinVencimientoAlFinal los lotes sin fecha solo se consideran
// después de todos los fechados.
func TestPickBatch_SinVencimientoAlFinal(t *testing.T) {
	received := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	picked := inventory.PickBatch([]*entity.Batch{
		batch("sin-fecha", nil, received, 100),
		batch("fechado", date(2027, 1, 1), received.AddDate(0, 1, 0), 100),
	}, 10)

	require.NotNil(t, picked)
	assert.Equal(t, "fechado", picked.ID, "un lote fechado va antes que uno sin vencimiento")
}

// TestPickBatch_EmpateDecideRecepcion a igual vencimiento gana la recepción
// más antigua.
func TestPickBatch_EmpateDecideRecepcion(t *testing.T) {
	expiry := date(2026, 10, 1)

	picked := inventory.PickBatch([]*entity.Batch{
		batch("nuevo", expiry, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 100),
		batch("viejo", expiry, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), 100),
	}, 10)

	require.NotNil(t, picked)
	assert.Equal(t, "viejo", picked.ID)
}

// TestPickBatch_SaltaLotesQueNoAlcanzan un lote que vence antes pero no cubre
// la cantidad se salta completo: no hay selección parcial.
func TestPickBatch_SaltaLotesQueNoAlcanzan(t *testing.T) {
	received := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	picked := inventory.PickBatch([]*entity.Batch{
		batch("corto", date(2026, 6, 1), received, 5),
		batch("suficiente", date(2026, 9, 1), received, 50),
	}, 10)

	require.NotNil(t, picked)
	assert.Equal(t, "suficiente", picked.ID, "el lote corto se salta aunque venza antes")
}

// TestPickBatch_NingunoAlcanza retorna nil cuando ningún lote cubre la cantidad,
// aunque la suma de todos alcance.
func TestPickBatch_NingunoAlcanza(t *testing.T) {
	received := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	picked := inventory.PickBatch([]*entity.Batch{
		batch("a", date(2026, 6, 1), received, 6),
		batch("b", date(2026, 7, 1), received, 6),
	}, 10)

	assert.Nil(t, picked, "sin lote único capaz de cubrir, no hay selección")
}

// TestPickAvailable_DescuentaReservas la variante de confirmación descuenta lo
// retenido por pedidos activos antes de comparar.
func TestPickAvailable_DescuentaReservas(t *testing.T) {
	received := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	batches := []*entity.Batch{
		batch("reservado", date(2026, 6, 1), received, 10),
		batch("libre", date(2026, 9, 1), received, 10),
	}

	// Sin reservas el primero gana.
	picked := inventory.PickAvailable(batches, nil, 10)
	require.NotNil(t, picked)
	assert.Equal(t, "reservado", picked.ID)

	// Con 5 retenidas en el primero ya no cubre 10: pasa al siguiente.
	picked = inventory.PickAvailable(batches, map[string]int64{"reservado": 5}, 10)
	require.NotNil(t, picked)
	assert.Equal(t, "libre", picked.ID)

	// Con ambos retenidos no hay candidato.
	picked = inventory.PickAvailable(batches, map[string]int64{"reservado": 5, "libre": 5}, 10)
	assert.Nil(t, picked)
}
