package shipping

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/regaloamor/storefront-backend/pkg/errors"
)

func setupShippingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS config_envios (
  id INTEGER PRIMARY KEY,
  dias_abiertos TEXT,
  horarios TEXT,
  comunas TEXT,
  costo_base INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestServiceGetFallsBackToDefaultCost(t *testing.T) {
	db := setupShippingTestDB(t)
	svc, err := NewService(NewRepository(db), 3000)
	require.NoError(t, err)

	cfg, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.BaseCostCLP)

	cost, err := svc.BaseCostCLP(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3000, cost)
}

func TestServiceUpdatePersistsSingleton(t *testing.T) {
	db := setupShippingTestDB(t)
	svc, err := NewService(NewRepository(db), 3000)
	require.NoError(t, err)
	ctx := context.Background()

	days := []string{"lunes", "martes", "viernes"}
	windows := []string{"10:00-13:00", "15:00-19:00"}
	communes := []string{"Providencia", "Las Condes"}
	cost := 4500

	updated, err := svc.Update(ctx, UpdateConfigInput{
		OpenDays:    &days,
		TimeWindows: &windows,
		Communes:    &communes,
		BaseCostCLP: &cost,
	})
	require.NoError(t, err)
	assert.Equal(t, 4500, updated.BaseCostCLP)

	// A second update must mutate the same row, not insert another.
	cost = 5000
	_, err = svc.Update(ctx, UpdateConfigInput{BaseCostCLP: &cost})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Table("config_envios").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	reloaded, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5000, reloaded.BaseCostCLP)
	assert.Equal(t, []string(reloaded.OpenDays), days)
	assert.Equal(t, []string(reloaded.Communes), communes)
}

func TestServiceUpdateRejectsInvalidInput(t *testing.T) {
	db := setupShippingTestDB(t)
	svc, err := NewService(NewRepository(db), 3000)
	require.NoError(t, err)

	negative := -100
	_, err = svc.Update(context.Background(), UpdateConfigInput{BaseCostCLP: &negative})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	blank := []string{"Providencia", "  "}
	_, err = svc.Update(context.Background(), UpdateConfigInput{Communes: &blank})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
