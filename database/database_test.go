package database_test

import (
	"context"
	"testing"

	"github.com/raseen-shahil/Med-App-sub000/database"
	"github.com/raseen-shahil/Med-App-sub000/database/dbtest"
	"github.com/raseen-shahil/Med-App-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIsIdempotent(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, db.Create(&models.Category{Name: "Diabetes"}).Error)

	added, err := database.Seed(db)
	require.NoError(t, err)
	assert.EqualValues(t, len(database.DefaultCategories)-1, added)

	added, err = database.Seed(db)
	require.NoError(t, err)
	assert.Zero(t, added)

	var count int64
	db.Model(&models.Category{}).Count(&count)
	assert.EqualValues(t, len(database.DefaultCategories), count)
}

func TestPing(t *testing.T) {
	db := dbtest.Open(t)
	assert.NoError(t, database.Ping(context.Background(), db))
}
