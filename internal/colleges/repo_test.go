package colleges

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pathfinder/pkg/database/dbtest"
	"pathfinder/pkg/models"
)

func seedRepo(t *testing.T) *Repo {
	t.Helper()

	repo := NewRepo(dbtest.New(t))
	static, err := LoadStatic()
	require.NoError(t, err)

	n, err := repo.InsertMany(context.Background(), static)
	require.NoError(t, err)
	require.Equal(t, len(static), n)
	return repo
}

func TestInsertMany_AssignsObjectIDsAndSkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, all)
	for _, c := range all {
		assert.True(t, primitive.IsValidObjectID(c.ID), "id %q", c.ID)
	}

	static, err := LoadStatic()
	require.NoError(t, err)
	n, err := repo.InsertMany(ctx, static)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.InsertMany(ctx, []models.College{{Name: "  "}})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestList_FiltersAndPaging(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)

	items, err := repo.List(ctx, ListQuery{Q: "srinagar"})
	require.NoError(t, err)
	require.NotEmpty(t, items)
	for _, c := range items {
		assert.True(t, c.Location == "Srinagar" || c.District == "Srinagar", c.Name)
	}

	total, err := repo.Count(ctx, ListQuery{Type: "science"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	page, err := repo.List(ctx, ListQuery{Limit: 3, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, page, 3)

	all, err := repo.List(ctx, ListQuery{Limit: -5})
	require.NoError(t, err)
	assert.Len(t, all, 8)
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)

	all, err := repo.All(ctx)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, all[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, all[0].Name, got.Name)

	missing, err := repo.GetByID(ctx, primitive.NewObjectID().Hex())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFindSummaries(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)

	all, err := repo.All(ctx)
	require.NoError(t, err)

	var baramulla models.College
	for _, c := range all {
		if c.Name == "Government Degree College Baramulla" {
			baramulla = c
		}
	}
	require.NotEmpty(t, baramulla.ID)

	ids := []string{baramulla.ID, primitive.NewObjectID().Hex(), baramulla.ID, ""}
	got, err := repo.FindSummaries(ctx, ids)
	require.NoError(t, err)
	require.Len(t, got, 1)

	s := got[0]
	assert.Equal(t, baramulla.ID, s.ID)
	assert.Equal(t, baramulla.ID, s.CollegeID)
	assert.Equal(t, "Baramulla", s.Location)
	require.NotNil(t, s.Rating)
	assert.InDelta(t, 3.9, *s.Rating, 1e-9)
	assert.Nil(t, s.SavedAt)

	none, err := repo.FindSummaries(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
