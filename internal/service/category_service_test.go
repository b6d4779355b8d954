package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/internal/model"
)

func TestCategoryRenameCascadesToCourses(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	svc := NewCategoryService(fakeCategories{f.db}, fakeCourses{f.db}, fakeTx{f.db})

	cat, err := svc.Create(ctx, CategoryInput{Name: " Compliance "})
	require.NoError(t, err)
	assert.Equal(t, "Compliance", cat.Name)

	c := f.addCourse("c1", 1, 0, 70)
	c.Category = "Compliance"
	f.db.courses[c.ID] = *c
	other := f.addCourse("c2", 1, 0, 70)
	other.Category = "Sales"
	f.db.courses[other.ID] = *other

	renamed, err := svc.Rename(ctx, cat.ID, CategoryInput{Name: "Regulation"})
	require.NoError(t, err)
	assert.Equal(t, "Regulation", renamed.Name)
	assert.Equal(t, "Regulation", f.db.courses["c1"].Category)
	assert.Equal(t, "Sales", f.db.courses["c2"].Category)
}

func TestCategoryNamesAreUnique(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	svc := NewCategoryService(fakeCategories{f.db}, fakeCourses{f.db}, fakeTx{f.db})

	_, err := svc.Create(ctx, CategoryInput{Name: "Compliance"})
	require.NoError(t, err)
	sales, err := svc.Create(ctx, CategoryInput{Name: "Sales"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CategoryInput{Name: "compliance"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = svc.Rename(ctx, sales.ID, CategoryInput{Name: "COMPLIANCE"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = svc.Create(ctx, CategoryInput{Name: ""})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCategoryDeleteRefusedWhileInUse(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	svc := NewCategoryService(fakeCategories{f.db}, fakeCourses{f.db}, fakeTx{f.db})

	cat, err := svc.Create(ctx, CategoryInput{Name: "Compliance"})
	require.NoError(t, err)
	c := f.addCourse("c1", 1, 0, 70)
	c.Category = "Compliance"
	f.db.courses[c.ID] = *c

	assert.ErrorIs(t, svc.Delete(ctx, cat.ID), apperr.ErrConflict)

	delete(f.db.courses, "c1")
	require.NoError(t, svc.Delete(ctx, cat.ID))
	assert.ErrorIs(t, svc.Delete(ctx, cat.ID), apperr.ErrNotFound)
}

func TestResourceLibrary(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	svc := NewResourceService(fakeResources{f.db})

	book, err := svc.Create(ctx, ResourceInput{Title: "Handbook", URL: "https://example.com/book", Type: model.ResourceBook})
	require.NoError(t, err)
	_, err = svc.Create(ctx, ResourceInput{Title: "Talk", URL: "https://example.com/talk", Type: model.ResourceVideo})
	require.NoError(t, err)

	_, err = svc.Create(ctx, ResourceInput{Title: "Bad", URL: "https://example.com", Type: "podcast"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Create(ctx, ResourceInput{Title: "Bad", URL: "not a url", Type: model.ResourceBook})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	books, err := svc.List(ctx, "Book")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, book.ID, books[0].ID)

	_, err = svc.List(ctx, "podcast")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	updated, err := svc.Update(ctx, book.ID, ResourceInput{Title: "Handbook v2", URL: "https://example.com/book2", Type: model.ResourceArticle})
	require.NoError(t, err)
	assert.Equal(t, model.ResourceArticle, updated.Type)

	require.NoError(t, svc.Delete(ctx, book.ID))
	assert.ErrorIs(t, svc.Delete(ctx, book.ID), apperr.ErrNotFound)
}
