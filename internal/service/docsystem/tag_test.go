package docsystem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/domain"
	"docvault/internal/domain/models/docsystem"
	docsysSvc "docvault/internal/domain/services/docsystem"
)

func TestCreateTag(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.users["alice"]

	tag, err := e.tags.CreateTag(ctx, alice, &docsysSvc.TagRequest{Name: " urgent "})
	require.NoError(t, err)
	assert.Equal(t, "urgent", tag.Name)
	assert.Equal(t, docsystem.DefaultTagColor, tag.Color)

	colored, err := e.tags.CreateTag(ctx, alice, &docsysSvc.TagRequest{Name: "review", Color: "#FF0000"})
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", colored.Color)

	_, err = e.tags.CreateTag(ctx, alice, &docsysSvc.TagRequest{Name: "bad", Color: "red"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.tags.CreateTag(ctx, alice, &docsysSvc.TagRequest{Name: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.tags.CreateTag(ctx, alice, &docsysSvc.TagRequest{Name: "urgent"})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, tag.ID, conflict.ResourceID)

	_, err = e.tags.CreateTag(ctx, e.users["bob"], &docsysSvc.TagRequest{Name: "urgent"})
	assert.NoError(t, err, "names are unique per owner")

	list, err := e.tags.ListTags(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "review", list[0].Name)
}

func TestUpdateTag(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.users["alice"]
	tag, err := e.tags.CreateTag(ctx, alice, &docsysSvc.TagRequest{Name: "draft", Color: "#123456"})
	require.NoError(t, err)

	updated, err := e.tags.UpdateTag(ctx, alice, tag.ID, &docsysSvc.TagRequest{Name: "final"})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Name)
	assert.Equal(t, "#123456", updated.Color, "empty color keeps the current one")

	_, err = e.tags.UpdateTag(ctx, e.users["bob"], tag.ID, &docsysSvc.TagRequest{Name: "stolen"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteTag_DetachesFromDocuments(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.users["alice"]
	tag, err := e.tags.CreateTag(ctx, alice, &docsysSvc.TagRequest{Name: "old"})
	require.NoError(t, err)
	doc := e.upload(t, "alice", "a.txt", "x", nil)
	_, err = e.docs.SetTags(ctx, alice, doc.ID, []string{tag.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, e.tags.DeleteTag(ctx, e.users["bob"], tag.ID), domain.ErrNotFound)
	require.NoError(t, e.tags.DeleteTag(ctx, alice, tag.ID))

	got, err := e.docs.GetDocument(ctx, alice, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)

	list, err := e.tags.ListTags(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, list)
}
