package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/maxwellzeha/jonduplastics/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService_Get(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProfileRepo()
	svc := NewProfileService(repo, nil)
	id := uuid.New()
	repo.profiles[id] = &models.Profile{ID: id, FirstName: "Ada", Email: "ada@example.com"}

	p, svcErr := svc.Get(ctx, id)
	require.Nil(t, svcErr)
	assert.Equal(t, "Ada", p.FirstName)

	_, svcErr = svc.Get(ctx, uuid.New())
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
	assert.Equal(t, CodeProfileNotFound, svcErr.Code)

	repo.err = errUndefinedTable
	_, svcErr = svc.Get(ctx, id)
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusServiceUnavailable, svcErr.StatusCode)
	assert.Equal(t, CodeBackendNotProvisioned, svcErr.Code)
}

func TestProfileService_Update(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProfileRepo()
	svc := NewProfileService(repo, nil)
	id := uuid.New()
	repo.profiles[id] = &models.Profile{ID: id, FirstName: "Ada"}

	p, svcErr := svc.Update(ctx, id, &models.UpdateProfileRequest{
		FirstName: " Adaeze ", LastName: "Obi", Phone: "0800", BusinessAddress: "Lagos",
	})
	require.Nil(t, svcErr)
	assert.Equal(t, "Adaeze", p.FirstName)

	_, svcErr = svc.Update(ctx, id, &models.UpdateProfileRequest{FirstName: "A", LastName: " ", Phone: "1", BusinessAddress: "x"})
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)

	_, svcErr = svc.Update(ctx, uuid.New(), &models.UpdateProfileRequest{FirstName: "A", LastName: "B", Phone: "1", BusinessAddress: "x"})
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}
