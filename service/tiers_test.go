package service

import (
	"context"
	"doghouse/catalog"
	"doghouse/models"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHTTPMock(t *testing.T) {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
}

func TestResolveDog_APIOnly(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, testAPIURL,
		httpmock.NewStringResponder(http.StatusOK, `{"message":"https://x/api.jpg","status":"success"}`))

	svc := newService(t, unconfiguredRepo(), catalog.New(""), DogOptions{Tiers: []string{TierAPI}})

	res, err := svc.ResolveDog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceAPI, res.Source)
	assert.Equal(t, "https://x/api.jpg", models.Deref(res.Dog.Image))
	assert.Nil(t, res.Dog.Name)
}

func TestResolveDog_APIFailureIsUpstream(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, testAPIURL,
		httpmock.NewStringResponder(http.StatusBadGateway, `upstream down`))

	svc := newService(t, unconfiguredRepo(), catalog.New(""), DogOptions{Tiers: []string{TierStorage, TierAPI}})

	_, err := svc.ResolveDog(context.Background())
	assert.ErrorIs(t, err, ErrUpstream)
	assert.NotErrorIs(t, err, ErrStorageUnavailable)
}

func TestResolveDog_ThreeTierChain(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, testAPIURL,
		httpmock.NewStringResponder(http.StatusInternalServerError, `{}`))

	cat := testCatalog(t, `[{"name":"Fido","image":"http://a/f.png"}]`)
	svc := newService(t, unconfiguredRepo(), cat, DogOptions{Tiers: []string{TierStorage, TierAPI, TierLocal}})

	res, err := svc.ResolveDog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, res.Source)
	assert.Equal(t, "Fido", models.Deref(res.Dog.Name))
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestResolveDog_EmptyStorageDoesNotFallThrough(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, testAPIURL,
		httpmock.NewStringResponder(http.StatusOK, `{"message":"https://x/api.jpg"}`))

	svc := newService(t, sqliteRepo(t), catalog.New(""), DogOptions{Tiers: []string{TierStorage, TierAPI, TierLocal}})

	_, err := svc.ResolveDog(context.Background())
	assert.ErrorIs(t, err, ErrEmpty)
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestResolveDog_LocalOnlyEmptyCatalog(t *testing.T) {
	svc := newService(t, unconfiguredRepo(), testCatalog(t, `[]`), DogOptions{Tiers: []string{TierLocal}})

	_, err := svc.ResolveDog(context.Background())
	assert.ErrorIs(t, err, ErrEmpty)
}
