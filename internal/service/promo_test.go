package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"indierise/internal/memstore"
	"indierise/internal/service"
)

func TestPromoService_Post(t *testing.T) {
	st := memstore.New()
	catalog := service.NewCatalogService(st.Books(), nil, zap.NewNop())
	promos := service.NewPromoService(st.Promos(), st.Books())

	b, err := catalog.Submit(service.SubmitInput{
		Title: "Starlight", Description: "d", AgreePolicy: true,
	}, admin)
	assert.NoError(t, err)

	// 只能挂自己的书
	_, err = promos.Post(author, b.ID, "swap newsletter spots?")
	assert.ErrorIs(t, err, service.ErrBookNotOwned)

	p, err := promos.Post(admin, b.ID, "swap newsletter spots?")
	assert.NoError(t, err)
	assert.Equal(t, admin.Email, p.AuthorEmail)

	list, err := promos.List()
	assert.NoError(t, err)
	assert.Len(t, list, 1)
}
