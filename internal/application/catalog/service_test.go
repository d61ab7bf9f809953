package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strings"
	"testing"

	"github.com/campus-marketplace/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockBackend struct{ mock.Mock }

func (m *mockBackend) ListProducts(ctx context.Context, token string, f domain.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, token, f)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}
func (m *mockBackend) GetProduct(ctx context.Context, token, productID string) (*domain.Product, error) {
	args := m.Called(ctx, token, productID)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}
func (m *mockBackend) CreateProduct(ctx context.Context, token string, in domain.ProductInput) (*domain.Product, error) {
	args := m.Called(ctx, token, in)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}
func (m *mockBackend) UpdateProduct(ctx context.Context, token, productID string, in domain.ProductInput) (*domain.Product, error) {
	args := m.Called(ctx, token, productID, in)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}
func (m *mockBackend) DeleteProduct(ctx context.Context, token, productID string) error {
	return m.Called(ctx, token, productID).Error(0)
}
func (m *mockBackend) AttachImage(ctx context.Context, token, productID, imageURL string) (*domain.Product, error) {
	args := m.Called(ctx, token, productID, imageURL)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}
func (m *mockBackend) Favorite(ctx context.Context, token, productID string) error {
	return m.Called(ctx, token, productID).Error(0)
}
func (m *mockBackend) Unfavorite(ctx context.Context, token, productID string) error {
	return m.Called(ctx, token, productID).Error(0)
}
func (m *mockBackend) MyProducts(ctx context.Context, token string) ([]domain.Product, error) {
	args := m.Called(ctx, token)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}
func (m *mockBackend) Favorites(ctx context.Context, token string) ([]domain.Product, error) {
	args := m.Called(ctx, token)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

type mockImages struct{ mock.Mock }

func (m *mockImages) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, key, size, contentType)
	return args.String(0), args.Error(1)
}
func (m *mockImages) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func newTestService(b *mockBackend, img *mockImages) Service {
	return NewService(ServiceDeps{Backend: b, Images: img, Marketplace: "Insper Marketplace"})
}

// --- products ---

func TestCreate_TrimsAndValidates(t *testing.T) {
	b := &mockBackend{}
	want := domain.ProductInput{Title: "Mesa", Category: "móveis", Condition: "usado", Price: 50}
	b.On("CreateProduct", mock.Anything, "tok", want).Return(&domain.Product{ProductID: "p1"}, nil)

	p, err := newTestService(b, nil).Create(context.Background(), "tok", domain.ProductInput{
		Title: "  Mesa ", Category: "móveis", Condition: " usado", Price: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ProductID)
}

func TestCreate_EmptyBackendResponse(t *testing.T) {
	b := &mockBackend{}
	b.On("CreateProduct", mock.Anything, "tok", mock.Anything).Return(nil, nil)

	p, err := newTestService(b, nil).Create(context.Background(), "tok", domain.ProductInput{Title: "Mesa", Category: "móveis", Condition: "usado"})
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, domain.ErrUpstreamUnavailable))
}

func TestCreate_Invalid(t *testing.T) {
	b := &mockBackend{}
	_, err := newTestService(b, nil).Create(context.Background(), "tok", domain.ProductInput{Title: " ", Price: -1})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	b.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_PassesBackendError(t *testing.T) {
	b := &mockBackend{}
	b.On("UpdateProduct", mock.Anything, "tok", "p1", mock.Anything).
		Return(nil, &domain.UpstreamError{Status: http.StatusForbidden, Detail: "Você não é o vendedor"})

	_, err := newTestService(b, nil).Update(context.Background(), "tok", "p1", domain.ProductInput{Title: "x", Category: "c", Condition: "novo"})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.EqualError(t, err, "Você não é o vendedor")
}

func TestList(t *testing.T) {
	b := &mockBackend{}
	b.On("ListProducts", mock.Anything, "", domain.ProductFilter{Search: "livro", Page: 1}).
		Return([]domain.Product{{ProductID: "p1"}}, nil)
	svc := newTestService(b, nil)

	ps, err := svc.List(context.Background(), "", domain.ProductFilter{Search: " livro ", Page: 1})
	require.NoError(t, err)
	assert.Len(t, ps, 1)

	_, err = svc.List(context.Background(), "", domain.ProductFilter{Page: -1})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

// --- contact ---

func TestContactLink(t *testing.T) {
	b := &mockBackend{}
	b.On("GetProduct", mock.Anything, "tok", "p1").Return(&domain.Product{
		ProductID: "p1",
		Title:     "Calculadora HP",
		Seller:    &domain.User{Name: "Bia", Cellphone: "+55 (11) 99999-0000"},
	}, nil)

	link, err := newTestService(b, nil).ContactLink(context.Background(), "tok", "p1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://wa.me/5511999990000?text="))
	assert.Contains(t, link, "Ol%C3%A1%20Bia%21")
	assert.Contains(t, link, "Insper%20Marketplace")
	assert.NotContains(t, link, "+")
}

func TestContactLink_NoPhone(t *testing.T) {
	b := &mockBackend{}
	b.On("GetProduct", mock.Anything, "tok", "p1").Return(&domain.Product{Seller: &domain.User{Name: "Bia"}}, nil)
	b.On("GetProduct", mock.Anything, "tok", "p2").Return(&domain.Product{}, nil)
	svc := newTestService(b, nil)

	_, err := svc.ContactLink(context.Background(), "tok", "p1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = svc.ContactLink(context.Background(), "tok", "p2")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestContactLink_EmptyBackendResponse(t *testing.T) {
	b := &mockBackend{}
	b.On("GetProduct", mock.Anything, "tok", "p1").Return(nil, nil)

	_, err := newTestService(b, nil).ContactLink(context.Background(), "tok", "p1")
	assert.True(t, errors.Is(err, domain.ErrUpstreamUnavailable))
}

// --- images ---

var keyPattern = regexp.MustCompile(`^products/p1/[0-9A-Z]{26}-foto_1.png$`)

func TestUploadImage(t *testing.T) {
	b, img := &mockBackend{}, &mockImages{}
	img.On("Upload", mock.Anything, mock.MatchedBy(keyPattern.MatchString), int64(4), "image/png").
		Return("https://cdn/x.png", nil)
	b.On("AttachImage", mock.Anything, "tok", "p1", "https://cdn/x.png").Return(&domain.Product{}, nil)

	out, err := newTestService(b, img).UploadImage(context.Background(), "tok", "p1", UploadInput{
		Reader: strings.NewReader("data"), Filename: "../foto 1.png", Size: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/x.png", out.URL)
	assert.Equal(t, "image/png", out.ContentType)
	img.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUploadImage_AttachFailureRemovesObject(t *testing.T) {
	b, img := &mockBackend{}, &mockImages{}
	img.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("https://cdn/x.png", nil)
	img.On("Delete", mock.Anything, mock.MatchedBy(keyPattern.MatchString)).Return(nil)
	b.On("AttachImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &domain.UpstreamError{Status: http.StatusForbidden, Detail: "Não autorizado"})

	_, err := newTestService(b, img).UploadImage(context.Background(), "tok", "p1", UploadInput{
		Reader: strings.NewReader("data"), Filename: "foto 1.png", ContentType: "image/png", Size: 4,
	})
	assert.EqualError(t, err, "Não autorizado")
	img.AssertExpectations(t)
}

func TestUploadImage_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   UploadInput
	}{
		{"pdf", UploadInput{Filename: "doc.pdf", Size: 10}},
		{"declared svg", UploadInput{Filename: "x.png", ContentType: "image/svg+xml", Size: 10}},
		{"too large", UploadInput{Filename: "x.jpg", Size: MaxImageSize + 1}},
		{"empty", UploadInput{Filename: "x.jpg", Size: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := &mockImages{}
			tt.in.Reader = strings.NewReader("")
			_, err := newTestService(&mockBackend{}, img).UploadImage(context.Background(), "tok", "p1", tt.in)
			assert.True(t, errors.Is(err, domain.ErrBadRequest))
			img.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "passwd", sanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "caf_.png", sanitizeFilename("café.png"))
	assert.Equal(t, "_", sanitizeFilename(""))
}
