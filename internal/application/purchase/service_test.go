package purchase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/campus-marketplace/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type mockBackend struct{ mock.Mock }

func (m *mockBackend) GeneratePurchaseCode(ctx context.Context, token, productID string) (*domain.PurchaseCode, error) {
	args := m.Called(ctx, token, productID)
	c, _ := args.Get(0).(*domain.PurchaseCode)
	return c, args.Error(1)
}
func (m *mockBackend) ConfirmPurchase(ctx context.Context, token, code string) (*domain.Purchase, error) {
	args := m.Called(ctx, token, code)
	p, _ := args.Get(0).(*domain.Purchase)
	return p, args.Error(1)
}
func (m *mockBackend) Purchases(ctx context.Context, token string) ([]domain.Purchase, error) {
	args := m.Called(ctx, token)
	ps, _ := args.Get(0).([]domain.Purchase)
	return ps, args.Error(1)
}
func (m *mockBackend) Sales(ctx context.Context, token string) ([]domain.Purchase, error) {
	args := m.Called(ctx, token)
	ps, _ := args.Get(0).([]domain.Purchase)
	return ps, args.Error(1)
}

type mockSMS struct{ mock.Mock }

func (m *mockSMS) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

func soldPurchase() *domain.Purchase {
	return &domain.Purchase{
		PurchaseID: "buy1",
		Product: &domain.Product{
			Title:  "Mesa",
			Seller: &domain.User{Cellphone: "+55 11 99999-0000"},
		},
	}
}

func TestConfirm_NotifiesSeller(t *testing.T) {
	b, sms := &mockBackend{}, &mockSMS{}
	b.On("ConfirmPurchase", mock.Anything, "tok", "ABC123").Return(soldPurchase(), nil)
	sms.On("SendSMS", mock.Anything, "+5511999990000", `Insper Marketplace: sua venda de "Mesa" foi confirmada.`).Return(nil)
	svc := NewService(ServiceDeps{Backend: b, SMS: sms, Marketplace: "Insper Marketplace"})

	p, err := svc.Confirm(context.Background(), "tok", " ABC123 ")
	require.NoError(t, err)
	assert.Equal(t, "buy1", p.PurchaseID)
	sms.AssertExpectations(t)
}

func TestConfirm_NotificationFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b, sms := &mockBackend{}, &mockSMS{}
	b.On("ConfirmPurchase", mock.Anything, "tok", "ABC123").Return(soldPurchase(), nil)
	sms.On("SendSMS", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("throttled"))
	svc := NewService(ServiceDeps{Backend: b, SMS: sms, Logger: zap.New(core)})

	_, err := svc.Confirm(context.Background(), "tok", "ABC123")
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("sale notification failed").Len())
}

func TestConfirm_WithoutSellerPhone(t *testing.T) {
	b, sms := &mockBackend{}, &mockSMS{}
	b.On("ConfirmPurchase", mock.Anything, "tok", "ABC123").Return(&domain.Purchase{PurchaseID: "buy1"}, nil)

	_, err := NewService(ServiceDeps{Backend: b, SMS: sms}).Confirm(context.Background(), "tok", "ABC123")
	require.NoError(t, err)
	sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirm_Errors(t *testing.T) {
	b := &mockBackend{}
	b.On("ConfirmPurchase", mock.Anything, "tok", "WRONG").
		Return(nil, &domain.UpstreamError{Status: http.StatusNotFound, Detail: "Código inválido"})
	svc := NewService(ServiceDeps{Backend: b})

	_, err := svc.Confirm(context.Background(), "tok", "   ")
	assert.True(t, errors.Is(err, domain.ErrBadRequest))

	_, err = svc.Confirm(context.Background(), "tok", "WRONG")
	assert.EqualError(t, err, "Código inválido")
}

func TestConfirm_EmptyBackendResponse(t *testing.T) {
	b, sms := &mockBackend{}, &mockSMS{}
	b.On("ConfirmPurchase", mock.Anything, "tok", "ABC123").Return(nil, nil)

	p, err := NewService(ServiceDeps{Backend: b, SMS: sms}).Confirm(context.Background(), "tok", "ABC123")
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, domain.ErrUpstreamUnavailable))
	sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateCodeAndLists(t *testing.T) {
	b := &mockBackend{}
	b.On("GeneratePurchaseCode", mock.Anything, "tok", "p1").Return(&domain.PurchaseCode{ProductID: "p1", Code: "X1"}, nil)
	b.On("Purchases", mock.Anything, "tok").Return([]domain.Purchase{{PurchaseID: "a"}}, nil)
	b.On("Sales", mock.Anything, "tok").Return([]domain.Purchase{{PurchaseID: "b"}, {PurchaseID: "c"}}, nil)
	svc := NewService(ServiceDeps{Backend: b})
	ctx := context.Background()

	code, err := svc.GenerateCode(ctx, "tok", "p1")
	require.NoError(t, err)
	assert.Equal(t, "X1", code.Code)

	ps, err := svc.Purchases(ctx, "tok")
	require.NoError(t, err)
	assert.Len(t, ps, 1)
	ss, err := svc.Sales(ctx, "tok")
	require.NoError(t, err)
	assert.Len(t, ss, 2)
}
