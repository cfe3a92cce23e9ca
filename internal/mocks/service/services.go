// Package service provides testify mocks for the domain service interfaces.
package service

import (
	"time"

	domainservice "chatline/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockTestingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockPasswordHasher is a testify mock of service.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

func NewMockPasswordHasher(t mockTestingT) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)

	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Check(password, hash string) bool {
	args := m.Called(password, hash)

	return args.Bool(0)
}

// MockSessionService is a testify mock of service.SessionService.
type MockSessionService struct {
	mock.Mock
}

func NewMockSessionService(t mockTestingT) *MockSessionService {
	m := &MockSessionService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockSessionService) Issue(userID uuid.UUID, email string) (string, error) {
	args := m.Called(userID, email)

	return args.String(0), args.Error(1)
}

func (m *MockSessionService) Validate(tokenString string) (*domainservice.SessionClaims, error) {
	args := m.Called(tokenString)
	if claims := args.Get(0); claims != nil {
		return claims.(*domainservice.SessionClaims), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockSessionService) TokenTTL() time.Duration {
	args := m.Called()

	return args.Get(0).(time.Duration)
}
