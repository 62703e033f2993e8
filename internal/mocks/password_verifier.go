package mocks

import "github.com/phrazzld/palace-api/internal/service/auth"

// MockPasswordVerifier accepts every password when ShouldSucceed is set and
// rejects every password with auth.ErrPasswordMismatch otherwise. CompareFn
// overrides both.
type MockPasswordVerifier struct {
	ShouldSucceed bool
	CompareFn     func(hashedPassword, password string) error

	CompareCallCount int
}

var _ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)

// Compare implements auth.PasswordVerifier.
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.CompareCallCount++
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if m.ShouldSucceed {
		return nil
	}
	return auth.ErrPasswordMismatch
}
