// Package mocks provides shared test doubles for the store, service, auth and task
// interfaces.
//
// Store and service mocks are built on testify/mock and are configured with On/Return:
//
//	users := new(mocks.UserStore)
//	users.On("GetByID", mock.Anything, id).Return(user, nil)
//
// The JWT, password and enqueue doubles use function fields with default
// return values, and record their calls for later assertions.
package mocks
