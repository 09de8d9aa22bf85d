// Package mocks holds gomock doubles for the driving ports.
package mocks

//go:generate mockgen -destination=mock_session.go -package=mocks github.com/ericfisherdev/pluxee-mcp/internal/domain/port/driving SessionAdmin
//go:generate mockgen -destination=mock_prompter.go -package=mocks github.com/ericfisherdev/pluxee-mcp/internal/adapter/driving/cli Prompter
