package api

import (
	"context"

	"kanban-api/domain"
)

// Storage abstracts the board document store for handlers. Every mutation
// goes through a load-mutate-save cycle on the full aggregate.
type Storage interface {
	ListBoards(ctx context.Context) ([]domain.Board, error)
	GetBoard(ctx context.Context, id string) (domain.Board, error)
	SaveBoard(ctx context.Context, b domain.Board) error
	DeleteBoard(ctx context.Context, id string) error
}

// NotFoundError is returned by Storage when no board exists with the
// requested id.
type NotFoundError interface {
	error
	NotFound()
}

// Authenticator is implemented by types able to extract user IDs from headers.
type Authenticator interface {
	UserIDFromAuthHeader(string) (string, error)
}
