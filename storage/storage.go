package storage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"kanban-api/domain"
)

// Boards live in a single partition: the whole collection is small and a
// partition scan is the list query.
const boardPartition = "board"

// NotFoundError is returned when no board exists with the requested id.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string { return "board " + e.ID + " not found" }

// NotFound marks the error for the api layer's taxonomy.
func (NotFoundError) NotFound() {}

// Store persists board aggregates in an Azure Storage table, one entity per
// board with the full nested document serialized into a single column.
type Store struct {
	boards *aztables.Client
}

// New creates a Store from the given connection string.
func New(connStr, boardsTable string) (*Store, error) {
	clientOptions := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &clientOptions)
	if err != nil {
		return nil, err
	}
	return &Store{boards: svc.NewClient(boardsTable)}, nil
}

type boardEntity struct {
	aztables.Entity
	Name  string `json:"Name"`
	Owner string `json:"Owner"`
	Doc   string `json:"Doc"`
}

func encodeBoardEntity(b domain.Board) ([]byte, error) {
	doc, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return json.Marshal(boardEntity{
		Entity: aztables.Entity{PartitionKey: boardPartition, RowKey: b.ID},
		Name:   b.Name,
		Owner:  b.Owner,
		Doc:    string(doc),
	})
}

func decodeBoardEntity(data []byte) (domain.Board, error) {
	var ent boardEntity
	if err := json.Unmarshal(data, &ent); err != nil {
		return domain.Board{}, err
	}
	var b domain.Board
	if err := json.Unmarshal([]byte(ent.Doc), &b); err != nil {
		return domain.Board{}, err
	}
	b.ID = ent.RowKey
	b.Normalize()
	return b, nil
}

// ListBoards retrieves every board aggregate.
func (s *Store) ListBoards(ctx context.Context) ([]domain.Board, error) {
	filter := "PartitionKey eq '" + boardPartition + "'"
	pager := s.boards.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	boards := []domain.Board{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			b, err := decodeBoardEntity(e)
			if err != nil {
				return nil, err
			}
			boards = append(boards, b)
		}
	}
	return boards, nil
}

// GetBoard retrieves a single board aggregate by id.
func (s *Store) GetBoard(ctx context.Context, id string) (domain.Board, error) {
	ent, err := s.boards.GetEntity(ctx, boardPartition, id, nil)
	if err != nil {
		if isNotFound(err) {
			return domain.Board{}, NotFoundError{ID: id}
		}
		return domain.Board{}, err
	}
	return decodeBoardEntity(ent.Value)
}

// SaveBoard upserts the whole aggregate in one write. The replace mode makes
// the last writer win; there is no version check on save.
func (s *Store) SaveBoard(ctx context.Context, b domain.Board) error {
	payload, err := encodeBoardEntity(b)
	if err != nil {
		return err
	}
	_, err = s.boards.UpsertEntity(ctx, payload, &aztables.UpsertEntityOptions{UpdateMode: aztables.UpdateModeReplace})
	return err
}

// DeleteBoard removes the aggregate, cascading every nested column, task and
// subtask with it. Deleting an absent board reports NotFoundError.
func (s *Store) DeleteBoard(ctx context.Context, id string) error {
	_, err := s.boards.DeleteEntity(ctx, boardPartition, id, nil)
	if isNotFound(err) {
		return NotFoundError{ID: id}
	}
	return err
}

func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}
