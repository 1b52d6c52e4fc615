package storage

import (
	"reflect"
	"testing"

	"kanban-api/domain"
)

func TestBoardEntityRoundTrip(t *testing.T) {
	board := domain.Board{
		ID:    "b1",
		Name:  "Sprint",
		Owner: "auth0|abc",
		Columns: []domain.Column{
			{ID: "c1", Name: "Todo", Tasks: []domain.Task{
				{ID: "t1", Title: "Write spec", Status: "To do", Subtasks: []domain.Subtask{
					{ID: "s1", Title: "outline", IsCompleted: true},
				}},
			}},
		},
	}

	payload, err := encodeBoardEntity(board)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := decodeBoardEntity(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(decoded, board) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", decoded, board)
	}
}

func TestDecodeBoardEntityNormalizes(t *testing.T) {
	payload := []byte(`{"PartitionKey":"board","RowKey":"b1","Name":"Sprint","Owner":"","Doc":"{\"id\":\"b1\",\"name\":\"Sprint\"}"}`)

	board, err := decodeBoardEntity(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if board.ID != "b1" || board.Name != "Sprint" {
		t.Fatalf("unexpected board: %#v", board)
	}
	if board.Columns == nil {
		t.Fatal("expected columns normalized to empty slice")
	}
}

func TestDecodeBoardEntityBadDocument(t *testing.T) {
	payload := []byte(`{"PartitionKey":"board","RowKey":"b1","Doc":"not json"}`)

	if _, err := decodeBoardEntity(payload); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestNotFoundErrorMarker(t *testing.T) {
	var nf interface {
		error
		NotFound()
	}
	err := NotFoundError{ID: "b1"}
	nf = err
	if nf.Error() != "board b1 not found" {
		t.Fatalf("unexpected message: %q", nf.Error())
	}
}
