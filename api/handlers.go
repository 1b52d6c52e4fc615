package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"kanban-api/domain"
)

const maxBodySize = 256 * 1024 // 256 KiB

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Storage, auth Authenticator, statuses domain.StatusSet, logger *log.Logger) {
	g := e.Group("/api/boards")
	g.GET("", listBoards(store, auth, logger))
	g.POST("", createBoard(store, auth, statuses))
	g.GET("/:id", getBoard(store, auth))
	g.PUT("/:id", updateBoard(store, auth, statuses))
	g.DELETE("/:id", deleteBoard(store, auth))
	g.POST("/:boardId/columns/:columnId/tasks", addTask(store, auth, statuses))
	g.PUT("/:boardId/columns/:columnId/tasks/:taskId", editTask(store, auth, statuses))
	g.DELETE("/:boardId/columns/:columnId/tasks/:taskId", deleteTask(store, auth))
	g.PUT("/:boardId/columns/:columnId/tasks/:taskId/subtask", editSubtask(store, auth, statuses))

	e.GET("/healthz", healthz(store))
}

type deleteBoardResponse struct {
	ID string `json:"id"`
}

type deleteTaskResponse struct {
	Message string `json:"message"`
}

func healthz(_ Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func decodeBody(r *http.Request, v any) error {
	lr := io.LimitReader(r.Body, maxBodySize)
	return sonic.ConfigStd.NewDecoder(lr).Decode(v)
}

// respondStoreError maps a storage failure to 404 for missing boards and 500
// for everything else. Store failures are surfaced, never retried here.
func respondStoreError(c echo.Context, err error) error {
	var nf NotFoundError
	if errors.As(err, &nf) {
		return c.String(http.StatusNotFound, nf.Error())
	}
	c.Logger().Error(err)
	return c.String(http.StatusInternalServerError, err.Error())
}

// respondDomainError maps a rejected mutation to 400.
func respondDomainError(c echo.Context, err error) error {
	var verr domain.ValidationError
	if errors.As(err, &verr) {
		return c.String(http.StatusBadRequest, verr.Error())
	}
	c.Logger().Error(err)
	return c.String(http.StatusInternalServerError, err.Error())
}

func listBoards(store Storage, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newBoardRequestMetrics(ctx, logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authStart := time.Now()
		_, authErr := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization"))
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = c.String(http.StatusUnauthorized, authErr.Error())
			return err
		}

		fetchStart := time.Now()
		boards, fetchErr := store.ListBoards(ctx)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("storage")
			c.Logger().Error(fetchErr)
			err = c.String(http.StatusInternalServerError, fetchErr.Error())
			return err
		}
		metrics.SetBoardsReturned(len(boards))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, boards)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func createBoard(store Storage, auth Authenticator, statuses domain.StatusSet) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization"))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		var req struct {
			Name    string              `json:"name"`
			Columns []domain.ColumnSeed `json:"columns"`
		}
		if err := decodeBody(c.Request(), &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		board, err := domain.NewBoard(req.Name, userID, req.Columns, statuses)
		if err != nil {
			return respondDomainError(c, err)
		}
		if err := store.SaveBoard(ctx, board); err != nil {
			return respondStoreError(c, err)
		}
		return c.JSON(http.StatusCreated, board)
	}
}

func getBoard(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		board, err := store.GetBoard(ctx, c.Param("id"))
		if err != nil {
			return respondStoreError(c, err)
		}
		return c.JSON(http.StatusOK, board)
	}
}

func updateBoard(store Storage, auth Authenticator, statuses domain.StatusSet) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		var update domain.BoardUpdate
		if err := decodeBody(c.Request(), &update); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		board, err := store.GetBoard(ctx, c.Param("id"))
		if err != nil {
			return respondStoreError(c, err)
		}
		if err := board.ApplyUpdate(update, statuses); err != nil {
			return respondDomainError(c, err)
		}
		if err := store.SaveBoard(ctx, board); err != nil {
			return respondStoreError(c, err)
		}
		return c.JSON(http.StatusOK, board)
	}
}

func deleteBoard(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		id := c.Param("id")
		if err := store.DeleteBoard(ctx, id); err != nil {
			return respondStoreError(c, err)
		}
		return c.JSON(http.StatusOK, deleteBoardResponse{ID: id})
	}
}

func addTask(store Storage, auth Authenticator, statuses domain.StatusSet) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		var seed domain.TaskSeed
		if err := decodeBody(c.Request(), &seed); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		board, err := store.GetBoard(ctx, c.Param("boardId"))
		if err != nil {
			return respondStoreError(c, err)
		}
		column := board.Column(c.Param("columnId"))
		if column == nil {
			return c.String(http.StatusNotFound, domain.ErrColumnNotFound.Error())
		}
		task, err := column.AddTask(seed, statuses)
		if err != nil {
			return respondDomainError(c, err)
		}
		if err := store.SaveBoard(ctx, board); err != nil {
			return respondStoreError(c, err)
		}
		return c.JSON(http.StatusCreated, task)
	}
}

func editTask(store Storage, auth Authenticator, statuses domain.StatusSet) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		var patch domain.TaskPatch
		if err := decodeBody(c.Request(), &patch); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		board, err := store.GetBoard(ctx, c.Param("boardId"))
		if err != nil {
			return respondStoreError(c, err)
		}
		column := board.Column(c.Param("columnId"))
		if column == nil {
			return c.String(http.StatusNotFound, domain.ErrColumnNotFound.Error())
		}
		task := column.Task(c.Param("taskId"))
		if task == nil {
			return c.String(http.StatusNotFound, domain.ErrTaskNotFound.Error())
		}
		if err := task.ApplyPatch(patch, statuses); err != nil {
			return respondDomainError(c, err)
		}
		if err := store.SaveBoard(ctx, board); err != nil {
			return respondStoreError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func deleteTask(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		board, err := store.GetBoard(ctx, c.Param("boardId"))
		if err != nil {
			return respondStoreError(c, err)
		}
		column := board.Column(c.Param("columnId"))
		if column == nil {
			return c.String(http.StatusNotFound, domain.ErrColumnNotFound.Error())
		}
		if !column.RemoveTask(c.Param("taskId")) {
			return c.String(http.StatusNotFound, domain.ErrTaskNotFound.Error())
		}
		if err := store.SaveBoard(ctx, board); err != nil {
			return respondStoreError(c, err)
		}
		return c.JSON(http.StatusOK, deleteTaskResponse{Message: "Task deleted"})
	}
}

func editSubtask(store Storage, auth Authenticator, statuses domain.StatusSet) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		var patch domain.SubtaskPatch
		if err := decodeBody(c.Request(), &patch); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		board, err := store.GetBoard(ctx, c.Param("boardId"))
		if err != nil {
			return respondStoreError(c, err)
		}
		column := board.Column(c.Param("columnId"))
		if column == nil {
			return c.String(http.StatusNotFound, domain.ErrColumnNotFound.Error())
		}
		task := column.Task(c.Param("taskId"))
		if task == nil {
			return c.String(http.StatusNotFound, domain.ErrTaskNotFound.Error())
		}
		if err := task.ApplySubtaskPatch(patch, statuses); err != nil {
			return respondDomainError(c, err)
		}
		if err := store.SaveBoard(ctx, board); err != nil {
			return respondStoreError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}
