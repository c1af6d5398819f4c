package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bookfairhq/pos-backend/api/responses"
	"github.com/bookfairhq/pos-backend/internal/router"
	pkgerrors "github.com/bookfairhq/pos-backend/pkg/errors"
	"github.com/bookfairhq/pos-backend/pkg/logger"
)

// Dispatcher resolves an action token into the next view for a session.
type Dispatcher interface {
	Dispatch(ctx context.Context, sessionID, action string) router.View
}

type ActionRequest struct {
	SessionID string `json:"session_id"`
	Action    string `json:"action"`
}

type ActionsController struct {
	dispatcher Dispatcher
	log        *logger.Logger
}

func NewActionsController(dispatcher Dispatcher, logg *logger.Logger) *ActionsController {
	return &ActionsController{dispatcher: dispatcher, log: logg}
}

func (c *ActionsController) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		responses.WriteError(ctx, c.log, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
		return
	}

	req.SessionID = strings.TrimSpace(req.SessionID)
	req.Action = strings.TrimSpace(req.Action)

	if req.SessionID == "" {
		responses.WriteError(ctx, c.log, w, pkgerrors.New(pkgerrors.CodeValidation, "session_id is required"))
		return
	}
	if req.Action == "" {
		req.Action = router.ActionMain
	}

	view := c.dispatcher.Dispatch(ctx, req.SessionID, req.Action)
	responses.WriteSuccess(w, view)
}
