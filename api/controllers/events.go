package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/stockline-backend/api/responses"
	"github.com/angelmondragon/stockline-backend/api/validators"
	"github.com/angelmondragon/stockline-backend/internal/flow"
	"github.com/angelmondragon/stockline-backend/pkg/logger"
)

// EventDispatcher is the engine seam the controller drives.
type EventDispatcher interface {
	Dispatch(ctx context.Context, event flow.Event) (*flow.Prompt, error)
}

type eventRequest struct {
	SessionID string `json:"session_id" validate:"required,max=128"`
	Kind      string `json:"kind" validate:"required,oneof=text selection"`
	Payload   string `json:"payload" validate:"max=2048"`
}

type optionResponse struct {
	Label string `json:"label"`
	Token string `json:"token"`
}

type promptResponse struct {
	SessionID string           `json:"session_id"`
	Text      string           `json:"text"`
	Options   []optionResponse `json:"options,omitempty"`
}

// PostEvent feeds one conversational event into the workflow engine and
// returns the reply prompt.
func PostEvent(engine EventDispatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req eventRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reply, err := engine.Dispatch(r.Context(), flow.Event{
			SessionID: req.SessionID,
			Kind:      flow.EventKind(req.Kind),
			Payload:   req.Payload,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := promptResponse{
			SessionID: reply.SessionID,
			Text:      reply.Text,
		}
		for _, option := range reply.Options {
			resp.Options = append(resp.Options, optionResponse{
				Label: option.Label,
				Token: option.Token,
			})
		}
		responses.WriteSuccess(w, resp)
	}
}
