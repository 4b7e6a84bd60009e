package app

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/metinatakli/movie-ticket-events/api"
	"github.com/metinatakli/movie-ticket-events/internal/events"
)

// SendEventsHandler accepts a single event object or an array of them.
func (app *Application) SendEventsHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var body api.SendEventsRequest

	err := app.readJSON(w, r, &body)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	input, err := decodeEventRequests(body)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if len(input) == 0 {
		app.badRequestResponse(w, r, errors.New("at least one event is required"))
		return
	}

	batch := make([]events.Event, 0, len(input))

	for _, req := range input {
		err = app.validator.Struct(req)
		if err != nil {
			app.failedValidationResponse(w, r, err)
			return
		}

		evt := events.Event{
			Name: req.Name,
			Data: req.Data,
		}
		if req.Id != nil {
			evt.ID = *req.Id
		}
		if req.Ts != nil {
			evt.Timestamp = req.Ts.UTC()
		}

		batch = append(batch, evt)
	}

	ids, err := app.engine.Send(r.Context(), batch...)
	if err != nil {
		// Events before the failing one are already on their way; their ids
		// let the client resend only the rest.
		app.logError(r, err)

		resp := api.SendEventsErrorResponse{
			Message:   ErrInternalServer,
			RequestId: middleware.GetReqID(r.Context()),
			Timestamp: time.Now(),
			Ids:       ids,
		}

		err = app.writeJSON(w, http.StatusInternalServerError, resp, nil)
		if err != nil {
			app.logError(r, err)
		}
		return
	}

	logger.Info("events accepted", "count", len(ids))

	err = app.writeJSON(w, http.StatusAccepted, api.SendEventsResponse{Ids: ids}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// decodeEventRequests reads either body shape with the same strict rules as
// readJSON.
func decodeEventRequests(body api.SendEventsRequest) (api.EventBatch, error) {
	raw, err := body.MarshalJSON()
	if err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)

	if len(raw) > 0 && raw[0] == '[' {
		var batch api.EventBatch

		err = decodeJSON(bytes.NewReader(raw), &batch)
		if err != nil {
			return nil, err
		}

		return batch, nil
	}

	var single api.EventRequest

	err = decodeJSON(bytes.NewReader(raw), &single)
	if err != nil {
		return nil, err
	}

	return api.EventBatch{single}, nil
}

func (app *Application) ListFunctionsHandler(w http.ResponseWriter, r *http.Request) {
	fns := app.engine.Functions()

	resp := api.FunctionsResponse{
		AppId:     app.config.Events.AppID,
		Functions: make([]api.FunctionSummary, 0, len(fns)),
	}

	for _, fn := range fns {
		resp.Functions = append(resp.Functions, api.FunctionSummary{
			Id:      fn.ID,
			Event:   fn.Trigger.Event,
			Cron:    fn.Trigger.Cron,
			Retries: fn.Retries,
		})
	}

	err := app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// InvokeFunctionHandler runs one function synchronously with the supplied
// payload, bypassing event routing.
func (app *Application) InvokeFunctionHandler(w http.ResponseWriter, r *http.Request, functionId string) {
	var input api.InvokeRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	evt := events.Event{Data: input.Data}
	for _, fn := range app.engine.Functions() {
		if fn.ID != functionId {
			continue
		}

		evt.Name = fn.Trigger.Event
		if fn.Trigger.Cron != "" {
			evt.Name = events.CronEventName
		}
	}

	result, err := app.engine.Invoke(r.Context(), functionId, evt)
	if err != nil {
		if errors.Is(err, events.ErrFunctionNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.InvokeResponse{
		RunId:      result.RunID,
		FunctionId: result.FunctionID,
		Status:     api.InvokeResponseStatus(result.Status),
		Output:     result.Output,
		Error:      result.Error,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
