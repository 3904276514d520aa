package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/safeher/safeher/server/fakecall"
	"github.com/safeher/safeher/server/models"
	"github.com/safeher/safeher/server/sos"
	"github.com/safeher/safeher/version"
)

type ResponsePayload struct {
	Errors  []string    `json:"errors,omitempty"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

type ContactParams struct {
	Name   string `json:"name"`
	Method string `json:"method"`
	Value  string `json:"value"`
}

func (safeherApp *app) healthCheck(rw http.ResponseWriter, r *http.Request) {
	writeResponse(rw, ResponsePayload{Success: true, Data: map[string]string{"version": version.Version}}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Contact handlers
// --------------------------------------------------------------------------------//

func (safeherApp *app) listContacts(rw http.ResponseWriter, r *http.Request) {
	writeResponse(rw, ResponsePayload{Success: true, Data: safeherApp.contacts.List()}, http.StatusOK)
}

func (safeherApp *app) createContact(rw http.ResponseWriter, r *http.Request) {
	params := ContactParams{}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	contact, err := safeherApp.contacts.Add(params.Name, params.Method, params.Value)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: strings.Split(err.Error(), "\n")}, http.StatusBadRequest)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: contact}, http.StatusCreated)
}

func (safeherApp *app) updateContact(rw http.ResponseWriter, r *http.Request) {
	params := ContactParams{}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	contact, err := safeherApp.contacts.Update(mux.Vars(r)["id"], params.Name, params.Method, params.Value)
	if errors.Is(err, models.ErrContactNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusNotFound)
		return
	}

	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: strings.Split(err.Error(), "\n")}, http.StatusBadRequest)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: contact}, http.StatusOK)
}

func (safeherApp *app) deleteContact(rw http.ResponseWriter, r *http.Request) {
	err := safeherApp.contacts.Remove(mux.Vars(r)["id"])
	if errors.Is(err, models.ErrContactNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusNotFound)
		return
	}

	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Settings handlers
// --------------------------------------------------------------------------------//

func (safeherApp *app) getSettings(rw http.ResponseWriter, r *http.Request) {
	writeResponse(rw, ResponsePayload{Success: true, Data: safeherApp.settings.Load()}, http.StatusOK)
}

func (safeherApp *app) saveSettings(rw http.ResponseWriter, r *http.Request) {
	settings := models.Settings{}
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	if err := safeherApp.settings.Save(settings); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	safeherApp.applySettings(settings)

	writeResponse(rw, ResponsePayload{Success: true, Data: safeherApp.settings.Load()}, http.StatusOK)
}

func (safeherApp *app) reapplySettings(rw http.ResponseWriter, r *http.Request) {
	settings := safeherApp.settings.Load()
	safeherApp.applySettings(settings)

	writeResponse(rw, ResponsePayload{Success: true, Data: settings}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Location handlers
// --------------------------------------------------------------------------------//

func (safeherApp *app) currentLocation(rw http.ResponseWriter, r *http.Request) {
	snapshot := safeherApp.tracker.Current()
	if snapshot == nil {
		writeResponse(rw, ResponsePayload{Errors: []string{"no location fix yet"}}, http.StatusNotFound)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: snapshot}, http.StatusOK)
}

func (safeherApp *app) refreshLocation(rw http.ResponseWriter, r *http.Request) {
	snapshot := safeherApp.tracker.Refresh(r.Context())
	writeResponse(rw, ResponsePayload{Success: true, Data: snapshot}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// SOS handlers
// --------------------------------------------------------------------------------//

func (safeherApp *app) sosSession(rw http.ResponseWriter, r *http.Request) {
	writeResponse(rw, ResponsePayload{Success: true, Data: safeherApp.engine.Session()}, http.StatusOK)
}

func (safeherApp *app) triggerSOS(rw http.ResponseWriter, r *http.Request) {
	session, err := safeherApp.armSOS()
	if errors.Is(err, sos.ErrLocationPending) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}, Data: session}, http.StatusConflict)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: session}, http.StatusOK)
}

func (safeherApp *app) cancelSOS(rw http.ResponseWriter, r *http.Request) {
	cancelled := safeherApp.engine.Cancel()
	writeResponse(rw, ResponsePayload{
		Success: true,
		Data:    map[string]interface{}{"cancelled": cancelled, "session": safeherApp.engine.Session()},
	}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Fake call handlers
// --------------------------------------------------------------------------------//

func (safeherApp *app) triggerFakeCall(rw http.ResponseWriter, r *http.Request) {
	call, err := safeherApp.fakeCall.Start()
	if errors.Is(err, fakecall.ErrDisabled) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusForbidden)
		return
	}

	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: call}, http.StatusOK)
}

func (safeherApp *app) acceptFakeCall(rw http.ResponseWriter, r *http.Request) {
	writeResponse(rw, ResponsePayload{
		Success: true,
		Data:    map[string]bool{"accepted": safeherApp.fakeCall.Accept()},
	}, http.StatusOK)
}

func (safeherApp *app) declineFakeCall(rw http.ResponseWriter, r *http.Request) {
	writeResponse(rw, ResponsePayload{
		Success: true,
		Data:    map[string]bool{"declined": safeherApp.fakeCall.Decline()},
	}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Dispatch history handlers
// --------------------------------------------------------------------------------//

func (safeherApp *app) listDispatches(rw http.ResponseWriter, r *http.Request) {
	entries, err := safeherApp.store.RecentDispatchEntries(50)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: entries}, http.StatusOK)
}
