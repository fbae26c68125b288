package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"contactdesk/internal/api/middleware"
	"contactdesk/internal/api/session"
	"contactdesk/internal/api/view"
	"contactdesk/internal/app/service"
	"contactdesk/internal/common"
	"contactdesk/internal/common/screen"
	"contactdesk/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type ContactHandler struct {
	contactService *service.ContactService
	sessions       *session.Manager
	view           *view.View
}

func NewContactHandler(contactService *service.ContactService, sessions *session.Manager, v *view.View) *ContactHandler {
	return &ContactHandler{contactService: contactService, sessions: sessions, view: v}
}

// RegisterRoutes expects a router already guarded by RequireLogin.
func (h *ContactHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.index)
	r.Post("/", h.create)
	r.Get("/update/{contactID}", h.updatePage)
	r.Post("/update/{contactID}", h.update)
	r.Post("/delete/{contactID}", h.delete)
}

func (h *ContactHandler) index(w http.ResponseWriter, r *http.Request) {
	h.renderIndex(w, r, ContactForm{})
}

func (h *ContactHandler) create(w http.ResponseWriter, r *http.Request) {
	form := ContactForm{
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
		Email:     r.PostFormValue("email"),
	}

	_, err := h.contactService.CreateContact(r.Context(), service.ContactRequest{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
	})
	if err != nil {
		var fieldErrs screen.Errors
		if errors.As(err, &fieldErrs) {
			form.Errors = fieldErrs
			h.sessions.Flash(w, r, session.FlashDanger, "Please correct the highlighted errors.")
			h.renderIndex(w, r, form)
			return
		}
		h.renderError(w, r, "create contact", err)
		return
	}

	h.sessions.Flash(w, r, session.FlashSuccess, "Record added successfully.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *ContactHandler) updatePage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contactID(w, r)
	if !ok {
		return
	}

	contact, err := h.contactService.GetContact(r.Context(), id)
	if err != nil {
		h.renderError(w, r, fmt.Sprintf("load contact %d", id), err)
		return
	}

	form := ContactForm{
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		Email:     contact.Email,
	}
	h.renderUpdate(w, r, contact.ID, form)
}

func (h *ContactHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contactID(w, r)
	if !ok {
		return
	}

	form := ContactForm{
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
		Email:     r.PostFormValue("email"),
	}

	_, err := h.contactService.UpdateContact(r.Context(), id, service.ContactRequest{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
	})
	if err != nil {
		var fieldErrs screen.Errors
		if errors.As(err, &fieldErrs) {
			form.Errors = fieldErrs
			h.sessions.Flash(w, r, session.FlashDanger, "Please correct the highlighted errors.")
			h.renderUpdate(w, r, id, form)
			return
		}
		h.renderError(w, r, fmt.Sprintf("update contact %d", id), err)
		return
	}

	h.sessions.Flash(w, r, session.FlashSuccess, "Record updated successfully.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *ContactHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contactID(w, r)
	if !ok {
		return
	}

	if err := h.contactService.DeleteContact(r.Context(), id); err != nil {
		h.renderError(w, r, fmt.Sprintf("delete contact %d", id), err)
		return
	}

	h.sessions.Flash(w, r, session.FlashInfo, "Record deleted.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// contactID parses the {contactID} route parameter; a non-numeric id is the
// same as a missing record.
func (h *ContactHandler) contactID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "contactID"), 10, 64)
	if err != nil || id <= 0 {
		h.view.NotFound(w)
		return 0, false
	}
	return id, true
}

// renderError picks the error page from the status HTTPStatusFromError maps
// the error to. Missing records get the 404 page silently; everything else is
// logged against the acting user and gets the 500 page.
func (h *ContactHandler) renderError(w http.ResponseWriter, r *http.Request, action string, err error) {
	if common.HTTPStatusFromError(err) == http.StatusNotFound {
		h.view.NotFound(w)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	log.Printf("user %d: %s: %v", userID, action, err)
	h.view.ServerError(w)
}

func (h *ContactHandler) renderIndex(w http.ResponseWriter, r *http.Request, form ContactForm) {
	contacts, err := h.contactService.ListContacts(r.Context())
	if err != nil {
		h.renderError(w, r, "list contacts", err)
		return
	}

	h.view.Render(w, http.StatusOK, "index.html", view.Data{
		Title:     "Contacts",
		CSRFToken: h.sessions.CSRFToken(r),
		Flashes:   h.sessions.Flashes(w, r),
		Form:      form,
		Contacts:  contacts,
	})
}

func (h *ContactHandler) renderUpdate(w http.ResponseWriter, r *http.Request, id int64, form ContactForm) {
	h.view.Render(w, http.StatusOK, "update.html", view.Data{
		Title:     "Update contact",
		CSRFToken: h.sessions.CSRFToken(r),
		Flashes:   h.sessions.Flashes(w, r),
		Form:      form,
		Contact:   &model.Contact{ID: id},
	})
}
