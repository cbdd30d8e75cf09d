// cmd/api/handlers.go
// This file contains all HTTP request handlers for the catalog.
// Each handler is a method on *applicationDependencies so it has access
// to the logger and database models.
package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aoideee/library-catalog/internal/data"
	"github.com/aoideee/library-catalog/internal/validator"
)

const (
	booksPath      = "/books/"
	listPageSize   = 20
	defaultSort    = "title"
	headerWishlist = "X-Wishlist-State"
	headerBorrow   = "X-Borrow-Outcome"
	headerReturn   = "X-Return-Outcome"
)

// indexHandler handles GET /.
// It reports the catalog statistics.
func (app *applicationDependencies) indexHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := app.models.Stats.Get(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"stats": stats}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listBooksHandler handles GET /books/.
// It accepts the optional title, author, search_type, page and sort query
// parameters and returns one page of matching books, annotated for the requester.
func (app *applicationDependencies) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	qs, err := app.readQuery(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()

	criteria := data.SearchCriteria{
		Title:  app.readString(qs, "title", ""),
		Author: app.readString(qs, "author", ""),
		Mode:   data.ParseSearchMode(qs.Get("search_type")),
	}

	filters := data.Filters{
		Page:         app.readInt(qs, "page", 1, v),
		PageSize:     listPageSize,
		Sort:         app.readString(qs, "sort", defaultSort),
		SortSafeList: []string{"title", "-title"},
	}

	data.ValidateFilters(v, filters)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	books, metadata, err := app.models.Books.GetAll(r.Context(), criteria, filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if err := app.models.Books.Annotate(r.Context(), app.contextGetUser(r), books); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"books": books, "metadata": metadata}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showBookHandler handles GET /books/:id.
// It returns the book with its copy counters and store links.
func (app *applicationDependencies) showBookHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := app.readIDParam(r)
	if !ok {
		app.notFoundResponse(w, r)
		return
	}

	book, err := app.models.Books.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	availability, err := app.models.Availability.Get(r.Context(), id)
	switch {
	case errors.Is(err, data.ErrRecordNotFound):
		availability = &data.Availability{BookID: id}
	case err != nil:
		app.serverErrorResponse(w, r, err)
		return
	}

	links, err := app.models.AmazonLinks.GetAllForBook(r.Context(), id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{
		"book":         book,
		"availability": availability,
		"amazon_links": links,
	}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// searchBooksHandler handles GET /books_search/.
// With a title or author parameter it redirects to the filtered listing; otherwise it
// describes the search form.
func (app *applicationDependencies) searchBooksHandler(w http.ResponseWriter, r *http.Request) {
	qs, err := app.readQuery(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// A submitted form carries the keys even when both fields are empty.
	if qs.Has("title") || qs.Has("author") {
		mode := data.ParseSearchMode(qs.Get("search_type"))
		app.redirect(w, r, searchRedirectTarget(qs.Get("title"), qs.Get("author"), mode), nil)
		return
	}

	form := envelope{
		"fields": []string{"title", "author", "search_type"},
		"search_types": map[string]string{
			data.SearchAnd.String(): "and",
			data.SearchOr.String():  "or",
		},
		"action": booksPath,
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"search_form": form}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// searchRedirectTarget keeps the author, title, search_type parameter order.
func searchRedirectTarget(title, author string, mode data.SearchMode) string {
	return fmt.Sprintf("%s?author=%s&title=%s&search_type=%s",
		booksPath, url.QueryEscape(author), url.QueryEscape(title), mode.String())
}

// toggleWishlistHandler handles GET and POST /wishlists/:id.
func (app *applicationDependencies) toggleWishlistHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := app.readIDParam(r)
	if !ok {
		app.notFoundResponse(w, r)
		return
	}

	state, err := app.models.Wishlists.Toggle(r.Context(), app.contextGetUser(r).ID, id)
	if err != nil {
		app.modelErrorResponse(w, r, err)
		return
	}

	app.redirect(w, r, booksPath, http.Header{headerWishlist: {state.String()}})
}

// borrowBookHandler handles POST and DELETE /borrows/:id.
// A refused borrow still redirects; the outcome travels in X-Borrow-Outcome.
func (app *applicationDependencies) borrowBookHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := app.readIDParam(r)
	if !ok {
		app.notFoundResponse(w, r)
		return
	}

	outcome, err := app.models.Borrows.Borrow(r.Context(), app.contextGetUser(r).ID, id)
	if err != nil {
		app.modelErrorResponse(w, r, err)
		return
	}

	app.redirect(w, r, booksPath, http.Header{headerBorrow: {outcome.String()}})
}

// returnBookHandler handles POST /returns/:id.
func (app *applicationDependencies) returnBookHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := app.readIDParam(r)
	if !ok {
		app.notFoundResponse(w, r)
		return
	}

	outcome, err := app.models.Borrows.Return(r.Context(), app.contextGetUser(r).ID, id)
	if err != nil {
		app.modelErrorResponse(w, r, err)
		return
	}

	app.redirect(w, r, booksPath, http.Header{headerReturn: {outcome.String()}})
}

// logoutHandler handles /logout/. The session itself belongs to the
// authenticating proxy, so this only sends the browser to the logout URL.
func (app *applicationDependencies) logoutHandler(w http.ResponseWriter, r *http.Request) {
	app.redirect(w, r, app.config.auth.logoutURL, nil)
}

// modelErrorResponse maps data layer errors of the state-changing endpoints.
func (app *applicationDependencies) modelErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, data.ErrRecordNotFound):
		app.notFoundResponse(w, r)
	default:
		app.serverErrorResponse(w, r, err)
	}
}
