// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/julienschmidt/httprouter"
)

// router registers all HTTP endpoints on a bare httprouter.
//
// Current endpoints:
//
//	GET         /               – catalog statistics
//	GET         /books/         – paginated, filtered and annotated listing
//	GET         /books/:id      – single book with availability and store links
//	GET         /books_search/  – search form, or redirect to the listing
//	GET, POST   /wishlists/:id  – toggle the book on the user's wishlist
//	POST,DELETE /borrows/:id    – borrow one copy
//	POST        /returns/:id    – return a borrowed copy
//	any         /logout/        – leave the catalog
func (app *applicationDependencies) router() *httprouter.Router {
	router := httprouter.New()

	// Override the default httprouter error handlers to return JSON responses.
	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/", app.indexHandler)

	router.HandlerFunc(http.MethodGet, "/books/", app.listBooksHandler)
	router.HandlerFunc(http.MethodGet, "/books/:id", app.showBookHandler)
	router.HandlerFunc(http.MethodGet, "/books_search/", app.searchBooksHandler)

	router.HandlerFunc(http.MethodGet, "/wishlists/:id", app.toggleWishlistHandler)
	router.HandlerFunc(http.MethodPost, "/wishlists/:id", app.toggleWishlistHandler)

	router.HandlerFunc(http.MethodPost, "/borrows/:id", app.borrowBookHandler)
	router.HandlerFunc(http.MethodDelete, "/borrows/:id", app.borrowBookHandler)
	router.HandlerFunc(http.MethodPost, "/returns/:id", app.returnBookHandler)

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		router.HandlerFunc(method, "/logout/", app.logoutHandler)
	}

	return router
}

// routes wraps the router in the middleware chain.
//
// Middleware chain (outermost → innermost):
//
//	RequestID → RealIP → recoverPanic → rateLimit → authenticate → requireAuthenticatedUser → router
func (app *applicationDependencies) routes() http.Handler {
	var handler http.Handler = app.router()

	handler = app.requireAuthenticatedUser(handler)
	handler = app.authenticate(handler)
	handler = app.rateLimit(handler)
	handler = app.recoverPanic(handler)
	handler = middleware.RealIP(handler)
	handler = middleware.RequestID(handler)

	return handler
}
