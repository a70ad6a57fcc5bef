package server

import (
	"context"
	"net/http"

	"bakeshop/internal/handlers"
	applog "bakeshop/internal/log"
)

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	mux.HandleFunc("/healthz", handlers.Health)
	mux.HandleFunc("/login", handlers.Login)
	mux.HandleFunc("/signup", handlers.Signup)
	mux.HandleFunc("/logout", handlers.Logout)
	mux.Handle("/app/api/ingredients", handlers.RequireAuthentication(http.HandlerFunc(handlers.IngredientResource)))
	mux.Handle("/app/api/ingredients/", handlers.RequireAuthentication(http.HandlerFunc(handlers.IngredientResource)))
	mux.Handle("/app/api/recipes", handlers.RequireAuthentication(http.HandlerFunc(handlers.RecipeResource)))
	mux.Handle("/app/api/recipes/", handlers.RequireAuthentication(http.HandlerFunc(handlers.RecipeResource)))
	mux.Handle("/app/api/products", handlers.RequireAuthentication(http.HandlerFunc(handlers.ProductResource)))
	mux.Handle("/app/api/products/", handlers.RequireAuthentication(http.HandlerFunc(handlers.ProductResource)))
	applog.Debug(context.Background(), "routes registered", "protected", true)
	return mux
}
