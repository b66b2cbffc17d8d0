package handlers

import (
	"github.com/go-chi/chi/v5"

	"github.com/storefront/backend/internal/middleware"
)

// Routes bundles the API handlers.
type Routes struct {
	Health     *HealthHandler
	Orders     *OrderHandler
	Products   *ProductHandler
	Users      *UserHandler
	Categories *CategoryHandler
	Auth       middleware.Authenticator
}

// Mount registers every API route on r.
func (rt *Routes) Mount(r chi.Router) {
	authenticated := middleware.Authenticate(rt.Auth)

	r.Method("GET", "/health", rt.Health)

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/", rt.Users.Register)
		r.Post("/auth", rt.Users.Login)
		r.Post("/logout", rt.Users.Logout)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/profile", rt.Users.GetProfile)
			r.Put("/profile", rt.Users.UpdateProfile)

			r.With(middleware.AuthorizeAdmin).Route("/{id}", func(r chi.Router) {
				r.Get("/", rt.Users.GetUser)
				r.Put("/", rt.Users.UpdateUser)
				r.Delete("/", rt.Users.DeleteUser)
			})
		})
	})

	r.Route("/api/category", func(r chi.Router) {
		r.Get("/categories", rt.Categories.ListCategories)
		r.Get("/{id}", rt.Categories.GetCategory)

		r.Group(func(r chi.Router) {
			r.Use(authenticated, middleware.AuthorizeAdmin)
			r.Post("/", rt.Categories.CreateCategory)
			r.Put("/{id}", rt.Categories.UpdateCategory)
			r.Delete("/{id}", rt.Categories.DeleteCategory)
		})
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", rt.Products.ListProducts)
		r.Get("/allproducts", rt.Products.ListProducts)
		r.Get("/{id}", rt.Products.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(authenticated, middleware.AuthorizeAdmin)
			r.Post("/", rt.Products.CreateProduct)
			r.Put("/{id}", rt.Products.UpdateProduct)
			r.Delete("/{id}", rt.Products.DeleteProduct)
		})
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authenticated)

		r.Post("/", rt.Orders.CreateOrder)
		r.Get("/mine", rt.Orders.ListMyOrders)
		r.Get("/{id}", rt.Orders.GetOrder)
		r.Put("/{id}/pay", rt.Orders.MarkPaid)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthorizeAdmin)
			r.Get("/", rt.Orders.ListOrders)
			r.Get("/total-orders", rt.Orders.CountOrders)
			r.Get("/total-sales", rt.Orders.TotalSales)
			r.Get("/total-sales-by-date", rt.Orders.SalesByDate)
			r.Put("/{id}/deliver", rt.Orders.MarkDelivered)
		})
	})
}
