package router

import (
	"github.com/gin-gonic/gin"
	_ "github.com/portfolio/backend/docs" // Swagger docs
	"github.com/portfolio/backend/internal/interfaces/http/handler"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers groups every HTTP handler the API serves
type Handlers struct {
	Auth        *handler.AuthHandler
	Content     *handler.ContentHandler
	Marketplace *handler.MarketplaceHandler
	Contact     *handler.ContactHandler
	Media       *handler.MediaHandler
	Feed        *handler.FeedHandler
	System      *handler.SystemHandler
}

// Guards are the per-route middlewares
type Guards struct {
	// Admin is the session gate in front of /admin and the signed-in auth routes
	Admin gin.HandlerFunc
	// Credentials throttles login, code verification and refresh; optional
	Credentials gin.HandlerFunc
	// Docs guards /swagger; the docs are not mounted without it
	Docs gin.HandlerFunc
}

// RegisterRoutes mounts the whole API on engine
func RegisterRoutes(engine *gin.Engine, h Handlers, g Guards) {
	engine.GET("/health", h.System.Health)
	engine.GET("/sitemap.xml", h.Feed.Sitemap)
	engine.GET("/rss.xml", h.Feed.RSS)

	if g.Docs != nil {
		engine.GET("/swagger/*any", g.Docs, ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	throttled := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		if g.Credentials == nil {
			return []gin.HandlerFunc{fn}
		}
		return []gin.HandlerFunc{g.Credentials, fn}
	}

	authRoutes := NewSection("/auth")
	authRoutes.POST("/login", throttled(h.Auth.Login)...)
	authRoutes.POST("/verify-otp", throttled(h.Auth.VerifyOTP)...)
	authRoutes.POST("/resend-otp", throttled(h.Auth.ResendOTP)...)
	authRoutes.POST("/refresh", throttled(h.Auth.RefreshToken)...)
	authRoutes.Sub("").Use(g.Admin).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.GetCurrentUser).
		PUT("/password", h.Auth.ChangePassword).
		PUT("/two-factor", h.Auth.SetTwoFactor)

	contentRoutes := NewSection("")
	contentRoutes.GET("/posts", h.Content.ListPosts)
	contentRoutes.GET("/posts/:slug", h.Content.GetPost)
	contentRoutes.GET("/projects", h.Content.ListProjects)
	contentRoutes.GET("/projects/:slug", h.Content.GetProject)

	shopRoutes := NewSection("")
	shopRoutes.GET("/products", h.Marketplace.ListProducts)
	shopRoutes.GET("/products/:slug", h.Marketplace.GetProduct)
	shopRoutes.POST("/orders", h.Marketplace.PlaceOrder)
	shopRoutes.GET("/orders/:id", h.Marketplace.GetOrder)

	contactRoutes := NewSection("/contact")
	contactRoutes.POST("", h.Contact.Submit)

	mediaRoutes := NewSection("/media")
	mediaRoutes.GET("/videos/:id", h.Media.GetVideo)
	mediaRoutes.GET("/preview", h.Media.Preview)

	systemRoutes := NewSection("/system")
	systemRoutes.GET("/info", h.System.GetSystemInfo)

	adminRoutes := NewSection("/admin").Use(g.Admin)
	adminRoutes.Sub("/posts").
		GET("", h.Content.AdminListPosts).
		POST("", h.Content.CreatePost).
		GET("/:id", h.Content.AdminGetPost).
		PUT("/:id", h.Content.UpdatePost).
		DELETE("/:id", h.Content.DeletePost)
	adminRoutes.Sub("/projects").
		GET("", h.Content.ListProjects).
		POST("", h.Content.CreateProject).
		PUT("/:id", h.Content.UpdateProject).
		DELETE("/:id", h.Content.DeleteProject)
	adminRoutes.Sub("/products").
		GET("", h.Marketplace.AdminListProducts).
		POST("", h.Marketplace.CreateProduct).
		GET("/:id", h.Marketplace.AdminGetProduct).
		PUT("/:id", h.Marketplace.UpdateProduct).
		DELETE("/:id", h.Marketplace.DeleteProduct)
	adminRoutes.Sub("/orders").
		GET("", h.Marketplace.ListOrders).
		GET("/:id", h.Marketplace.AdminGetOrder).
		PATCH("/:id/status", h.Marketplace.UpdateOrderStatus)
	adminRoutes.Sub("/contact-messages").
		GET("", h.Contact.List).
		PATCH("/:id/read", h.Contact.MarkRead)
	adminRoutes.Sub("/media").
		POST("/upload-url", h.Media.RequestUpload)

	NewAPI("v1").
		Add(authRoutes, contentRoutes, shopRoutes, contactRoutes, mediaRoutes, systemRoutes, adminRoutes).
		MountOn(engine)
}
