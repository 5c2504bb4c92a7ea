package controllers

import (
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/kendalls-studio-api/middleware"
	"github.com/kendall-kelly/kendalls-studio-api/services"
)

// Dependencies are the services the HTTP layer is built on
type Dependencies struct {
	Validator    *validator.Validator
	Auth         *services.AuthService
	Verification *services.VerificationService
	Users        *services.UserService
	Categories   *services.CategoryService
	Appointments *services.AppointmentService
	Products     *services.ProductService
	Courses      *services.CourseService
	Carts        *services.CartService
	Invoices     *services.InvoiceService
	LineItems    *services.LineItemService
	Addresses    *services.AddressService
	Storage      services.FileStorage
}

// RegisterRoutes mounts every endpoint on the /api/v1 group
func RegisterRoutes(v1 *gin.RouterGroup, deps Dependencies) {
	RegisterValidators()

	authCtl := NewAuthController(deps.Auth, deps.Verification)
	userCtl := NewUserController(deps.Users)
	categoryCtl := NewCategoryController(deps.Categories)
	appointmentCtl := NewAppointmentController(deps.Appointments)
	productCtl := NewProductController(deps.Products)
	courseCtl := NewCourseController(deps.Courses)
	cartCtl := NewCartController(deps.Carts)
	invoiceCtl := NewInvoiceController(deps.Invoices)
	lineItemCtl := NewLineItemController(deps.LineItems)
	addressCtl := NewAddressController(deps.Addresses)
	fileCtl := NewFileController(deps.Storage)

	// Public routes
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authCtl.Login)
		auth.POST("/refresh", authCtl.Refresh)
		auth.POST("/register", authCtl.Register)
		auth.POST("/verify", authCtl.Verify)
		auth.POST("/verify/resend", authCtl.ResendVerification)
	}

	v1.GET("/files/:filename", fileCtl.GetFile)

	v1.GET("/appointment-categories", categoryCtl.ListAppointmentCategories)
	v1.GET("/appointment-categories/:id", categoryCtl.GetAppointmentCategory)
	v1.GET("/product-categories", categoryCtl.ListProductCategories)
	v1.GET("/product-categories/:id", categoryCtl.GetProductCategory)
	v1.GET("/course-categories", categoryCtl.ListCourseCategories)
	v1.GET("/course-categories/:id", categoryCtl.GetCourseCategory)

	v1.GET("/products", productCtl.ListProducts)
	v1.GET("/products/:id", productCtl.GetProduct)
	v1.GET("/courses", courseCtl.ListCourses)
	v1.GET("/courses/:id", courseCtl.GetCourse)

	// Authenticated routes
	authed := v1.Group("")
	authed.Use(middleware.EnsureValidToken(deps.Validator, deps.Users))
	admin := authed.Group("")
	admin.Use(middleware.RequireAuthority(middleware.AuthorityAdmin))

	authed.GET("/users/me", userCtl.GetMyProfile)
	authed.GET("/users/:id", userCtl.GetUser)
	authed.PATCH("/users/:id", userCtl.UpdateUser)
	admin.GET("/users", userCtl.ListUsers)
	admin.GET("/users/lookup/:login", userCtl.LookupUser)
	admin.POST("/users", userCtl.CreateUser)
	admin.POST("/users/:id/activate", userCtl.ActivateUser)
	admin.DELETE("/users/:id", userCtl.DeleteUser)

	admin.POST("/appointment-categories", categoryCtl.CreateAppointmentCategory)
	admin.PATCH("/appointment-categories/:id", categoryCtl.UpdateAppointmentCategory)
	admin.DELETE("/appointment-categories/:id", categoryCtl.DeleteAppointmentCategory)
	admin.POST("/product-categories", categoryCtl.CreateProductCategory)
	admin.PATCH("/product-categories/:id", categoryCtl.UpdateProductCategory)
	admin.DELETE("/product-categories/:id", categoryCtl.DeleteProductCategory)
	admin.POST("/course-categories", categoryCtl.CreateCourseCategory)
	admin.PATCH("/course-categories/:id", categoryCtl.UpdateCourseCategory)
	admin.DELETE("/course-categories/:id", categoryCtl.DeleteCourseCategory)

	authed.GET("/appointments", appointmentCtl.ListAppointments)
	authed.GET("/appointments/booked-days", appointmentCtl.BookedDays)
	authed.GET("/appointments/:id", appointmentCtl.GetAppointment)
	authed.POST("/appointments", appointmentCtl.CreateAppointment)
	authed.PATCH("/appointments/:id", appointmentCtl.UpdateAppointment)
	authed.DELETE("/appointments/:id", appointmentCtl.DeleteAppointment)
	admin.PATCH("/appointments/:id/status", appointmentCtl.ChangeAppointmentStatus)

	admin.POST("/products", productCtl.CreateProduct)
	admin.PATCH("/products/:id", productCtl.UpdateProduct)
	admin.DELETE("/products/:id", productCtl.DeleteProduct)
	admin.PUT("/products/:id/image", productCtl.SetProductImage)
	admin.DELETE("/products/:id/image", productCtl.RemoveProductImage)

	admin.POST("/courses", courseCtl.CreateCourse)
	admin.PATCH("/courses/:id", courseCtl.UpdateCourse)
	admin.DELETE("/courses/:id", courseCtl.DeleteCourse)
	authed.POST("/courses/:id/enrollments", courseCtl.Enroll)
	admin.PATCH("/courses/:id/enrollments/:user_id", courseCtl.ChangeEnrollmentStatus)
	admin.POST("/courses/:id/images", courseCtl.AddCourseImage)
	admin.DELETE("/courses/:id/images/:name", courseCtl.RemoveCourseImage)

	authed.GET("/cart", cartCtl.ListCart)
	authed.POST("/cart/items", cartCtl.AddToCart)
	authed.PATCH("/cart/items/:product_id", cartCtl.SetCartQuantity)
	authed.DELETE("/cart/items/:product_id", cartCtl.RemoveFromCart)

	authed.GET("/invoices", invoiceCtl.ListInvoices)
	admin.GET("/invoices/paid", invoiceCtl.ListPaidInvoices)
	authed.GET("/invoices/:id", invoiceCtl.GetInvoice)
	authed.GET("/invoices/:id/pdf", invoiceCtl.GetInvoicePDF)
	authed.POST("/invoices", invoiceCtl.CreateInvoice)
	authed.PATCH("/invoices/:id", invoiceCtl.UpdateInvoice)
	admin.PATCH("/invoices/:id/status", invoiceCtl.ChangeInvoiceStatus)
	admin.DELETE("/invoices/:id", invoiceCtl.DeleteInvoice)

	authed.GET("/line-items", lineItemCtl.ListLineItems)
	authed.GET("/line-items/:id", lineItemCtl.GetLineItem)
	authed.POST("/line-items", lineItemCtl.CreateLineItem)
	admin.DELETE("/line-items/:id", lineItemCtl.DeleteLineItem)

	authed.GET("/addresses", addressCtl.ListAddresses)
	authed.GET("/addresses/:id", addressCtl.GetAddress)
	authed.POST("/addresses", addressCtl.CreateAddress)
	authed.PATCH("/addresses/:id", addressCtl.UpdateAddress)
	authed.DELETE("/addresses/:id", addressCtl.DeleteAddress)
}
