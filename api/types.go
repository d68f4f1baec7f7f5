package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	blogPostHandler     blogPostHandler
	opportunityHandler  opportunityHandler
	testimonialHandler  testimonialHandler
	homepageHandler     homepageHandler
	settingHandler      settingHandler
	contactHandler      contactHandler
	formHandler         formHandler
	registrationHandler registrationHandler
	newsletterHandler   newsletterHandler
	dataHandlers        map[string]dataHandler
	defaultDataHandler  dataHandler
	adminHandler        adminHandler
	paymentHandler      paymentHandler
	uploadHandler       uploadHandler
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// DeletedResponse acknowledges a delete.
type DeletedResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
