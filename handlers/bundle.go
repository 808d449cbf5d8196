package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups every endpoint handler the router mounts.
type HandlerBundle struct {
	// Identity endpoints
	RegisterHandler   gin.HandlerFunc
	LoginHandler      gin.HandlerFunc
	ListUsersHandler  gin.HandlerFunc
	MeHandler         gin.HandlerFunc
	AuthStatusHandler gin.HandlerFunc

	// Google sign-in
	GoogleAuthorizeHandler gin.HandlerFunc
	GoogleCallbackHandler  gin.HandlerFunc
	GoogleIDTokenHandler   gin.HandlerFunc

	// Offering endpoints
	CreateOfferingHandler       gin.HandlerFunc
	ListOpenOfferingsHandler    gin.HandlerFunc
	GetOfferingHandler          gin.HandlerFunc
	OfferingsByPublisherHandler gin.HandlerFunc
	OfferingsByCategoryHandler  gin.HandlerFunc
	OfferingByNameHandler       gin.HandlerFunc
	DeleteOfferingHandler       gin.HandlerFunc
	ReserveOfferingHandler      gin.HandlerFunc

	// Publisher endpoints
	LookupCNPJHandler        gin.HandlerFunc
	RegisterPublisherHandler gin.HandlerFunc
	ListPublishersHandler    gin.HandlerFunc
	GetPublisherHandler      gin.HandlerFunc
}

// NewHandlerBundle wires handler methods into the bundle.
func NewHandlerBundle(auth *AuthHandler, oauth *OAuthHandler, offerings *OfferingHandler, publishers *PublisherHandler) *HandlerBundle {
	return &HandlerBundle{
		RegisterHandler:   auth.RegisterHandler,
		LoginHandler:      auth.LoginHandler,
		ListUsersHandler:  auth.ListUsersHandler,
		MeHandler:         auth.MeHandler,
		AuthStatusHandler: auth.StatusHandler,

		GoogleAuthorizeHandler: oauth.AuthorizeHandler,
		GoogleCallbackHandler:  oauth.CallbackHandler,
		GoogleIDTokenHandler:   oauth.IDTokenHandler,

		CreateOfferingHandler:       offerings.CreateHandler,
		ListOpenOfferingsHandler:    offerings.ListOpenHandler,
		GetOfferingHandler:          offerings.GetHandler,
		OfferingsByPublisherHandler: offerings.ListByPublisherHandler,
		OfferingsByCategoryHandler:  offerings.ListByCategoryHandler,
		OfferingByNameHandler:       offerings.GetByNameHandler,
		DeleteOfferingHandler:       offerings.DeleteHandler,
		ReserveOfferingHandler:      offerings.ReserveHandler,

		LookupCNPJHandler:        publishers.LookupCNPJHandler,
		RegisterPublisherHandler: publishers.RegisterHandler,
		ListPublishersHandler:    publishers.ListHandler,
		GetPublisherHandler:      publishers.GetHandler,
	}
}
