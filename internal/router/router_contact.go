package router

import (
	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/pkg/http"
	"github.com/gatherly/gatherly/pkg/http/jwt"
	"github.com/gatherly/gatherly/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) contactRouter(r fiber.Router, auth fiber.Handler) {
	contact := r.Group("/contact", auth)
	{
		contact.Post("/add", rt.addContact)
		contact.Get("/list", rt.listContacts)
	}

	circle := r.Group("/circle", auth)
	{
		circle.Post("/add", rt.addCircle)
		circle.Get("/list", rt.listCircles)
		circle.Post("/:circleId/member/:contactId", rt.addCircleMember)
	}
}

func (rt *Router) addContact(c *fiber.Ctx) error {
	claims := c.Locals(middleware.ClaimsKey).(*jwt.AuthClaims)

	var req model.CreateContactReq
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}

	contact, err := rt.Contacts.CreateContact(c.UserContext(), claims.HouseholdId, &req)
	if err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	return http.WithRepJSON(c, contact)
}

func (rt *Router) listContacts(c *fiber.Ctx) error {
	claims := c.Locals(middleware.ClaimsKey).(*jwt.AuthClaims)

	contacts, err := rt.Contacts.ListContacts(c.UserContext(), claims.HouseholdId)
	if err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	return http.WithRepJSON(c, contacts)
}

func (rt *Router) addCircle(c *fiber.Ctx) error {
	claims := c.Locals(middleware.ClaimsKey).(*jwt.AuthClaims)

	var req model.CreateCircleReq
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}

	circle, err := rt.Contacts.CreateCircle(c.UserContext(), claims.HouseholdId, &req)
	if err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	return http.WithRepJSON(c, circle)
}

func (rt *Router) listCircles(c *fiber.Ctx) error {
	claims := c.Locals(middleware.ClaimsKey).(*jwt.AuthClaims)

	circles, err := rt.Contacts.ListCircles(c.UserContext(), claims.HouseholdId)
	if err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	return http.WithRepJSON(c, circles)
}

func (rt *Router) addCircleMember(c *fiber.Ctx) error {
	claims := c.Locals(middleware.ClaimsKey).(*jwt.AuthClaims)

	circleId := c.Params("circleId")
	contactId := c.Params("contactId")
	if circleId == "" || contactId == "" {
		return http.WithRepErrMsg(c, http.BadRequest.Code, http.BadRequest.Msg, c.Path())
	}

	if err := rt.Contacts.AddCircleMember(c.UserContext(), claims.HouseholdId, circleId, contactId); err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	return http.WithRepNotDetail(c)
}
