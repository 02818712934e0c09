package router

import (
	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/pkg/http"
	"github.com/gatherly/gatherly/pkg/http/jwt"
	"github.com/gatherly/gatherly/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) pushRouter(r fiber.Router, auth fiber.Handler) {
	push := r.Group("/push", auth)
	{
		push.Post("/subscribe", rt.savePushSubscription)
		push.Delete("/subscribe/:token", rt.deletePushSubscription)
	}
}

func (rt *Router) savePushSubscription(c *fiber.Ctx) error {
	claims := c.Locals(middleware.ClaimsKey).(*jwt.AuthClaims)

	var req model.SavePushSubscriptionReq
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}

	if err := rt.Push.Save(c.UserContext(), claims.HouseholdId, claims.MemberId, &req); err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	return http.WithRepNotDetail(c)
}

func (rt *Router) deletePushSubscription(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return http.WithRepErrMsg(c, http.BadRequest.Code, http.BadRequest.Msg, c.Path())
	}
	if err := rt.Push.Delete(c.UserContext(), token); err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	return http.WithRepNotDetail(c)
}
