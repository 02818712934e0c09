package router

import (
	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/pkg/http"
	"github.com/gatherly/gatherly/pkg/http/jwt"
	"github.com/gatherly/gatherly/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) householdRouter(r fiber.Router, auth fiber.Handler) {
	household := r.Group("/household", auth)
	{
		household.Put("/status", rt.updateStatus)
		household.Get("/status/:householdId", rt.getStatus)
	}
}

// updateStatus writes the caller's own status and broadcasts to watchers.
// The write succeeding is what the caller sees; per-watcher delivery is
// best-effort.
func (rt *Router) updateStatus(c *fiber.Ctx) error {
	claims := c.Locals(middleware.ClaimsKey).(*jwt.AuthClaims)

	var req model.UpdateStatusReq
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}
	if !model.ValidStatusState(req.State) {
		return http.WithRepErrMsg(c, http.InvalidStatusState.Code, http.InvalidStatusState.Msg, c.Path())
	}

	payload, err := rt.Status.UpdateStatus(c.UserContext(), claims.HouseholdId, &req)
	if err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	return http.WithRepJSON(c, payload)
}

func (rt *Router) getStatus(c *fiber.Ctx) error {
	householdId := c.Params("householdId")
	if householdId == "" {
		return http.WithRepErrMsg(c, http.HouseholdIdIsEmpty.Code, http.HouseholdIdIsEmpty.Msg, c.Path())
	}

	payload, err := rt.Status.GetStatus(c.UserContext(), householdId)
	if err != nil {
		return http.WithRepErrMsg(c, http.HouseholdNotExist.Code, http.HouseholdNotExist.Msg, c.Path())
	}
	return http.WithRepJSON(c, payload)
}
