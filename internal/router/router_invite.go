package router

import (
	"errors"
	"time"

	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/internal/service"
	"github.com/gatherly/gatherly/pkg/http"
	"github.com/gatherly/gatherly/pkg/http/jwt"
	"github.com/gatherly/gatherly/pkg/http/middleware"
	"github.com/gatherly/gatherly/pkg/log"
	"github.com/gofiber/fiber/v2"
)

// head start for the websocket/push notifications sent at creation time
const trackedDeliveryDelay = 30 * time.Second

func (rt *Router) inviteRouter(r fiber.Router, auth fiber.Handler) {
	invite := r.Group("/invite", auth)
	{
		invite.Post("/add", rt.addInvite)
		invite.Get("/sent", rt.listSentInvites)
		invite.Get("/received", rt.listReceivedInvites)
		invite.Get("/:inviteId", rt.getInvite)
		invite.Post("/:inviteId/respond", rt.respondInvite)
		invite.Post("/:inviteId/redeliver", rt.redeliverInvite)
		invite.Get("/:inviteId/deliveries", rt.inviteDeliveries)
	}
}

func (rt *Router) addInvite(c *fiber.Ctx) error {
	claims := c.Locals(middleware.ClaimsKey).(*jwt.AuthClaims)

	var req model.CreateInviteReq
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}

	detail, err := rt.Invites.CreateInvite(c.UserContext(), claims.HouseholdId, &req)
	if err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}

	// tracked=1 schedules a full policy-engine delivery behind the
	// creation-time notifications, so recipients get an accounted attempt
	if c.QueryBool("tracked") {
		if _, err := rt.Invites.Redeliver(c.UserContext(), detail.Invite.InviteId, nil, trackedDeliveryDelay); err != nil {
			log.Errorw("schedule tracked delivery failed", "inviteId", detail.Invite.InviteId, "error", err)
		}
	}
	return http.WithRepJSON(c, detail)
}

func (rt *Router) getInvite(c *fiber.Ctx) error {
	detail, err := rt.Invites.GetInvite(c.UserContext(), c.Params("inviteId"))
	if err != nil {
		if errors.Is(err, service.ErrInviteNotFound) {
			return http.WithRepErrMsg(c, http.InviteNotExist.Code, http.InviteNotExist.Msg, c.Path())
		}
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	return http.WithRepJSON(c, detail)
}

func (rt *Router) respondInvite(c *fiber.Ctx) error {
	claims := c.Locals(middleware.ClaimsKey).(*jwt.AuthClaims)

	var req model.RespondInviteReq
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}

	err := rt.Invites.Respond(c.UserContext(), c.Params("inviteId"), claims.HouseholdId, req.Response)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound), errors.Is(err, service.ErrNotARecipient):
			return http.WithRepErrMsg(c, http.InviteNotExist.Code, http.InviteNotExist.Msg, c.Path())
		case errors.Is(err, service.ErrInviteAlreadyAnswered):
			return http.WithRepErrMsg(c, http.InviteAlreadyAnswered.Code, http.InviteAlreadyAnswered.Msg, c.Path())
		default:
			return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
		}
	}
	return http.WithRepNotDetail(c)
}

type redeliverReq struct {
	Prefs        map[string]string `json:"prefs"`
	DelaySeconds int               `json:"delaySeconds"`
}

// redeliverInvite runs the tracked delivery path and returns the outcome,
// or schedules it through the queue when a delay is requested.
func (rt *Router) redeliverInvite(c *fiber.Ctx) error {
	var req redeliverReq
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
		}
	}

	outcome, err := rt.Invites.Redeliver(c.UserContext(), c.Params("inviteId"), req.Prefs, time.Duration(req.DelaySeconds)*time.Second)
	if err != nil {
		if errors.Is(err, service.ErrInviteNotFound) {
			return http.WithRepErrMsg(c, http.InviteNotExist.Code, http.InviteNotExist.Msg, c.Path())
		}
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	if outcome == nil {
		// queued for later
		return http.WithRepNotDetail(c)
	}
	return http.WithRepJSON(c, outcome)
}

func (rt *Router) inviteDeliveries(c *fiber.Ctx) error {
	logs, err := rt.Invites.DeliveryHistory(c.UserContext(), c.Params("inviteId"))
	if err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	return http.WithRepJSON(c, logs)
}

func (rt *Router) listSentInvites(c *fiber.Ctx) error {
	claims := c.Locals(middleware.ClaimsKey).(*jwt.AuthClaims)

	invites, err := rt.Invites.ListSent(c.UserContext(), claims.HouseholdId)
	if err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	return http.WithRepJSON(c, invites)
}

func (rt *Router) listReceivedInvites(c *fiber.Ctx) error {
	claims := c.Locals(middleware.ClaimsKey).(*jwt.AuthClaims)

	invites, err := rt.Invites.ListReceived(c.UserContext(), claims.HouseholdId)
	if err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	return http.WithRepJSON(c, invites)
}
