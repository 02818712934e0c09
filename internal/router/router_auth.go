package router

import (
	"errors"

	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/internal/service"
	"github.com/gatherly/gatherly/pkg/http"
	"github.com/gatherly/gatherly/pkg/http/jwt"
	"github.com/gatherly/gatherly/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) authRouter(r fiber.Router) {
	authGroup := r.Group("/auth")
	{
		authGroup.Post("/otp", rt.requestOtp)
		authGroup.Post("/login", rt.login)
		authGroup.Post("/register", rt.register)
		authGroup.Post("/logout", middleware.AuthorizationMiddleware(rt.Http.Auth, rt.Redis), rt.logout)
	}
}

func (rt *Router) requestOtp(c *fiber.Ctx) error {
	var req model.RequestOtpReq
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}
	if req.Phone == "" {
		return http.WithRepErrMsg(c, http.PhoneIsRequired.Code, http.PhoneIsRequired.Msg, c.Path())
	}

	if err := rt.Auth.RequestOtp(c.UserContext(), req.Phone); err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	return http.WithRepNotDetail(c)
}

func (rt *Router) login(c *fiber.Ctx) error {
	var req model.VerifyOtpReq
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}

	rep, err := rt.Auth.Login(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOtp) {
			return http.WithRepErrMsg(c, http.InvalidOtpCode.Code, http.InvalidOtpCode.Msg, c.Path())
		}
		if errors.Is(err, service.ErrMemberNotFound) {
			return http.WithRepErrMsg(c, http.HouseholdNotExist.Code, http.HouseholdNotExist.Msg, c.Path())
		}
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	return http.WithRepJSON(c, rep)
}

func (rt *Router) register(c *fiber.Ctx) error {
	var req model.RegisterReq
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}
	if req.Phone == "" {
		return http.WithRepErrMsg(c, http.PhoneIsRequired.Code, http.PhoneIsRequired.Msg, c.Path())
	}

	rep, err := rt.Auth.Register(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOtp) {
			return http.WithRepErrMsg(c, http.InvalidOtpCode.Code, http.InvalidOtpCode.Msg, c.Path())
		}
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	return http.WithRepJSON(c, rep)
}

func (rt *Router) logout(c *fiber.Ctx) error {
	claims := c.Locals(middleware.ClaimsKey).(*jwt.AuthClaims)
	if err := rt.Auth.Logout(c.UserContext(), claims.HouseholdId); err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	return http.WithRepNotDetail(c)
}
