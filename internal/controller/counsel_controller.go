package controller

import (
	"ai-career-counsel-be/internal/dto"
	"ai-career-counsel-be/internal/pkg/serverutils"
	"ai-career-counsel-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICounselController interface {
	RegisterRoutes(r fiber.Router)
	ResolveSession(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	ChatHistory(ctx *fiber.Ctx) error
	SendChat(ctx *fiber.Ctx) error
}

type counselController struct {
	counselService service.ICounselService
}

func NewCounselController(counselService service.ICounselService) ICounselController {
	return &counselController{
		counselService: counselService,
	}
}

func (c *counselController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/counsel/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("session/resolve", c.ResolveSession)
	h.Get("sessions", c.ListSessions)
	h.Get("session/:id/messages", c.ChatHistory)
	h.Post("chat", c.SendChat)
}

func (c *counselController) ResolveSession(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.ResolveSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.counselService.ResolveSession(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success resolve session", res))
}

func (c *counselController) ListSessions(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.counselService.GetAllSessions(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list sessions", res))
}

func (c *counselController) ChatHistory(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		return serverutils.NewAppError(fiber.StatusBadRequest, "Invalid session id")
	}

	res, err := c.counselService.GetChatHistory(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show chat history", res))
}

func (c *counselController) SendChat(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.counselService.SendChat(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send chat", res))
}
