package controller

import (
	"persuasive-dialogue-be/internal/dto"
	"persuasive-dialogue-be/internal/pkg/serverutils"
	"persuasive-dialogue-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDialogueController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	ShowSession(ctx *fiber.Ctx) error
	Decide(ctx *fiber.Ctx) error
	RecordTurn(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	ValidateConfig(ctx *fiber.Ctx) error
	AuditLog(ctx *fiber.Ctx) error
}

type dialogueController struct {
	service service.IDialogueService
}

func NewDialogueController(service service.IDialogueService) IDialogueController {
	return &dialogueController{service: service}
}

func (c *dialogueController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/dialogue/v1")
	h.Post("session", c.CreateSession)
	h.Get("session/:id", c.ShowSession)
	h.Post("session/:id/decide", c.Decide)
	h.Post("session/:id/turn", c.RecordTurn)
	h.Delete("session/:id", c.DeleteSession)
	h.Get("config/validate", c.ValidateConfig)
	h.Get("audit", c.AuditLog)
}

func (c *dialogueController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.CreateSession(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *dialogueController) ShowSession(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetSession(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *dialogueController) Decide(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	var req dto.DecideRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Decide(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success decide turn", res))
}

func (c *dialogueController) RecordTurn(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	var req dto.RecordTurnRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.RecordTurn(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success record turn", res))
}

func (c *dialogueController) DeleteSession(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	if err := c.service.DeleteSession(ctx.UserContext(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success reset session", nil))
}

func (c *dialogueController) ValidateConfig(ctx *fiber.Ctx) error {
	res := c.service.ValidateConfig(ctx.UserContext())
	return ctx.JSON(serverutils.SuccessResponse("Success validate config", res))
}

func (c *dialogueController) AuditLog(ctx *fiber.Ctx) error {
	var query dto.AuditQuery
	if err := ctx.QueryParser(&query); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.service.AuditEntries(ctx.UserContext(), &query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get audit log", res))
}

func sessionID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}
	return id, nil
}

func parseBody(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return serverutils.ValidateRequest(req)
}
