package controller

import (
	"pergunte-ao-passado/internal/pkg/serverutils"
	"pergunte-ao-passado/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICorpusController interface {
	RegisterRoutes(r fiber.Router)
	GetStats(ctx *fiber.Ctx) error
	ListDocuments(ctx *fiber.Ctx) error
}

type corpusController struct {
	corpusService service.ICorpusService
}

func NewCorpusController(corpusService service.ICorpusService) ICorpusController {
	return &corpusController{
		corpusService: corpusService,
	}
}

func (c *corpusController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/corpus/v1")
	h.Get("stats", c.GetStats)
	h.Get("documents", c.ListDocuments)
}

func (c *corpusController) GetStats(ctx *fiber.Ctx) error {
	res, err := c.corpusService.GetStats(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get corpus stats", res))
}

func (c *corpusController) ListDocuments(ctx *fiber.Ctx) error {
	res, err := c.corpusService.ListDocuments(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list corpus documents", res))
}
