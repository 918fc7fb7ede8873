package dirapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cosmocode/sheetauth/storage/model"
)

// registerUsers wires the account CRUD handlers.
func registerUsers(r fiber.Router, dir Directory) {
	g := r.Group("/users")

	type listReq struct {
		Start int    `query:"start"`
		Limit int    `query:"limit"`
		User  string `query:"user"`
		Name  string `query:"name"`
		Mail  string `query:"mail"`
		Grps  string `query:"grps"`
	}
	g.Get("/", func(c *fiber.Ctx) error {
		var req listReq
		if err := c.QueryParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "error_description": "could not parse request parameters"})
		}
		filter := model.FilterSpec{}
		for column, pattern := range map[string]string{
			model.ColUser: req.User,
			model.ColName: req.Name,
			model.ColMail: req.Mail,
			model.ColGrps: req.Grps,
		} {
			if pattern != "" {
				filter[column] = pattern
			}
		}
		page, err := dir.Enumerate(c.Context(), req.Start, req.Limit, filter)
		if err != nil {
			return serverError(c, err)
		}
		return c.JSON(page)
	})

	type createReq struct {
		Login    string   `json:"user"`
		Password string   `json:"pass"`
		Name     string   `json:"name"`
		Mail     string   `json:"mail"`
		Groups   []string `json:"grps"`
	}
	g.Post("/", func(c *fiber.Ctx) error {
		var req createReq
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "error_description": "invalid body"})
		}
		if req.Login == "" || req.Password == "" || req.Mail == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "error_description": "user, pass and mail are required"})
		}
		err := dir.Create(c.Context(), req.Login, req.Password, req.Name, req.Mail, req.Groups)
		if err != nil {
			if _, ok := err.(model.AlreadyExistsError); ok {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "invalid_request", "error_description": "user already exists"})
			}
			return serverError(c, err)
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	g.Get("/:login", func(c *fiber.Ctx) error {
		rec, err := dir.Lookup(c.Context(), c.Params("login"))
		if err != nil {
			if _, ok := err.(model.NotFoundError); ok {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "error_description": "user not found"})
			}
			return serverError(c, err)
		}
		return c.JSON(rec)
	})

	type updateReq struct {
		Password *string   `json:"pass"`
		Name     *string   `json:"name"`
		Mail     *string   `json:"mail"`
		Groups   *[]string `json:"grps"`
	}
	g.Patch("/:login", func(c *fiber.Ctx) error {
		var req updateReq
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "error_description": "invalid body"})
		}
		err := dir.Update(
			c.Context(), c.Params("login"), model.FieldChanges{
				Password: req.Password,
				Name:     req.Name,
				Mail:     req.Mail,
				Groups:   req.Groups,
			},
		)
		if err != nil {
			if _, ok := err.(model.NotFoundError); ok {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "error_description": "user not found"})
			}
			return serverError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	type deleteReq struct {
		Logins []string `json:"users"`
	}
	g.Delete("/", func(c *fiber.Ctx) error {
		var req deleteReq
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "error_description": "invalid body"})
		}
		deleted, err := dir.Delete(c.Context(), req.Logins)
		if err != nil {
			return serverError(c, err)
		}
		return c.JSON(fiber.Map{"deleted": deleted})
	})

	g.Delete("/:login", func(c *fiber.Ctx) error {
		deleted, err := dir.Delete(c.Context(), []string{c.Params("login")})
		if err != nil {
			return serverError(c, err)
		}
		if deleted == 0 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "error_description": "user not found"})
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
