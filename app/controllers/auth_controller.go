package controllers

import (
	"github.com/vancyferns/near2door/app/services"
	"github.com/vancyferns/near2door/pkg/ctx"
	"github.com/vancyferns/near2door/pkg/projector"
)

type AuthController struct {
	accounts *services.AccountService
}

func NewAuthController(accounts *services.AccountService) *AuthController {
	return &AuthController{accounts: accounts}
}

// Register handles POST /api/auth/register.
func (a *AuthController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !c.BindJSON(&in) {
		return
	}

	account, err := a.accounts.Register(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(map[string]any{"user": projector.One(account, hideSecrets)})
}

// Login handles POST /api/auth/login.
func (a *AuthController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}

	res, err := a.accounts.Login(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{
		"token": res.Token,
		"user":  projector.One(res.Account, hideSecrets),
	})
}

// Show handles GET /api/users/{id}.
func (a *AuthController) Show(c *ctx.Context) {
	account, err := a.accounts.Get(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(projector.One(account, hideSecrets))
}
