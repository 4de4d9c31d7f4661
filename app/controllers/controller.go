// Package controllers turns HTTP requests into service calls. Handlers
// decode the body, call one service method and render the result through
// the projector; every failure goes through ctx.Fail.
package controllers

import (
	"github.com/vancyferns/near2door/pkg/ctx"
	"github.com/vancyferns/near2door/pkg/projector"
)

// hideSecrets strips fields that never leave the server.
var hideSecrets = projector.Omit("password")

func one(c *ctx.Context, v any, err error) {
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(projector.One(v))
}

func created(c *ctx.Context, v any, err error) {
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(projector.One(v))
}

func list(c *ctx.Context, v any, err error) {
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(projector.Many(v))
}

func accounts(c *ctx.Context, v any, err error) {
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(projector.Many(v, hideSecrets))
}
