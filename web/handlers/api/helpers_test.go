package api

import (
	"errors"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	"github.com/busview/busview/internal/core/explorer"
)

func TestPeekContext_AppliesConfiguredTimeout(t *testing.T) {
	app := fiber.New()
	fctx := &fasthttp.RequestCtx{}
	fctx.Init(&fasthttp.Request{}, nil, nil)
	c := app.AcquireCtx(fctx)
	defer app.ReleaseCtx(c)

	ctx, cancel := peekContext(c, 5*time.Second)
	defer cancel()

	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(5*time.Second), deadline, time.Second)
}

func TestPeekContext_UnboundedWhenDisabled(t *testing.T) {
	app := fiber.New()
	c := app.AcquireCtx(&fasthttp.RequestCtx{})
	defer app.ReleaseCtx(c)

	ctx, cancel := peekContext(c, 0)
	defer cancel()

	_, ok := ctx.Deadline()
	assert.False(t, ok)
}

func TestErrStatus_MapsCoordinatorErrors(t *testing.T) {
	assert.Equal(t, fiber.StatusBadRequest, errStatus(explorer.ErrValidation))
	assert.Equal(t, fiber.StatusNotFound, errStatus(explorer.ErrUnknownState))
	assert.Equal(t, fiber.StatusInternalServerError, errStatus(errors.New("broker down")))
}
