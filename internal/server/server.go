// Package server exposes the collection engine over HTTP. The server trusts
// its front proxy: caller claims arrive as opaque, already-verified headers
// and are never validated here, matching the engine's AuthContext contract.
package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/engine"
	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/export"
	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/query"
)

// Claim headers set by the authenticating front proxy.
const (
	HeaderUsername = "X-Auth-Username"
	HeaderGroups   = "X-Auth-Groups"
)

// Server is the HTTP API over one collection engine.
type Server struct {
	echo   *echo.Echo
	engine engine.Engine
	log    zerolog.Logger
}

// New builds the server and registers its routes.
func New(eng engine.Engine, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, engine: eng, log: log}

	e.Use(middleware.Recover())
	e.Use(s.requestLogger)

	v1 := e.Group("/api/v1")
	v1.GET("/resources", s.listResources)
	v1.GET("/resources/summary", s.resourceSummary)
	v1.GET("/resources/export", s.exportResources)
	v1.GET("/resources/:id", s.resourceDetail)
	v1.GET("/accounts", s.listAccounts)

	return s
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start serves on addr until Shutdown or a listener error.
func (s *Server) Start(addr string) error {
	s.log.Info().Str("addr", addr).Msg("http server listening")
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		s.log.Info().
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Int("status", c.Response().Status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
		return nil
	}
}

// ── handlers ──────────────────────────────────────────────────────────────────

func (s *Server) listResources(c echo.Context) error {
	caller, req, err := parseCollectionParams(c)
	if err != nil {
		return httpError(err)
	}
	result, err := s.engine.Collect(c.Request().Context(), caller, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, query.Process(result, req.Search, req.Page, req.Size))
}

func (s *Server) resourceSummary(c echo.Context) error {
	caller, req, err := parseCollectionParams(c)
	if err != nil {
		return httpError(err)
	}
	result, err := s.engine.Collect(c.Request().Context(), caller, req)
	if err != nil {
		return httpError(err)
	}
	filtered := query.Filter(result.Resources, req.Search)
	return c.JSON(http.StatusOK, struct {
		query.Summary
		Errors []models.CollectionError `json:"errors"`
	}{
		Summary: query.Summarize(filtered),
		Errors:  result.Errors,
	})
}

// exportResources streams the full filtered set; pagination parameters are
// accepted but ignored.
func (s *Server) exportResources(c echo.Context) error {
	caller, req, err := parseCollectionParams(c)
	if err != nil {
		return httpError(err)
	}
	format, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return httpError(err)
	}
	result, err := s.engine.Collect(c.Request().Context(), caller, req)
	if err != nil {
		return httpError(err)
	}
	filtered := query.Filter(result.Resources, req.Search)

	var body []byte
	if format == export.FormatCSV {
		body, err = export.CSV(filtered)
	} else {
		body, err = export.JSON(filtered)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	filename := string(req.Service) + "-inventory." + string(format)
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, format.ContentType(), body)
}

func (s *Server) resourceDetail(c echo.Context) error {
	caller, req, err := parseCollectionParams(c)
	if err != nil {
		return httpError(err)
	}
	result, err := s.engine.Collect(c.Request().Context(), caller, req)
	if err != nil {
		return httpError(err)
	}
	r, ok := query.FindByID(result.Resources, c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "resource not found")
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) listAccounts(c echo.Context) error {
	accounts, err := s.engine.Accounts(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, accounts)
}

// ── request parsing ───────────────────────────────────────────────────────────

// parseCollectionParams builds the caller context and collection request from
// query parameters and claim headers. Normalization of pagination bounds is
// done here so handlers and engine see consistent values.
func parseCollectionParams(c echo.Context) (models.AuthContext, models.CollectionRequest, error) {
	caller := models.AuthContext{
		Username: c.Request().Header.Get(HeaderUsername),
		Groups:   splitList(c.Request().Header.Get(HeaderGroups)),
	}

	service, err := models.ParseService(c.QueryParam("service"))
	if err != nil {
		return caller, models.CollectionRequest{}, err
	}

	req := models.CollectionRequest{
		Service:  service,
		Accounts: splitList(c.QueryParam("accounts")),
		Regions:  splitList(c.QueryParam("regions")),
		Search:   c.QueryParam("search"),
	}
	if req.Page, err = intParam(c, "page", 1); err != nil {
		return caller, req, err
	}
	if req.Size, err = intParam(c, "size", models.DefaultPageSize); err != nil {
		return caller, req, err
	}
	req.Normalize()
	return caller, req, nil
}

// splitList splits a comma-separated parameter, trimming each entry and
// dropping empties so "admins, sre" matches policy groups exactly.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func intParam(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &models.ValidationError{Msg: name + " must be an integer"}
	}
	return n, nil
}

// httpError maps the engine's typed errors onto HTTP statuses: validation
// failures are the caller's fault, authorization failures are forbidden, and
// everything else is internal. Per-task collection errors never reach this
// path — they ride inside successful responses.
func httpError(err error) error {
	switch err.(type) {
	case *models.ValidationError:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case *models.AuthorizationError:
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
