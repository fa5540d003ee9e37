package configuration

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/contractkit/contractkit/internal/app/contractkit"
	"github.com/contractkit/contractkit/internal/app/httpresponse"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// operationRequest is the body accepted by every contract operation
// endpoint. Request/Response carry the payload documents verbatim.
type operationRequest struct {
	Ref        string          `json:"ref"`
	Request    json.RawMessage `json:"request,omitempty"`
	Response   json.RawMessage `json:"response,omitempty"`
	StatusCode int             `json:"statusCode,omitempty"`
}

func (r operationRequest) statusOrDefault() int {
	if r.StatusCode == 0 {
		return contractkit.DefaultStatusCode
	}
	return r.StatusCode
}

// ServeAPI starts the capability API on the given port. The returned server
// is closed by the caller on shutdown.
func ServeAPI(port int, engine *contractkit.Engine) *echo.Echo {
	server := NewAPI(engine)

	go func() {
		address := fmt.Sprintf(":%d", port)
		if err := server.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	return server
}

// NewAPI wires the engine's capabilities onto an echo server.
func NewAPI(engine *contractkit.Engine) *echo.Echo {
	server := echo.New()
	server.HideBanner = true

	h := handlers{engine: engine}
	server.GET("/ready", h.ready)
	server.GET("/contracts", h.listContracts)
	server.POST("/contracts/validate", h.validateContract)
	server.POST("/contracts/validate-request-type", h.validateRequestType)
	server.POST("/contracts/validate-response-type", h.validateResponseType)
	server.POST("/contracts/match-request", h.matchRequest)
	server.POST("/contracts/match-response", h.matchResponse)
	server.POST("/contracts/mock-response", h.mockResponse)
	server.POST("/contracts/mock-request", h.mockRequest)

	return server
}

type handlers struct {
	engine *contractkit.Engine
}

func (h handlers) ready(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (h handlers) listContracts(c echo.Context) error {
	files, err := h.engine.ContractFiles()
	if err != nil {
		return c.JSON(http.StatusInternalServerError,
			httpresponse.Errorf("unable to list contracts. %s", err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"contracts": files})
}

// bind decodes and checks the common operation body.
func (h handlers) bind(c echo.Context) (operationRequest, *httpresponse.APIError) {
	var req operationRequest
	if err := c.Bind(&req); err != nil {
		return req, httpresponse.Errorf("unable to parse operation request. %s", err.Error())
	}
	if req.Ref == "" {
		return req, httpresponse.Error("operation request is missing the contract ref")
	}
	return req, nil
}

func (h handlers) validateContract(c echo.Context) error {
	req, apiErr := h.bind(c)
	if apiErr != nil {
		return c.JSON(http.StatusBadRequest, apiErr)
	}
	log.Infof("validating contract %q", req.Ref)
	return c.JSON(http.StatusOK, h.engine.ValidateContract(req.Ref))
}

func (h handlers) validateRequestType(c echo.Context) error {
	req, apiErr := h.bind(c)
	if apiErr != nil {
		return c.JSON(http.StatusBadRequest, apiErr)
	}
	return c.JSON(http.StatusOK, h.engine.ValidateRequestType(req.Ref))
}

func (h handlers) validateResponseType(c echo.Context) error {
	req, apiErr := h.bind(c)
	if apiErr != nil {
		return c.JSON(http.StatusBadRequest, apiErr)
	}
	return c.JSON(http.StatusOK, h.engine.ValidateResponseType(req.Ref))
}

func (h handlers) matchRequest(c echo.Context) error {
	req, apiErr := h.bind(c)
	if apiErr != nil {
		return c.JSON(http.StatusBadRequest, apiErr)
	}
	return c.JSON(http.StatusOK, h.engine.ValidateRequestAgainstContract(req.Ref, req.Request))
}

func (h handlers) matchResponse(c echo.Context) error {
	req, apiErr := h.bind(c)
	if apiErr != nil {
		return c.JSON(http.StatusBadRequest, apiErr)
	}
	return c.JSON(http.StatusOK,
		h.engine.ValidateResponseAgainstContract(req.Ref, req.Response, req.statusOrDefault()))
}

func (h handlers) mockResponse(c echo.Context) error {
	req, apiErr := h.bind(c)
	if apiErr != nil {
		return c.JSON(http.StatusBadRequest, apiErr)
	}
	log.Infof("generating mock response for %q (status %d)", req.Ref, req.statusOrDefault())
	return c.JSON(http.StatusOK, h.engine.GenerateMockResponse(req.Ref, req.statusOrDefault()))
}

func (h handlers) mockRequest(c echo.Context) error {
	req, apiErr := h.bind(c)
	if apiErr != nil {
		return c.JSON(http.StatusBadRequest, apiErr)
	}
	return c.JSON(http.StatusOK, h.engine.CreateMockRequest(req.Ref))
}
