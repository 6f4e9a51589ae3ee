package settings

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/FACorreiaa/go-trip-planner/config"
	"github.com/FACorreiaa/go-trip-planner/internal/api"
)

// serviceEnvNames maps the public service identifiers accepted by the admin
// route onto the environment variable names the resolver keys runtime values by.
var serviceEnvNames = map[string]string{
	"llm":          config.EnvGeminiAPIKey,
	"llm_base_url": config.EnvGeminiBaseURL,
	"places":       config.EnvPlacesAPIKey,
}

// UpdateKeyRequest updates one runtime credential. An empty value clears the
// runtime entry so resolution falls back to the environment default.
type UpdateKeyRequest struct {
	Service string `json:"service"`
	Value   string `json:"value"`
}

type Handler interface {
	UpdateRuntimeKey(w http.ResponseWriter, r *http.Request)
}

var _ Handler = (*HandlerImpl)(nil)

type HandlerImpl struct {
	keys   *config.KeyResolver
	logger *slog.Logger
}

func NewHandlerImpl(keys *config.KeyResolver, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{keys: keys, logger: logger}
}

// UpdateRuntimeKey handles PUT /config/keys. Values are write-only: the
// response confirms the update but never echoes a credential back.
func (h *HandlerImpl) UpdateRuntimeKey(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("SettingsHandler").Start(r.Context(), "UpdateRuntimeKey")
	defer span.End()

	l := h.logger.With(slog.String("handler", "UpdateRuntimeKey"))

	var req UpdateKeyRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	envName, ok := serviceEnvNames[req.Service]
	if !ok {
		l.WarnContext(ctx, "Unknown credential service", slog.String("service", req.Service))
		api.ErrorResponse(w, r, http.StatusBadRequest, "service must be one of: llm, llm_base_url, places")
		return
	}
	span.SetAttributes(attribute.String("credential.service", req.Service))

	h.keys.SetRuntimeKey(envName, req.Value)
	l.InfoContext(ctx, "Runtime credential updated",
		slog.String("service", req.Service),
		slog.Bool("cleared", req.Value == ""))

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"success": true,
		"service": req.Service,
		"cleared": req.Value == "",
	})
}
