package delivery

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/platterhq/delivery-shared/errors"
	pkghttp "github.com/platterhq/delivery-shared/http"
	"github.com/platterhq/delivery-shared/telemetry"
	"github.com/platterhq/delivery-shared/validation"
)

// Handler exposes the fee resolver over HTTP.
type Handler struct {
	resolver *Resolver
}

// NewHandler creates a delivery HTTP handler.
func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

// Routes mounts the delivery endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/fee", h.ResolveFee)
	return r
}

// ResolveFee handles POST /api/v1/delivery/fee.
func (h *Handler) ResolveFee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, errors.BadRequest("invalid request body"), telemetry.TraceID(ctx))
		return
	}

	if err := validation.Validate(req); err != nil {
		details := make(map[string]string)
		for _, ve := range validation.ParseValidationErrors(err) {
			details[ve.Field] = ve.Message
		}
		errors.WriteError(w, errors.ValidationWithDetails("invalid fee request", details), telemetry.TraceID(ctx))
		return
	}

	result, err := h.resolver.ResolveFee(ctx, req)
	if err != nil {
		errors.WriteError(w, err, telemetry.TraceID(ctx))
		return
	}

	pkghttp.OK(w, result)
}
