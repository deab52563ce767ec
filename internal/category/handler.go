package category

import (
	"net/http"

	"github.com/frahmantamala/expense-tracker/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
}

func NewHandler(base *transport.BaseHandler) *Handler {
	return &Handler{BaseHandler: base}
}

// GetCategories returns the fixed category set. The set is compiled in; no
// storage round trip happens here.
func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, CategoriesResponse{Categories: All()})
}
