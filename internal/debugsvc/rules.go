package debugsvc

import (
	"encoding/json"
	"net/http"

	"github.com/AdguardTeam/AdGuardUserRules/internal/agdhttp"
	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
	"github.com/AdguardTeam/golibs/httphdr"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
)

// rulesHandler serves the snapshots of the rule lists.
type rulesHandler struct {
	lists map[userrules.ID]userrules.Interface
}

// type check
var _ http.Handler = (*rulesHandler)(nil)

// rulesResponse describes the response to the GET /debug/api/rules/{id} HTTP
// API.
type rulesResponse struct {
	ID    userrules.ID     `json:"id"`
	Rules []userrules.Rule `json:"rules"`
}

// ServeHTTP implements the [http.Handler] interface for *rulesHandler.
func (h *rulesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogutil.MustLoggerFromContext(ctx)

	id := userrules.ID(r.PathValue("id"))
	m, ok := h.lists[id]
	if !ok {
		http.Error(w, "list not found", http.StatusNotFound)

		return
	}

	resp := &rulesResponse{
		ID:    id,
		Rules: m.AllRules(),
	}

	if resp.Rules == nil {
		resp.Rules = []userrules.Rule{}
	}

	w.Header().Set(httphdr.ContentType, agdhttp.HdrValApplicationJSON)
	err := json.NewEncoder(w).Encode(resp)
	if err != nil {
		l.ErrorContext(ctx, "writing response", slogutil.KeyError, err)
	}
}
