package router

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/authbite/internal/pkg/config"
)

const maintenanceMessage = "authbite is under maintenance, try again later"

// maintenanceRules decides which requests get a 503. Each configured endpoint
// is either a route pattern, which blocks every method, or "METHOD /pattern".
type maintenanceRules struct {
	all        bool
	routes     map[string]struct{}
	retryAfter int
}

func newMaintenanceRules(cfg config.Config) maintenanceRules {
	if cfg == nil {
		return maintenanceRules{}
	}

	routes := lo.FilterMap(cfg.GetArray("app.maintenance.endpoints"), func(e string, _ int) (string, bool) {
		method, route, ok := strings.Cut(strings.Join(strings.Fields(e), " "), " ")
		if !ok {
			return method, method != ""
		}
		return strings.ToUpper(method) + " " + route, true
	})

	return maintenanceRules{
		all:        cfg.GetBool("app.maintenance.enabled"),
		routes:     lo.SliceToMap(routes, func(r string) (string, struct{}) { return r, struct{}{} }),
		retryAfter: cfg.GetInt("app.maintenance.retry_after_seconds"),
	}
}

func (m maintenanceRules) blocks(method, route string) bool {
	if route == "/health" {
		return false
	}
	if m.all {
		return true
	}

	_, byRoute := m.routes[route]
	_, byMethod := m.routes[method+" "+route]
	return byRoute || byMethod
}

func middlewareMaintenance(cfg config.Config) Middleware {
	rules := newMaintenanceRules(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rules.blocks(r.Method, matchedRoutePath(r)) {
				next.ServeHTTP(w, r)
				return
			}

			if rules.retryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(rules.retryAfter))
			}
			writeJSON(w, errorResponse{Message: maintenanceMessage}, http.StatusServiceUnavailable)
		})
	}
}
