// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package admin serves the operator endpoints: runtime log level, request logging and health.
package admin

import (
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/fresa/api/utils"
)

// byMethod dispatches on the request method and answers 405 for the others.
func byMethod(routes map[string]utils.HandlerFunc) http.HandlerFunc {
	allowed := make([]string, 0, len(routes))
	wrapped := make(map[string]http.HandlerFunc, len(routes))
	for method, h := range routes {
		allowed = append(allowed, method)
		wrapped[method] = utils.WrapHandlerFunc(h)
	}
	sort.Strings(allowed)
	allow := strings.Join(allowed, ", ")

	return func(w http.ResponseWriter, r *http.Request) {
		h, ok := wrapped[r.Method]
		if !ok {
			w.Header().Set("Allow", allow)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func HTTPHandler(logLevel *slog.LevelVar, apiLogs *atomic.Bool, probe func() error) http.Handler {
	router := mux.NewRouter()
	sub := router.PathPrefix("/admin").Subrouter()

	sub.Path("/loglevel").HandlerFunc(byMethod(map[string]utils.HandlerFunc{
		http.MethodGet:  getLogLevelHandler(logLevel),
		http.MethodPost: postLogLevelHandler(logLevel),
	}))
	sub.Path("/apilogs").HandlerFunc(byMethod(map[string]utils.HandlerFunc{
		http.MethodGet:  getAPILogsHandler(apiLogs),
		http.MethodPost: postAPILogsHandler(apiLogs),
	}))
	sub.Path("/health").HandlerFunc(byMethod(map[string]utils.HandlerFunc{
		http.MethodGet: healthHandler(probe),
	}))

	return handlers.CompressHandler(router)
}
