// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/fresa/api/accounts"
	"github.com/vechain/fresa/api/instructions"
	"github.com/vechain/fresa/api/logs"
	"github.com/vechain/fresa/api/middleware"
	"github.com/vechain/fresa/api/pools"
	"github.com/vechain/fresa/api/proposals"
	"github.com/vechain/fresa/log"
	"github.com/vechain/fresa/logdb"
	"github.com/vechain/fresa/processor"
	"github.com/vechain/fresa/state"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
	EnableMetrics        bool
	LogsLimit            uint64
}

// New return api router
func New(
	p *processor.Processor,
	stater *state.Stater,
	logDB *logdb.LogDB,
	opts Options,
) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	instructions.New(p).
		Mount(router, "/instructions")
	pools.New(p, stater).
		Mount(router, "/pools")
	acc := accounts.New(p)
	acc.Mount(router, "/accounts")
	acc.MountMint(router, "/mint")
	proposals.New(p).
		Mount(router, "/proposals")
	if logDB != nil {
		logs.New(logDB, opts.LogsLimit).
			Mount(router, "/logs")
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger != nil {
		handler = middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold, opts.Log5xxErrors)(handler)
	}
	return handler.ServeHTTP
}
