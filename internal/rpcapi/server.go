package rpcapi

import (
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/rpc"

	"stakePool/internal/metrics"
)

// Namespace is the JSON-RPC namespace of PoolAPI.
const Namespace = "pool"

// NewServer registers api on a fresh JSON-RPC server.
func NewServer(api *PoolAPI) (*rpc.Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName(Namespace, api); err != nil {
		return nil, fmt.Errorf("register %s api: %w", Namespace, err)
	}
	return srv, nil
}

// Handler serves JSON-RPC on "/", prometheus on "/metrics" and a liveness check on "/healthz".
func Handler(srv *rpc.Server) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/", srv)
	return metrics.HttpMiddleware(mux)
}
