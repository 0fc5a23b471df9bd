package httpapi

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request id; a client supplied value is
// echoed back.
const RequestIDHeader = "X-Request-ID"

// Router 使用标准库 http.ServeMux，统一附加 CORS 头
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	requestID := req.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	w.Header().Set(RequestIDHeader, requestID)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if req.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	r.logger.Debug("HTTP request",
		zap.String("request_id", requestID),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
	)
	r.mux.ServeHTTP(w, req)
}

// RegisterPredictionRoutes 注册预测接口
func (r *Router) RegisterPredictionRoutes(h *PredictionHandler) {
	r.Handle("/predict", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Predict(w, req)
	})
}

// RegisterMonitoringRoutes 注册健康检查与性能统计接口
func (r *Router) RegisterMonitoringRoutes(h *MonitoringHandler) {
	get := func(fn http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			if req.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			fn(w, req)
		}
	}
	r.Handle("/health", get(h.Health))
	r.Handle("/metrics", get(h.Metrics))
	r.Handle("/api/performance", get(h.Performance))
}

// RegisterPatientRoutes 注册患者与诊断历史接口
//
//	POST   /patient/register
//	GET    /patient/{id}
//	GET    /patient/{id}/history
//	DELETE /patient/{id}/history
//	GET    /patient/{id}/history/export
func (r *Router) RegisterPatientRoutes(h *PatientHandler) {
	r.Handle("/patient/register", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Register(w, req)
	})

	r.Handle("/patient/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.Trim(strings.TrimPrefix(req.URL.Path, "/patient/"), "/")
		parts := strings.Split(rest, "/")
		if rest == "" || parts[0] == "" {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		id := parts[0]

		switch {
		case len(parts) == 1:
			if req.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			h.Get(w, req, id)
		case len(parts) == 2 && parts[1] == "history":
			switch req.Method {
			case http.MethodGet:
				h.History(w, req, id)
			case http.MethodDelete:
				h.ClearHistory(w, req, id)
			default:
				w.WriteHeader(http.StatusMethodNotAllowed)
			}
		case len(parts) == 3 && parts[1] == "history" && parts[2] == "export":
			if req.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			h.ExportHistory(w, req, id)
		default:
			writeError(w, http.StatusNotFound, "Not found")
		}
	})
}
