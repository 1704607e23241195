package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口（用于 pprof 等）
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterAuthRoutes 登录/注销（无会话要求）
func (r *Router) RegisterAuthRoutes(h *AuthHandler) {
	r.Handle("/auth/api/v1/login", h.ServeHTTP)
	r.Handle("/auth/api/v1/logout", h.ServeHTTP)
}

// RegisterAppRoutes 业务路由，全部挂在会话中间件之后
func (r *Router) RegisterAppRoutes(
	m *AuthMiddleware,
	households *HouseholdHandler,
	tags *TagHandler,
	events *EventHandler,
	consumption *ConsumptionHandler,
	recirculator *RecirculatorHandler,
	user *UserHandler,
	invitations *InvitationHandler,
) {
	r.Handle(householdsBasePath, m.Wrap(households.ServeHTTP))
	r.Handle(householdsBasePath+"/", m.Wrap(households.ServeHTTP))

	r.Handle(tagsBasePath, m.Wrap(tags.ServeHTTP))
	r.Handle(tagsBasePath+"/", m.Wrap(tags.ServeHTTP))

	r.Handle(eventsBasePath, m.Wrap(events.ServeHTTP))
	r.Handle(eventsBasePath+"/", m.Wrap(events.ServeHTTP))

	r.Handle(consumptionBasePath, m.Wrap(consumption.ServeHTTP))
	r.Handle(consumptionBasePath+"/", m.Wrap(consumption.ServeHTTP))

	r.Handle(recirculatorBasePath+"/", m.Wrap(recirculator.ServeHTTP))

	r.Handle("/app/api/v1/user/", m.Wrap(user.ServeHTTP))

	r.Handle(invitationsBasePath, m.Wrap(invitations.ServeHTTP))
	r.Handle(invitationsBasePath+"/", m.Wrap(invitations.ServeHTTP))
}
