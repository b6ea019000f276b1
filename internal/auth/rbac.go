package auth

import (
	"log/slog"
	"net/http"
)

// Operation names the privileged actions on catalog records. Capabilities are
// granted through the roleCapabilities table below so what each role may do
// is auditable in one place instead of being scattered across handlers.
type Operation string

const (
	OpModerateView Operation = "catalog.moderate_view"
	OpApprove      Operation = "catalog.approve"
	OpReject       Operation = "catalog.reject"
	OpOverride     Operation = "catalog.override"
)

var roleCapabilities = map[Role]map[Operation]bool{
	RoleMember: {},
	RoleEditor: {
		OpModerateView: true,
		OpApprove:      true,
		OpReject:       true,
	},
	RoleAdmin: {
		OpModerateView: true,
		OpApprove:      true,
		OpReject:       true,
		OpOverride:     true,
	},
}

func (u *User) Can(op Operation) bool {
	caps, ok := roleCapabilities[u.Role]
	if !ok {
		return false
	}
	return caps[op]
}

type RBAC struct {
	logger *slog.Logger
}

func NewRBAC(logger *slog.Logger) *RBAC {
	return &RBAC{logger: logger}
}

// Require builds a middleware that admits only principals allowed to perform
// the given operation.
func (ra *RBAC) Require(op Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !user.Can(op) {
				ra.logger.WarnContext(r.Context(), "access denied",
					"user_id", user.ID,
					"role", user.Role,
					"operation", op)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
