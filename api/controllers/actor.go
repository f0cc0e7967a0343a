package controllers

import (
	"net/http"

	"github.com/developersvyapar-netizen/vyaapar-backend/api/middleware"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/enums"
	pkgerrors "github.com/developersvyapar-netizen/vyaapar-backend/pkg/errors"
	"github.com/google/uuid"
)

// actorFromRequest resolves the authenticated caller seeded by the auth
// middleware.
func actorFromRequest(r *http.Request) (uuid.UUID, enums.UserRole, error) {
	rawID := middleware.UserIDFromContext(r.Context())
	if rawID == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user identity")
	}
	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor role")
	}
	return userID, role, nil
}
